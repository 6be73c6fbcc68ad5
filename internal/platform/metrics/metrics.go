package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ogurasousui/orbite-rh-api/internal/core/batch"
)

// Metrics はアプリケーションのメトリクスをまとめます。
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ImportRows      *prometheus.CounterVec
	ImportBatches   *prometheus.CounterVec
	ImportBatchSize *prometheus.HistogramVec
}

// New は reg に登録した Metrics を返します。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbite_http_requests_total",
			Help: "Total HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orbite_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ImportRows: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbite_import_rows_total",
			Help: "Imported rows by entity and outcome.",
		}, []string{"entity", "outcome"}),
		ImportBatches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbite_import_batches_total",
			Help: "Import requests by entity and source format.",
		}, []string{"entity", "source"}),
		ImportBatchSize: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orbite_import_batch_rows",
			Help:    "Number of rows per import request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"entity"}),
	}

	for _, entity := range []string{"colaborador", "afastamento"} {
		for _, outcome := range []batch.Outcome{batch.OutcomeCreated, batch.OutcomeUpdated, batch.OutcomeFailed} {
			m.ImportRows.WithLabelValues(entity, outcome.String())
		}
	}

	return m
}

// ImportObserver は entity の取り込み行数を数える batch.Observer を返します。
func (m *Metrics) ImportObserver(entity string) batch.Observer {
	return batch.ObserverFunc(func(_ context.Context, _ int, outcome batch.Outcome, _ error) {
		m.ImportRows.WithLabelValues(entity, outcome.String()).Inc()
	})
}

// ObserveImport は取り込みリクエスト 1 件を記録します。
func (m *Metrics) ObserveImport(entity, source string, result *batch.Result) {
	m.ImportBatches.WithLabelValues(entity, source).Inc()
	if result != nil {
		m.ImportBatchSize.WithLabelValues(entity).Observe(float64(result.Total))
	}
}
