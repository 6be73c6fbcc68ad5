package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/orbite-rh-api/internal/core/employee"
	"github.com/ogurasousui/orbite-rh-api/internal/core/leave"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/config"
	"github.com/ogurasousui/orbite-rh-api/internal/platform/metrics"
)

// Dependencies はルーター構築に必要な依存です。
type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	Employees employee.UseCase
	Leaves    leave.UseCase
	Database  Pinger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter は全ルートを登録した http.Handler を返します。
// /health と /metrics 以外は共有シークレットによる認証を必要とします。
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	errs := newErrorMapper(deps.Config.HTTP.NotFoundStatus)

	r := mux.NewRouter()
	r.Use(correlationMiddleware(logger), recoverMiddleware, accessLogMiddleware)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	r.Handle("/health", NewHealthHandler(deps.Database)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(
		staticSecretMiddleware(deps.Config.Security.HeaderName, deps.Config.Security.StaticSecret, errs),
		maxBodyMiddleware(deps.Config.HTTP.MaxBodyBytes),
	)
	NewEmployeeHandler(deps.Employees, deps.Metrics, deps.Config.HTTP.NotFoundStatus).Register(api)
	NewLeaveHandler(deps.Leaves, deps.Metrics, deps.Config.HTTP.NotFoundStatus).Register(api)

	return cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", deps.Config.Security.HeaderName, CorrelationHeader},
		ExposedHeaders: []string{CorrelationHeader},
	}).Handler(r)
}
