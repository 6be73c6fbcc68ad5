package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ogurasousui/orbite-rh-api/internal/platform/logging"
)

const healthPingTimeout = 2 * time.Second

// Pinger はデータベースの疎通確認です。*pgxpool.Pool が満たします。
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler は GET /health を処理します。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler は HealthHandler を生成します。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("database ping failed")
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}
