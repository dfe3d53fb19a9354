package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/response"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["db"] = "unreachable"
			response.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["db"] = "ok"
	}

	response.WriteJSON(w, http.StatusOK, status)
}
