package http_handlers

import (
	"encoding/json"
	"net/http"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/logger"
)

// ExchangeHandler serves the one-time-token exchange endpoint. It is the
// pre-authentication bootstrap channel, so it requires no auth header; its
// safety rests on the OTT being unguessable, short-lived and single-use.
type ExchangeHandler struct {
	svc *auth.Service
}

func NewExchangeHandler(svc *auth.Service) *ExchangeHandler {
	return &ExchangeHandler{svc: svc}
}

// exchangeSuccess and exchangeError are the flat wire shapes the frontend
// matches on; they intentionally bypass the service-wide envelopes.
type exchangeSuccess struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type exchangeError struct {
	Error string `json:"error"`
}

// Exchange handles GET /exchange-onetime-token/?ott=...
func (h *ExchangeHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	ott := r.URL.Query().Get("ott")

	cred, err := h.svc.ExchangeOneTimeToken(r.Context(), ott)
	if err != nil {
		msg := "Invalid or expired OTT."
		if domain.Is(err, "ott_required") {
			msg = "OTT is required."
		}
		writeExchangeJSON(w, http.StatusBadRequest, exchangeError{Error: msg})
		return
	}

	logger.WithCtx(r.Context()).Info().
		Int64("user_id", cred.UserID).
		Msg("one-time token exchanged")

	writeExchangeJSON(w, http.StatusOK, exchangeSuccess{
		Token:  cred.Token,
		UserID: cred.UserID,
	})
}

func writeExchangeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
