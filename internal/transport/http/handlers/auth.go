package http_handlers

import (
	"net/http"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/domain"
	"github.com/oyaa52/finsense/services/login-service/internal/logger"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/dto"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/middleware"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Int64("user_id", res.User.ID).
		Str("email", res.User.Email).
		Msg("user_registered")

	response.Created(w, dto.AuthData{
		User:  dto.NewUserView(res.User),
		Token: res.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.AuthData{
		User:  dto.NewUserView(res.User),
		Token: res.Token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.NewUserView(u))
}
