package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type OAuthHandler interface {
	Start(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
}

type ExchangeHandler interface {
	Exchange(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health   HealthHandler
	Auth     AuthHandler
	OAuth    OAuthHandler
	Exchange ExchangeHandler

	RequestIDMW func(http.Handler) http.Handler
	AuthMW      func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.OAuth == nil {
		return nil, fmt.Errorf("nil OAuth handler")
	}
	if deps.Exchange == nil {
		return nil, fmt.Errorf("nil Exchange handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()
	if deps.RequestIDMW != nil {
		r.Use(deps.RequestIDMW)
	}

	r.Get("/healthz", deps.Health.Healthz)

	// The exchange endpoint lives at the root, path matching what the
	// frontend has shipped against. Trailing slash included.
	r.Get("/exchange-onetime-token/", deps.Exchange.Exchange)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.With(deps.AuthMW).Get("/me", deps.Auth.Me)

		r.Route("/oauth/{provider}", func(r chi.Router) {
			r.Get("/start", deps.OAuth.Start)
			r.Get("/callback", deps.OAuth.Callback)
		})
	})

	return r, nil
}
