package http_handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/oyaa52/finsense/services/login-service/internal/application/auth"
	"github.com/oyaa52/finsense/services/login-service/internal/logger"
	"github.com/oyaa52/finsense/services/login-service/internal/transport/http/response"
)

// OAuthHandler drives the browser-facing half of the social login flow.
// Both endpoints answer with redirects rather than JSON: the start endpoint
// sends the browser to the provider, the callback sends it back to the
// frontend with a one-time token attached.
type OAuthHandler struct {
	svc  *auth.Service
	deps auth.OAuthDeps

	// frontendURL is where the callback lands the browser. The OTT and the
	// optional post-login path ride along as query parameters.
	frontendURL      string
	allowedRedirects []string
}

func NewOAuthHandler(svc *auth.Service, deps auth.OAuthDeps, frontendURL string, allowedRedirects []string) *OAuthHandler {
	return &OAuthHandler{
		svc:              svc,
		deps:             deps,
		frontendURL:      frontendURL,
		allowedRedirects: allowedRedirects,
	}
}

// Start handles GET /oauth/{provider}/start?redirect_to=/some/path
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	redirectTo := r.URL.Query().Get("redirect_to")
	if !h.redirectAllowed(redirectTo) {
		redirectTo = ""
	}

	res, err := h.svc.OAuthStart(r.Context(), provider, redirectTo, h.deps)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, res.AuthURL, http.StatusFound)
}

// Callback handles GET /oauth/{provider}/callback?state=...&code=...
//
// Failures still land the browser on the frontend, carrying an error code
// instead of an OTT, so the user is never stranded on a bare API response.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	if q.Get("error") != "" {
		h.redirectWithError(w, r, q.Get("error"))
		return
	}

	state := q.Get("state")
	code := q.Get("code")
	if state == "" || code == "" {
		h.redirectWithError(w, r, "invalid_callback")
		return
	}

	res, err := h.svc.OAuthCallback(r.Context(), provider, state, code, h.deps)
	if err != nil {
		logger.WithCtx(r.Context()).Warn().
			Err(err).
			Str("provider", provider).
			Msg("oauth callback failed")
		h.redirectWithError(w, r, "login_failed")
		return
	}

	target := h.frontendURL
	if res.RedirectTo != "" && h.redirectAllowed(res.RedirectTo) {
		target = setQueryParam(target, "next", res.RedirectTo)
	}
	target = auth.RedirectURLWithToken(target, res.OneTimeToken)

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *OAuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, setQueryParam(h.frontendURL, "error", code), http.StatusFound)
}

// redirectAllowed reports whether a post-login path is on the whitelist.
// The empty path is always fine; it means "frontend default".
func (h *OAuthHandler) redirectAllowed(p string) bool {
	if p == "" {
		return true
	}
	for _, allowed := range h.allowedRedirects {
		if p == allowed {
			return true
		}
	}
	return false
}

func setQueryParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
