package response

import (
	"net/http"

	appCtx "github.com/oyaa52/finsense/services/login-service/internal/pkg/context"
)

// RequestIDFromContext extracts the request id set by the middleware.
func RequestIDFromContext(r *http.Request) string {
	return appCtx.GetRequestID(r.Context())
}
