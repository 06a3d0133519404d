// Package admin guards operator endpoints such as the pool ledger audit.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "poolpay/pkg/domain-errors"
	"poolpay/pkg/platform/httputil"
	"poolpay/pkg/requestcontext"
)

const tokenHeader = "X-Admin-Token"

// RequireAdminToken compares the X-Admin-Token header with expectedToken in
// constant time. An empty expected token hides the routes behind a 404.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(expectedToken)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(r.Header.Get(tokenHeader)), expected) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
