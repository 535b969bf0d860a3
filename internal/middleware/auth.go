package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/2beens/repscore/internal/telemetry/tracing"
	"github.com/2beens/repscore/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const APIKeyHeader = "X-API-KEY"

type AuthMiddlewareHandler struct {
	apiKey       string
	allowedPaths map[string]bool
}

// NewAuthMiddlewareHandler protects every path except the informational ones
// with a static API key. An empty key disables the check.
func NewAuthMiddlewareHandler(apiKey string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		apiKey: apiKey,
		allowedPaths: map[string]bool{
			"/":          true,
			"/health":    true,
			"/version":   true,
			"/exercises": true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if h.apiKey == "" || r.Method == http.MethodOptions || h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				log.Tracef("[missing api key] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "missing api key", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-api-key")
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("[invalid api key] [auth middleware] unauthorized => %s from %s", r.URL.Path, reqIp)
				pkg.WriteJSONError(w, "invalid api key", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-api-key")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
