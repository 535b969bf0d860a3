package middleware

import (
	"io"
	"net/http"
)

// MaxDrainBytes bounds how much of an unread request body is consumed after
// the handler returns. Bigger leftovers are dropped with the connection.
const MaxDrainBytes = 256 << 10

// DrainAndCloseRequest reads what the handler left of a small request body,
// so the keep-alive connection stays usable, then closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, MaxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
