package middleware

import (
	"net/http"
	"time"

	"github.com/2beens/repscore/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(resp, r)

			ip, _ := pkg.ReadUserIP(r)
			log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": resp.statusCode,
				"ip":     ip,
				"ua":     r.Header.Get("User-Agent"),
				"took":   time.Since(start).String(),
			}).Debug("request served")
		})
	}
}
