package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ReadUserIP returns the client IP of the request, preferring the headers
// set by the reverse proxy over the connection address.
func ReadUserIP(r *http.Request) (string, error) {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return parseIP(ip)
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// client, proxy1, proxy2 ...
		return parseIP(strings.TrimSpace(strings.Split(forwarded, ",")[0]))
	}
	return parseIP(r.RemoteAddr)
}

func parseIP(addr string) (string, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return "", fmt.Errorf("ip addr %s is invalid", addr)
	}
	return ip.String(), nil
}
