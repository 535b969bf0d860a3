package pkg

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUserIP(t *testing.T) {
	testCases := []struct {
		name        string
		remoteAddr  string
		realIP      string
		forwarded   string
		expectedIP  string
		expectedErr bool
	}{
		{name: "remote addr", remoteAddr: "83.12.53.65:2145", expectedIP: "83.12.53.65"},
		{name: "remote addr ipv6", remoteAddr: "[::1]:8080", expectedIP: "::1"},
		{name: "real ip header", remoteAddr: "172.20.0.1:60102", realIP: "111.12.56.65", expectedIP: "111.12.56.65"},
		{name: "forwarded chain", remoteAddr: "172.20.0.1:60102", forwarded: "5.6.7.8, 10.0.0.1", expectedIP: "5.6.7.8"},
		{name: "invalid", remoteAddr: "not-an-ip", expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.realIP != "" {
				req.Header.Set("X-Real-Ip", tc.realIP)
			}
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}

			ip, err := ReadUserIP(req)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedIP, ip)
		})
	}
}
