package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// endlessBody serves zero bytes until size is reached and counts what is read.
type endlessBody struct {
	size   int64
	read   int64
	closed bool
}

func (b *endlessBody) Read(p []byte) (int, error) {
	if b.read >= b.size {
		return 0, io.EOF
	}
	n := int64(len(p))
	if left := b.size - b.read; n > left {
		n = left
	}
	clear(p[:n])
	b.read += n
	return int(n), nil
}

func (b *endlessBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndCloseRequest(t *testing.T) {
	rejecting := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})

	for _, tc := range []struct {
		name         string
		size         int64
		expectedRead int64
	}{
		{name: "small body drained", size: 1 << 10, expectedRead: 1 << 10},
		{name: "huge body capped", size: 2 << 30, expectedRead: MaxDrainBytes},
	} {
		t.Run(tc.name, func(t *testing.T) {
			body := &endlessBody{size: tc.size}
			req := httptest.NewRequest("POST", "/analyze_video", nil)
			req.Body = body
			req.ContentLength = tc.size

			rr := httptest.NewRecorder()
			DrainAndCloseRequest()(rejecting).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
			assert.Equal(t, tc.expectedRead, body.read)
			assert.True(t, body.closed)
		})
	}
}
