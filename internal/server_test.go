package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/config"
	"github.com/2beens/repscore/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(poseURL string) *config.Config {
	return &config.Config{
		Environment:                   "development",
		Host:                          "localhost",
		Port:                          5001,
		PrometheusMetricsHost:         "localhost",
		PrometheusMetricsPort:         "2112",
		AnalyzeRateLimitAllowedPerMin: 30,
		PoseServiceURL:                poseURL,
		PoseServiceTimeoutSec:         10,
		MaxUploadMB:                   1,
		UploadTempDir:                 "",
		ResultCacheSizeMB:             1,
		ResultCacheTTLSec:             60,
		SimulationSeed:                1,
		AllowedOrigins:                []string{"https://app.repscore.io"},
		BreakerMaxFailures:            3,
		BreakerOpenTimeoutSec:         30,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, apiKey string) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), NewServerParams{
		Config:      cfg,
		APIKey:      apiKey,
		VersionInfo: "test-version",
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t, testConfig(""), "secret")
	router := s.routerSetup()

	testCases := []struct {
		name           string
		method         string
		path           string
		apiKey         string
		origin         string
		expectedStatus int
	}{
		{name: "root", method: "GET", path: "/", expectedStatus: http.StatusOK},
		{name: "health", method: "GET", path: "/health", expectedStatus: http.StatusOK},
		{name: "version", method: "GET", path: "/version", expectedStatus: http.StatusOK},
		{name: "exercises", method: "GET", path: "/exercises", expectedStatus: http.StatusOK},
		{name: "analyze without key", method: "POST", path: "/analyze_frames", expectedStatus: http.StatusUnauthorized},
		{name: "unknown path", method: "GET", path: "/blog/all", apiKey: "secret", expectedStatus: http.StatusNotFound},
		{name: "foreign origin", method: "GET", path: "/health", origin: "https://evil.example", expectedStatus: http.StatusForbidden},
		{name: "preflight", method: "OPTIONS", path: "/analyze_video", origin: "https://app.repscore.io", expectedStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.apiKey != "" {
				req.Header.Set(middleware.APIKeyHeader, tc.apiKey)
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.CounterRequests.WithLabelValues("POST", "401")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.CounterRequests.WithLabelValues("GET", "403")))
}

func TestServer_AnalyzeFrames(t *testing.T) {
	s := newTestServer(t, testConfig(""), "secret")
	router := s.routerSetup()

	body := `{"exercise_type":"squat","fps":10,"samples":[
		{"timestamp":0.1,"angle":170,"confidence":0.9},
		{"timestamp":0.2,"angle":80,"confidence":0.9},
		{"timestamp":0.3,"angle":170,"confidence":0.9}
	]}`
	req, err := http.NewRequest("POST", "/analyze_frames", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, "secret")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res analysis.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Repetitions)
	assert.False(t, res.Simulated)
}

func TestServer_AnalyzeVideo_WithPoseService(t *testing.T) {
	poseSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		lines := []string{`{"fps":30,"total_frames":3}`}
		// shoulder, hip, knee: standing, deep squat, standing
		for i, kneeX := range []float64{0.5, 0.9, 0.5} {
			points := make([]string, 33)
			for j := range points {
				points[j] = `{"x":0,"y":0,"visibility":0.9}`
			}
			points[23] = `{"x":0.5,"y":0.2,"visibility":0.9}`
			points[25] = fmt.Sprintf(`{"x":%v,"y":0.5,"visibility":0.9}`, kneeX)
			points[27] = `{"x":0.5,"y":0.8,"visibility":0.9}`
			lines = append(lines, fmt.Sprintf(`{"frame":%d,"landmarks":[%s]}`, i+1, strings.Join(points, ",")))
		}
		_, _ = io.WriteString(w, strings.Join(lines, "\n"))
	}))
	defer poseSrv.Close()

	s := newTestServer(t, testConfig(poseSrv.URL), "")
	router := s.routerSetup()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("video", "squats.mp4")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("exercise_type", "squat"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", "/analyze_video", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res analysis.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.False(t, res.Simulated)
	assert.Equal(t, "squat", res.ExerciseType)
	assert.Equal(t, 1, res.Repetitions)
	assert.Equal(t, 3, res.PoseData.TotalFrames)
	assert.InDelta(t, 0.1, res.PoseData.VideoDuration, 1e-9)
	assert.True(t, s.poseClient.Available())
}
