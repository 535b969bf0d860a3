package pose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/exercise"
	"github.com/2beens/repscore/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const landmarksPath = "/landmarks"

var ErrUnavailable = errors.New("pose service unavailable")

type ClientParams struct {
	BaseURL string
	Timeout time.Duration
	// MaxFailures is the number of consecutive failed calls that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// HTTPClient overrides the default instrumented client, used in tests.
	HTTPClient *http.Client
}

// Client talks to the pose landmark service, which decodes an uploaded video
// and streams back pose landmarks for every frame.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

func NewClient(params ClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   params.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	maxFailures := params.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "pose-service",
		MaxRequests: 1,
		Timeout:     params.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker [%s]: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(params.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// Available reports whether calls to the pose service are currently let through.
func (c *Client) Available() bool {
	return c.breaker.State() != gobreaker.StateOpen
}

// Extract uploads the video and returns the landmark frames as a sample stream.
// The caller must close the returned stream.
func (c *Client) Extract(ctx context.Context, video io.Reader, profile exercise.Profile) (_ analysis.SampleStream, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "pose.extract")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise", profile.ID))

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+landmarksPath, video)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Accept", "application/x-ndjson")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http client do: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}

	stream, err := NewStream(resp.Body, profile)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	log.Debugf("pose service stream opened: fps %.2f, frames %d", stream.Meta().FPS, stream.Meta().TotalFrames)
	return stream, nil
}
