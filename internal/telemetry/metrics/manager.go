package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// analysis modes, used as label values
const (
	ModePose      = "pose"
	ModeFrames    = "frames"
	ModeSimulated = "simulated"
	ModeCached    = "cached"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterAnalyses            *prometheus.CounterVec
	CounterRepetitions         *prometheus.CounterVec
	CounterPoseServiceErrors   prometheus.Counter
	CounterUnknownExercise     prometheus.Counter

	// gauges
	GaugeRequests    prometheus.Gauge
	GaugeConnections prometheus.Gauge
	GaugeLifeSignal  prometheus.Gauge

	// histograms
	HistRequestDuration  prometheus.Histogram
	HistAnalysisDuration *prometheus.HistogramVec
	HistAnalyzedFrames   prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("repscore", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("repscore", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterAnalyses := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analyses",
		Help:      "The total number of produced analysis results",
	}, []string{"exercise", "mode"})
	counterRepetitions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "repetitions",
		Help:      "The total number of counted repetitions",
	}, []string{"exercise"})
	counterPoseServiceErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pose_service_errors",
		Help:      "The total number of failed pose landmark extractions",
	})
	counterUnknownExercise := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "unknown_exercise",
		Help:      "The total number of requests with an unknown exercise type",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeConnections := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_connections",
		Help:      "Current number of open client connections",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histRequestDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Duration of served requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	histAnalysisDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of a single analysis in seconds",
		Buckets:   []float64{.001, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"mode"})
	histAnalyzedFrames := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "analyzed_frames",
		Help:      "Number of frames consumed by a single analysis",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
	})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		CounterAnalyses:            counterAnalyses,
		CounterRepetitions:         counterRepetitions,
		CounterPoseServiceErrors:   counterPoseServiceErrors,
		CounterUnknownExercise:     counterUnknownExercise,
		GaugeRequests:              gaugeRequests,
		GaugeConnections:           gaugeConnections,
		GaugeLifeSignal:            gaugeLifeSignal,
		HistRequestDuration:        histRequestDuration,
		HistAnalysisDuration:       histAnalysisDuration,
		HistAnalyzedFrames:         histAnalyzedFrames,
	}
}
