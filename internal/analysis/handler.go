package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/2beens/repscore/internal/exercise"
	"github.com/2beens/repscore/internal/telemetry/metrics"
	"github.com/2beens/repscore/internal/telemetry/tracing"
	"github.com/2beens/repscore/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=analysis_mocks_test.go -package=analysis

type poseExtractor interface {
	Extract(ctx context.Context, video io.Reader, profile exercise.Profile) (SampleStream, error)
}

const (
	multipartMemoryBytes = 32 << 20
	defaultExerciseType  = exercise.DefaultID
)

// thresholdOverrides is the optional per request "config" of an analysis.
type thresholdOverrides struct {
	UpThreshold   float64 `json:"up_threshold"`
	DownThreshold float64 `json:"down_threshold"`
}

type AnalyzeFramesRequest struct {
	ExerciseType string              `json:"exercise_type"`
	Config       *thresholdOverrides `json:"config,omitempty"`
	FPS          float64             `json:"fps"`
	TotalFrames  int                 `json:"total_frames"`
	Samples      []FrameSample       `json:"samples"`
}

// FrameSample is the wire form of a Sample; HasAngle defaults to
// "a pose was detected" when omitted.
type FrameSample struct {
	Timestamp  float64 `json:"timestamp"`
	Angle      float64 `json:"angle"`
	Confidence float64 `json:"confidence"`
	HasAngle   *bool   `json:"has_angle,omitempty"`
}

type HandlerParams struct {
	// PoseExtractor is nil when no pose service is configured,
	// every video analysis is then simulated.
	PoseExtractor        poseExtractor
	Simulator            *Simulator
	Cache                *ResultCache
	MetricsManager       *metrics.Manager
	StrictExerciseLookup bool
	MaxUploadBytes       int64
	TempDir              string
}

type Handler struct {
	pose           poseExtractor
	simulator      *Simulator
	cache          *ResultCache
	metrics        *metrics.Manager
	strictLookup   bool
	maxUploadBytes int64
	tempDir        string
}

func NewHandler(params HandlerParams) *Handler {
	simulator := params.Simulator
	if simulator == nil {
		simulator = NewSimulator(0)
	}
	return &Handler{
		pose:           params.PoseExtractor,
		simulator:      simulator,
		cache:          params.Cache,
		metrics:        params.MetricsManager,
		strictLookup:   params.StrictExerciseLookup,
		maxUploadBytes: params.MaxUploadBytes,
		tempDir:        params.TempDir,
	}
}

// SetupRoutes registers the analysis routes; analyzeMiddleware is applied to
// the two analyze endpoints only (e.g. rate limiting).
func (handler *Handler) SetupRoutes(mainRouter *mux.Router, analyzeMiddleware ...mux.MiddlewareFunc) {
	mainRouter.HandleFunc("/exercises", handler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")

	analyzeRouter := mainRouter.NewRoute().Subrouter()
	analyzeRouter.HandleFunc("/analyze_video", handler.HandleAnalyzeVideo).Methods("POST", "OPTIONS").Name("analyze-video")
	analyzeRouter.HandleFunc("/analyze_frames", handler.HandleAnalyzeFrames).Methods("POST", "OPTIONS").Name("analyze-frames")
	analyzeRouter.Use(analyzeMiddleware...)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, exercise.All(), http.StatusOK)
}

func (handler *Handler) HandleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.video")
	defer span.End()

	if handler.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, handler.maxUploadBytes)
		if r.ContentLength > handler.maxUploadBytes {
			pkg.WriteJSONError(w, "Video file too large", http.StatusRequestEntityTooLarge)
			return
		}
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			pkg.WriteJSONError(w, "Video file too large", http.StatusRequestEntityTooLarge)
			return
		}
		log.Tracef("analyze video, parse multipart form: %s", err)
		pkg.WriteJSONError(w, "No video file provided", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warnf("remove multipart temp files: %s", err)
		}
	}()

	video, _, err := r.FormFile("video")
	if err != nil {
		pkg.WriteJSONError(w, "No video file provided", http.StatusBadRequest)
		return
	}
	defer video.Close()

	exerciseType := strings.TrimSpace(r.FormValue("exercise_type"))
	if exerciseType == "" {
		exerciseType = defaultExerciseType
	}
	span.SetAttributes(attribute.String("exercise", exerciseType))

	var overrides thresholdOverrides
	if rawConfig := r.FormValue("config"); rawConfig != "" {
		if err := json.Unmarshal([]byte(rawConfig), &overrides); err != nil {
			log.Tracef("analyze video, unmarshal config [%s]: %s", rawConfig, err)
			pkg.WriteJSONError(w, "Invalid config", http.StatusBadRequest)
			return
		}
	}

	profile, err := handler.profile(exerciseType, overrides)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, mode, err := handler.analyzeVideo(ctx, video, exerciseType, profile)
	if err != nil {
		log.Errorf("analyze video [%s]: %s", exerciseType, err)
		pkg.WriteJSONError(w, "Video analysis failed", http.StatusInternalServerError)
		return
	}
	handler.observe(res, mode, time.Since(start))

	pkg.WriteJSON(w, res, http.StatusOK)
}

// analyzeVideo stores the upload in a temp file, then runs the pose based
// analysis. Any failure on the pose side degrades to a simulated result.
func (handler *Handler) analyzeVideo(
	ctx context.Context,
	video io.Reader,
	exerciseType string,
	profile exercise.Profile,
) (*Result, string, error) {
	tmpFile, err := os.CreateTemp(handler.tempDir, "repscore-upload-*.mp4")
	if err != nil {
		return nil, "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmpFile.Close()
		if err := os.Remove(tmpFile.Name()); err != nil {
			log.Warnf("remove temp upload [%s]: %s", tmpFile.Name(), err)
		}
	}()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmpFile, hasher), video)
	if err != nil {
		return nil, "", fmt.Errorf("store upload: %w", err)
	}
	log.Debugf("stored upload of %d bytes in [%s]", written, tmpFile.Name())

	cacheKey := CacheKey(hex.EncodeToString(hasher.Sum(nil)), profile)
	if handler.cache != nil {
		cached, found, err := handler.cache.Get(cacheKey)
		if err != nil {
			log.Warnf("result cache get: %s", err)
		}
		if found {
			return cached, metrics.ModeCached, nil
		}
	}

	if handler.pose == nil {
		return handler.simulator.Simulate(exerciseType), metrics.ModeSimulated, nil
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("rewind temp file: %w", err)
	}

	res, err := handler.analyzeWithPose(ctx, tmpFile, profile)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		log.Errorf("pose analysis [%s] failed, falling back to simulation: %s", profile.ID, err)
		handler.metrics.CounterPoseServiceErrors.Inc()
		return handler.simulator.Simulate(exerciseType), metrics.ModeSimulated, nil
	}

	if handler.cache != nil {
		if err := handler.cache.Set(cacheKey, res); err != nil {
			log.Debugf("result cache set: %s", err)
		}
	}

	return res, metrics.ModePose, nil
}

func (handler *Handler) analyzeWithPose(ctx context.Context, video io.Reader, profile exercise.Profile) (*Result, error) {
	stream, err := handler.pose.Extract(ctx, video, profile)
	if err != nil {
		return nil, fmt.Errorf("extract landmarks: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			log.Warnf("close landmarks stream: %s", err)
		}
	}()

	return Analyze(ctx, profile, stream)
}

func (handler *Handler) HandleAnalyzeFrames(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.frames")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		pkg.WriteJSONError(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AnalyzeFramesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("analyze frames, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExerciseType == "" {
		req.ExerciseType = defaultExerciseType
	}
	span.SetAttributes(attribute.String("exercise", req.ExerciseType))

	samples, err := toSamples(req.Samples)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var overrides thresholdOverrides
	if req.Config != nil {
		overrides = *req.Config
	}
	profile, err := handler.profile(req.ExerciseType, overrides)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := Analyze(ctx, profile, NewSliceSource(samples, VideoMeta{
		FPS:         req.FPS,
		TotalFrames: req.TotalFrames,
	}))
	if err != nil {
		log.Errorf("analyze frames [%s]: %s", profile.ID, err)
		pkg.WriteJSONError(w, "analysis failed", http.StatusInternalServerError)
		return
	}
	handler.observe(res, metrics.ModeFrames, time.Since(start))

	pkg.WriteJSON(w, res, http.StatusOK)
}

func toSamples(frames []FrameSample) ([]Sample, error) {
	if len(frames) == 0 {
		return nil, errors.New("no samples provided")
	}

	samples := make([]Sample, 0, len(frames))
	for i, f := range frames {
		if f.Confidence < 0 || f.Confidence > 1 {
			return nil, fmt.Errorf("sample %d: confidence out of [0, 1]", i)
		}
		if i > 0 && f.Timestamp < frames[i-1].Timestamp {
			return nil, fmt.Errorf("sample %d: timestamps must not decrease", i)
		}

		hasAngle := f.Confidence > 0
		if f.HasAngle != nil {
			hasAngle = *f.HasAngle
		}
		samples = append(samples, Sample{
			Timestamp:  f.Timestamp,
			Angle:      f.Angle,
			Confidence: f.Confidence,
			HasAngle:   hasAngle,
		})
	}

	return samples, nil
}

// profile resolves the exercise type and applies the request overrides.
// Unknown types fall back to push-up unless strict lookup is enabled.
func (handler *Handler) profile(exerciseType string, overrides thresholdOverrides) (exercise.Profile, error) {
	var profile exercise.Profile
	if handler.strictLookup {
		p, err := exercise.Lookup(exerciseType)
		if err != nil {
			handler.metrics.CounterUnknownExercise.Inc()
			return exercise.Profile{}, err
		}
		profile = p
	} else {
		p, known := exercise.Resolve(exerciseType)
		if !known {
			handler.metrics.CounterUnknownExercise.Inc()
			log.Warnf("unknown exercise type [%s], using [%s] profile", exerciseType, p.ID)
		}
		profile = p
	}

	if overrides == (thresholdOverrides{}) {
		return profile, nil
	}
	return profile.WithThresholds(overrides.UpThreshold, overrides.DownThreshold)
}

func (handler *Handler) observe(res *Result, mode string, took time.Duration) {
	handler.metrics.CounterAnalyses.WithLabelValues(res.ExerciseType, mode).Inc()
	handler.metrics.HistAnalysisDuration.WithLabelValues(mode).Observe(took.Seconds())
	if mode == metrics.ModeSimulated || mode == metrics.ModeCached {
		return
	}
	handler.metrics.CounterRepetitions.WithLabelValues(res.ExerciseType).Add(float64(res.Repetitions))
	handler.metrics.HistAnalyzedFrames.Observe(float64(res.PoseData.TotalFrames))
}
