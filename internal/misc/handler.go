package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/repscore/internal/telemetry/tracing"
	"github.com/2beens/repscore/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=misc_mocks_test.go -package=misc_test

type poseAvailability interface {
	Available() bool
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"

	redisOK          = "ok"
	redisUnavailable = "unavailable"
	redisDisabled    = "disabled"

	redisPingTimeout = 2 * time.Second
)

type HealthResponse struct {
	Status      string `json:"status"`
	MLAvailable bool   `json:"ml_available"`
	Redis       string `json:"redis"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
}

type Handler struct {
	pose        poseAvailability
	redis       redisPinger
	versionInfo string
	now         func() time.Time
}

// NewHandler creates the informational endpoints handler. pose and redis may
// be nil when the service runs without them.
func NewHandler(pose poseAvailability, redis redisPinger, versionInfo string) *Handler {
	return &Handler{
		pose:        pose,
		redis:       redis,
		versionInfo: versionInfo,
		now:         time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, map[string]any{
		"service": "repscore",
		"version": handler.versionInfo,
		"endpoints": []string{
			"GET /health",
			"GET /version",
			"GET /exercises",
			"POST /analyze_video",
			"POST /analyze_frames",
		},
	}, http.StatusOK)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	resp := HealthResponse{
		Status:      statusHealthy,
		MLAvailable: handler.pose != nil && handler.pose.Available(),
		Redis:       redisDisabled,
		Timestamp:   handler.now().Format(time.RFC3339),
		Version:     handler.versionInfo,
	}

	if handler.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := handler.redis.Ping(pingCtx).Err(); err != nil {
			log.Warnf("health check, redis ping: %s", err)
			resp.Redis = redisUnavailable
			resp.Status = statusDegraded
		} else {
			resp.Redis = redisOK
		}
	}

	span.SetAttributes(
		attribute.String("status", resp.Status),
		attribute.Bool("ml_available", resp.MLAvailable),
	)
	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
