package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/repscore/internal/analysis"
	"github.com/2beens/repscore/internal/config"
	"github.com/2beens/repscore/internal/middleware"
	"github.com/2beens/repscore/internal/misc"
	"github.com/2beens/repscore/internal/pose"
	"github.com/2beens/repscore/internal/telemetry/metrics"
	"github.com/2beens/repscore/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const metricsNamespace = "repscore"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	apiKey            string
	versionInfo       string

	config      *config.Config
	poseClient  *pose.Client
	simulator   *analysis.Simulator
	resultCache *analysis.ResultCache

	// nil when redis is not configured
	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	APIKey                  string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	resultCache := analysis.NewResultCache(cfg.ResultCacheSizeMB, cfg.ResultCacheTTLSec)
	promRegistry := metrics.SetupPrometheus(resultCache.Collectors(metricsNamespace)...)
	metricsManager := metrics.NewManager(metricsNamespace, "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "repscore-backend")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.HoneycombTracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	} else {
		log.Warn("redis host not set, rate limiting disabled")
	}

	var poseClient *pose.Client
	if cfg.PoseServiceURL != "" {
		poseClient = pose.NewClient(pose.ClientParams{
			BaseURL:     cfg.PoseServiceURL,
			Timeout:     time.Duration(cfg.PoseServiceTimeoutSec) * time.Second,
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: time.Duration(cfg.BreakerOpenTimeoutSec) * time.Second,
		})
	} else {
		log.Warn("pose service url not set, all video analyses will be simulated")
	}

	return &Server{
		apiKey:      params.APIKey,
		versionInfo: params.VersionInfo,
		config:      cfg,
		poseClient:  poseClient,
		simulator:   analysis.NewSimulator(cfg.SimulationSeed),
		resultCache: resultCache,
		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	// typed nils must not leak into the handlers' interfaces
	var (
		healthPose  interface{ Available() bool }
		healthRedis interface {
			Ping(ctx context.Context) *redis.StatusCmd
		}
		analyzeMiddleware []mux.MiddlewareFunc
	)
	if s.poseClient != nil {
		healthPose = s.poseClient
	}
	if s.redisClient != nil {
		healthRedis = s.redisClient
		analyzeMiddleware = append(analyzeMiddleware, middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			"analyze",
			s.config.AnalyzeRateLimitAllowedPerMin,
			s.metricsManager,
		))
	}

	miscHandler := misc.NewHandler(healthPose, healthRedis, s.versionInfo)
	miscHandler.SetupRoutes(r)

	analysisParams := analysis.HandlerParams{
		Simulator:            s.simulator,
		Cache:                s.resultCache,
		MetricsManager:       s.metricsManager,
		StrictExerciseLookup: s.config.StrictExerciseLookup,
		MaxUploadBytes:       s.config.MaxUploadMB << 20,
		TempDir:              s.config.UploadTempDir,
	}
	if s.poseClient != nil {
		analysisParams.PoseExtractor = s.poseClient
	}
	analysisHandler := analysis.NewHandler(analysisParams)
	analysisHandler.SetupRoutes(r, analyzeMiddleware...)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.apiKey)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve() {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Handler: router,
		Addr:    ipAndPort,
		// uploads and pose extraction of long videos take a while
		WriteTimeout: time.Duration(s.config.PoseServiceTimeoutSec)*time.Second + time.Minute,
		ReadTimeout:  5 * time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{Registry: s.promRegistry}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeConnections.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeConnections.Add(-1)
	default:
		// do nothing
	}
}
