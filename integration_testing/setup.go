package integration_testing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/repscore/internal"
	"github.com/2beens/repscore/internal/config"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverHost           = "localhost"
	testAPIKey           = "integration-api-key"
	analyzeAllowedPerMin = 3
)

var errDockerUnavailable = errors.New("docker unavailable")

type Suite struct {
	dockerPool     *dockertest.Pool
	server         *internal.Server
	serverEndpoint string
	teardown       []func()
}

// newSuite starts redis in docker and the whole service on a free port.
// It returns errDockerUnavailable when no docker daemon can be reached.
func newSuite(ctx context.Context) (_ *Suite, err error) {
	suite := &Suite{
		teardown: make([]func(), 0),
	}
	defer func() {
		if err != nil {
			suite.cleanup()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDockerUnavailable, err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %w", errDockerUnavailable, err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}

	serverPort, err := freePort()
	if err != nil {
		return nil, err
	}

	cfg := getTestConfig(redisPort, serverPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			APIKey:                  testAPIKey,
			VersionInfo:             "test-version-info",
			RedisPassword:           "",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}

	suite.server.Serve()
	suite.serverEndpoint = fmt.Sprintf("http://%s", net.JoinHostPort(serverHost, strconv.Itoa(serverPort)))

	if err := suite.waitForServer(10 * time.Second); err != nil {
		return nil, err
	}

	return suite, nil
}

func (s *Suite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func (s *Suite) waitForServer(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(s.serverEndpoint + "/version")
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server not up after %s", timeout)
}

func getTestConfig(redisPort string, serverPort int) *config.Config {
	return &config.Config{
		Environment:                   "development",
		Host:                          serverHost,
		Port:                          serverPort,
		PrometheusMetricsHost:         serverHost,
		PrometheusMetricsPort:         "0",
		RedisHost:                     "localhost",
		RedisPort:                     redisPort,
		AnalyzeRateLimitAllowedPerMin: analyzeAllowedPerMin,
		PoseServiceTimeoutSec:         10,
		MaxUploadMB:                   1,
		ResultCacheSizeMB:             1,
		ResultCacheTTLSec:             60,
		AllowedOrigins:                []string{"*"},
		BreakerMaxFailures:            3,
		BreakerOpenTimeoutSec:         30,
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		_ = redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	if err := s.dockerPool.Retry(func() error {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", redisPort), time.Second)
		if err != nil {
			return err
		}
		return conn.Close()
	}); err != nil {
		return "", fmt.Errorf("wait for redis: %w", err)
	}

	return redisPort, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(serverHost, "0"))
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
