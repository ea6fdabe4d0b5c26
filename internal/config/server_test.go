package config

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"PoseDetection/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type fakeDetector struct {
	connected atomic.Bool
	closed    atomic.Bool
}

func (f *fakeDetector) ProcessPoseFrame(context.Context, []byte) (*entity.PoseDetectionResult, error) {
	return &entity.PoseDetectionResult{Detected: false}, nil
}

func (f *fakeDetector) IsConnected() bool { return f.connected.Load() }

func (f *fakeDetector) Reconnect() error { return nil }

func (f *fakeDetector) CloseConnections() { f.closed.Store(true) }

func newTestServer(t *testing.T, detector *fakeDetector) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env, err := NewEnv(NewValidator())
	require.NoError(t, err)

	opts := []ServerOption{
		WithFiber(NewFiber(logger, env)),
		WithEnv(env),
		WithLogger(logger),
		WithValidator(NewValidator()),
		WithMiddleware(),
		WithUtils(),
	}
	if detector != nil {
		opts = append(opts, WithPoseDetector(detector))
	}

	server, err := NewServer(opts...)
	require.NoError(t, err)
	server.RegisterHandler()

	return server
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestBanner(t *testing.T) {
	server := newTestServer(t, &fakeDetector{})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, map[string]any{
		"message": BannerMessage,
		"status":  "running",
		"version": "1.0.0",
	}, decode(t, resp))
}

func TestHealth(t *testing.T) {
	detector := &fakeDetector{}
	server := newTestServer(t, detector)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", decode(t, resp)["status"])

	detector.connected.Store(true)

	resp, err = server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "healthy"}, decode(t, resp))
}

func TestHealthWithoutDetector(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORSPreflightIsOpen(t *testing.T) {
	server := newTestServer(t, &fakeDetector{})

	req := httptest.NewRequest(http.MethodOptions, "/api/detect-pose", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header")

	resp, err := server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestUnknownRouteUsesDetailEnvelope(t *testing.T) {
	server := newTestServer(t, &fakeDetector{})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode(t, resp), "detail")
}

func TestShutdownReleasesDetector(t *testing.T) {
	detector := &fakeDetector{}
	server := newTestServer(t, detector)

	_ = server.Shutdown()
	assert.True(t, detector.closed.Load())
}

func TestNewServerRequiresEngineAndLogger(t *testing.T) {
	_, err := NewServer()
	assert.ErrorContains(t, err, "fiber app is required")

	_, err = NewServer(WithLogger(logrus.New()), WithMiddleware())
	assert.ErrorContains(t, err, "env config must be initialized before middleware")
}

func TestNewEnvDefaults(t *testing.T) {
	env, err := NewEnv(NewValidator())
	require.NoError(t, err)

	assert.Equal(t, "8000", env.App.Port)
	assert.Equal(t, 10*time.Second, env.App.ShutdownTimeout)
	assert.Equal(t, "ws://localhost:8001/api/v1/pose/ws", env.Pose.URL)
	assert.Equal(t, 2, env.Pose.ModelComplexity)
	assert.Equal(t, 0.5, env.Pose.MinDetectionConfidence)
	assert.Equal(t, time.Second, env.Pose.ReconnectBackoff)
	assert.Equal(t, 30*time.Second, env.Pose.ReconnectMaxBackoff)
	assert.False(t, env.RateLimit.Enabled)
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9100")
	t.Setenv("AI_POSE_DETECTION_URL", "wss://pose.internal/ws")
	t.Setenv("AI_POSE_READ_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	env, err := NewEnv(NewValidator())
	require.NoError(t, err)

	assert.Equal(t, "9100", env.App.Port)
	assert.Equal(t, "wss://pose.internal/ws", env.Pose.URL)
	assert.Equal(t, 2*time.Second, env.Pose.ReadTimeout)
	assert.True(t, env.RateLimit.Enabled)
}

func TestNewEnvRejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"non numeric port":      {"APP_PORT", "http"},
		"model complexity":      {"AI_POSE_MODEL_COMPLEXITY", "3"},
		"confidence above one":  {"AI_POSE_MIN_DETECTION_CONFIDENCE", "1.5"},
		"unparsable duration":   {"AI_POSE_WRITE_TIMEOUT", "soon"},
		"unknown log level":     {"LOG_LEVEL", "loud"},
		"max backoff too small": {"AI_POSE_RECONNECT_MAX_BACKOFF", "100ms"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])

			_, err := NewEnv(NewValidator())
			assert.Error(t, err)
		})
	}
}
