package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flcs-chatbot-be/internal/bootstrap"
	"flcs-chatbot-be/internal/config"
	"flcs-chatbot-be/internal/controller"
	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/service"
	"flcs-chatbot-be/pkg/dialogue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChat struct{}

func (staticChat) Chat(ctx context.Context, sessionID, query string) (dialogue.Envelope, error) {
	return dialogue.NewEnvelope("ok", nil), nil
}

type okHealth struct{}

func (okHealth) Status(ctx context.Context) service.HealthReport {
	return service.HealthReport{OK: true, Issues: []string{}}
}

func newTestServer(max int) *Server {
	return newTestServerWith(func(cfg *config.Config) { cfg.App.RateLimitMax = max })
}

func newTestServerWith(configure func(cfg *config.Config)) *Server {
	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			CorsAllowedOrigins: "*",
			RateLimitMax:       30,
			RateLimitWindow:    time.Minute,
		},
		Session: config.SessionConfig{Secret: "test", CookieName: "sid", TTL: time.Hour},
	}
	configure(cfg)
	log := logger.NewNopLogger()
	container := &bootstrap.Container{
		Logger:              log,
		ChatbotController:   controller.NewChatbotController(staticChat{}, nil, log),
		AnalyticsController: controller.NewAnalyticsController(nil),
		HealthController:    controller.NewHealthController(okHealth{}),
	}
	return New(cfg, container)
}

func chatFrom(t *testing.T, srv *Server, ip string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
	resp, err := srv.GetApp().Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestChatRateLimitPerForwardedIP(t *testing.T) {
	srv := newTestServer(2)

	assert.Equal(t, 200, chatFrom(t, srv, "203.0.113.1"))
	assert.Equal(t, 200, chatFrom(t, srv, "203.0.113.1"))
	assert.Equal(t, 429, chatFrom(t, srv, "203.0.113.1"))

	assert.Equal(t, 200, chatFrom(t, srv, "203.0.113.2"))
}

func TestHealthIsNotRateLimited(t *testing.T) {
	srv := newTestServer(1)

	for i := 0; i < 3; i++ {
		resp, err := srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestDefaultLimitsApplyToEveryRoute(t *testing.T) {
	srv := newTestServerWith(func(cfg *config.Config) {
		cfg.App.HourlyLimit = 2
		cfg.App.DailyLimit = 200
	})

	health := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := srv.GetApp().Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, health("198.51.100.7"))
	assert.Equal(t, 200, health("198.51.100.7"))
	assert.Equal(t, 429, health("198.51.100.7"))
	assert.Equal(t, 200, health("198.51.100.8"))
}

func TestServesChatWidget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>FLCS Assistant</h1>"), 0o644))
	srv := newTestServerWith(func(cfg *config.Config) { cfg.App.StaticDir = dir })

	resp, err := srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "FLCS Assistant")

	resp, err = srv.GetApp().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
