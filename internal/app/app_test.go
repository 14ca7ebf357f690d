package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/headlines/internal/config"
	"github.com/five82/headlines/internal/logging"
	"github.com/five82/headlines/internal/metrics"
	"github.com/five82/headlines/internal/stream"
)

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "http://file-base:9000"

	got := applyOverrides(cfg, Options{
		Origin:      " https://news.example.com ",
		PollMillis:  2500,
		LogLevel:    "DEBUG",
		MetricsAddr: "127.0.0.1:9102",
	})
	if got.Origin != "https://news.example.com" || got.BaseURL != "" {
		t.Fatalf("origin override = %q base=%q", got.Origin, got.BaseURL)
	}
	if got.PollInterval != 2500*time.Millisecond {
		t.Fatalf("PollInterval = %v", got.PollInterval)
	}
	if got.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", got.LogLevel)
	}
	if got.MetricsAddr != "127.0.0.1:9102" {
		t.Fatalf("MetricsAddr = %q", got.MetricsAddr)
	}
}

func TestApplyOverridesKeepsConfigWhenUnset(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "http://file-base:9000"
	got := applyOverrides(cfg, Options{})
	if got != cfg {
		t.Fatalf("empty overrides changed config: %+v", got)
	}
}

func TestNewControllerRejectsBadOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.Origin = "ftp://example.com"
	if _, err := newController(cfg, logging.Discard(), metrics.New()); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestNewControllerStartsIdle(t *testing.T) {
	c, err := newController(config.Default(), logging.Discard(), metrics.New())
	if err != nil {
		t.Fatalf("newController: %v", err)
	}
	view := c.Snapshot()
	if view.Running || view.Status != stream.StateIdle || len(view.Items) != 0 {
		t.Fatalf("fresh controller view = %+v", view)
	}
}

func TestMetricsServerServesRegistry(t *testing.T) {
	m := metrics.New()
	m.RecordReconnect()
	srv := newMetricsServer("127.0.0.1:0", m)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "headlines_reconnects_total 1") {
		t.Fatalf("exposition missing reconnect counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected route status = %d", rec.Code)
	}
}
