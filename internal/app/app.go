package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/five82/headlines/internal/config"
	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/feedsync"
	"github.com/five82/headlines/internal/logging"
	"github.com/five82/headlines/internal/metrics"
	"github.com/five82/headlines/internal/prefs"
	"github.com/five82/headlines/internal/ui"
)

const shutdownTimeout = 2 * time.Second

// Options configure the headlines application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/headlines/prefs.toml
	Origin      string
	PollMillis  int
	LogLevel    string
	MetricsAddr string
}

// Run boots the client and the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	logger, closer, err := logging.New(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("prefs unreadable, using defaults", "err", err)
	}

	m := metrics.New()
	controller, err := newController(cfg, logger, m)
	if err != nil {
		return err
	}

	logger.Info("starting", "origin", cfg.Origin, "max_items", cfg.MaxItems)
	controller.Start()
	defer controller.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Quitting the UI ends the whole run.
		defer cancel()
		return ui.Run(gctx, ui.Options{
			Feed:       controller,
			LogPath:    cfg.LogPath(),
			ThemeName:  userPrefs.Theme,
			AlertsOnly: userPrefs.AlertsOnly,
			PrefsPath:  opts.PrefsPath,
		})
	})

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, m)
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("stopped", "err", err)
	return err
}

// applyOverrides layers command-line values over the loaded config.
func applyOverrides(cfg config.Config, opts Options) config.Config {
	if origin := strings.TrimSpace(opts.Origin); origin != "" {
		cfg.Origin = origin
		// An explicit origin replaces any base URL from the file.
		cfg.BaseURL = ""
	}
	if opts.PollMillis > 0 {
		cfg.PollInterval = time.Duration(opts.PollMillis) * time.Millisecond
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if addr := strings.TrimSpace(opts.MetricsAddr); addr != "" {
		cfg.MetricsAddr = addr
	}
	return cfg
}

// newController wires the HTTP client and the sync controller for cfg.
func newController(cfg config.Config, logger *log.Logger, m *metrics.Metrics) (*feedsync.Controller, error) {
	endpoints, err := feed.ResolveEndpoints(cfg.Origin, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoints: %w", err)
	}
	client := feed.NewClient(endpoints,
		feed.WithTimeout(cfg.RequestTimeout),
		feed.WithLogger(logging.Named(logger, "feed")),
	)
	controller, err := feedsync.New(feedsync.Options{
		StreamURL:    endpoints.Stream,
		Fetcher:      client,
		MaxItems:     cfg.MaxItems,
		PollInterval: cfg.PollInterval,
		PingInterval: cfg.PingInterval,
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		return nil, fmt.Errorf("init sync controller: %w", err)
	}
	return controller, nil
}

// newMetricsServer exposes m on /metrics.
func newMetricsServer(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
