package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/headlines/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/headlines/config.toml)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	origin := flag.String("origin", "", "feed origin, e.g. http://localhost:8000 (optional)")
	pollMillis := flag.Int("poll", 0, "fallback poll interval in milliseconds (optional, defaults to 10000)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (optional)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		PrefsPath:   *prefsPath,
		Origin:      *origin,
		LogLevel:    *logLevel,
		MetricsAddr: *metricsAddr,
	}
	if poll := *pollMillis; poll > 0 {
		opts.PollMillis = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "headlines: %v\n", err)
		return 1
	}
	return 0
}
