package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sercom-core/internal/hub"
	"sercom-core/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sercom-hub: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Hub.Addr = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sercom-hub: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Hub.Log = logger
	srv := hub.New(cfg.Hub)
	logger.Sugar().Infow("starting hub", "listen", cfg.Hub.Addr)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Sugar().Errorw("hub stopped", "err", err)
		os.Exit(1)
	}
}
