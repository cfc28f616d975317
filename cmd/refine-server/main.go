// Command refine-server serves the refinement pipeline over HTTP.
//
// Usage:
//
//	go run ./cmd/refine-server [--config path] [--addr :8080]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/refine"
	"github.com/chaz8081/gostt-refine/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gostt-refine/config.yaml)")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	cfg := config.Default()
	path := *configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			path = config.DefaultConfigPath()
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	cfg.ResolveAPIKey()

	client, err := refine.New(&cfg.Refine, refine.WithLogger(logger))
	if err != nil {
		slog.Error("[server] refine client", "error", err)
		os.Exit(1)
	}
	style, _ := refine.ParseStyle(cfg.Refine.Style)
	srv := server.New(&cfg.Server, client, style, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.Server.Addr) }()

	select {
	case err := <-errCh:
		slog.Error("[server] stopped", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	slog.Info("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[server] shutdown", "error", err)
	}
}
