package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chaz8081/gostt-refine/internal/app"
	"github.com/chaz8081/gostt-refine/internal/audio"
	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/hotkey"
	"github.com/chaz8081/gostt-refine/internal/output"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gostt-refine/config.yaml)")
	styleFlag := flag.String("style", "", "initial refinement style (overrides refine.style)")
	initConfig := flag.Bool("init", false, "write a default config file and exit")
	flag.Parse()

	if *initConfig {
		path, err := config.WriteDefault()
		if err != nil {
			fatal("write default config", err)
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("config", err)
	}
	if *styleFlag != "" {
		cfg.Refine.Style = *styleFlag
	}
	if err := cfg.Validate(); err != nil {
		fatal("config validation", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	cfg.ResolveAPIKey()
	if cfg.Refine.APIKey == "" {
		slog.Warn("[main] no API key configured; requests will be rejected by the service", "env", config.APIKeyEnv)
	}

	printBanner(cfg)

	client, err := refine.New(&cfg.Refine, refine.WithLogger(logger))
	if err != nil {
		fatal("refine client", err)
	}

	backend, err := audio.NewMalgoBackend()
	if err != nil {
		fatal("audio backend", err)
	}
	recorder := audio.NewRecorder(backend, cfg.Audio.SampleRate, cfg.Audio.Channels)
	slog.Info("[main] audio recorder ready", "sample_rate", cfg.Audio.SampleRate, "channels", cfg.Audio.Channels)

	style, _ := refine.ParseStyle(cfg.Refine.Style) // validated above
	opts := []app.Option{
		app.WithLogger(logger),
		app.WithPresenter(output.NewActions(&cfg.Output, os.Stdout, logger)),
		app.WithMinDuration(time.Duration(cfg.Audio.MinDuration * float64(time.Second))),
	}
	if cfg.Output.Notify {
		opts = append(opts, app.WithCelebrator(output.NewNotifier(logger)))
	}
	if cfg.Output.Meter {
		opts = append(opts, app.WithMeter(os.Stderr, 50*time.Millisecond))
	}
	ctl := app.NewController(recorder, client, style, opts...)

	var last app.State
	ctl.OnChange(func(s app.State) {
		// The meter owns the terminal line while recording.
		if s.Phase != last.Phase || s.Style != last.Style || s.MicErr != last.MicErr {
			fmt.Fprintln(os.Stderr, app.DescribeState(s))
		}
		last = s
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		ctl.Run(ctx)
	}()

	var listener *hotkey.Listener
	if cfg.Hotkey.Enabled {
		listener = hotkey.NewListener(cfg.Hotkey.Keys, cfg.Hotkey.Mode)
		go listener.Start()
		go hotkey.Forward(listener.Events(), ctl)
		slog.Info("[main] hotkey listener ready", "keys", strings.Join(cfg.Hotkey.Keys, "+"), "mode", cfg.Hotkey.Mode)
	}

	go func() {
		if app.RunConsole(ctx, os.Stdin, os.Stdout, ctl) {
			stop()
		}
	}()

	fmt.Println(app.DescribeState(ctl.Snapshot()))
	if listener != nil {
		fmt.Printf("Press %s to record. Type \"help\" for commands, Ctrl+C to quit.\n", strings.Join(cfg.Hotkey.Keys, "+"))
	} else {
		fmt.Println("Type \"r\" to start and stop recording, \"help\" for commands.")
	}

	<-ctx.Done()
	slog.Info("[main] shutting down...")
	<-runDone
	if listener != nil {
		listener.Stop()
	}
	recorder.Close()
	slog.Info("[main] goodbye")
	// Exit directly to avoid gohook's C cleanup crash.
	// The OS reclaims the event hook on process exit.
	os.Exit(0)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		slog.Info("[main] config loaded", "path", defaultPath)
		return cfg, nil
	}

	slog.Info("[main] no config file found, using defaults")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	hk := "disabled"
	if cfg.Hotkey.Enabled {
		hk = fmt.Sprintf("%s (%s mode)", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)
	}
	fmt.Println("=== gostt-refine ===")
	fmt.Printf("  Model:   %s (%s)\n", cfg.Refine.Model, cfg.Refine.Backend)
	fmt.Printf("  Style:   %s\n", cfg.Refine.Style)
	fmt.Printf("  Hotkey:  %s\n", hk)
	fmt.Printf("  Audio:   %dHz, %dch\n", cfg.Audio.SampleRate, cfg.Audio.Channels)
	fmt.Printf("  Inject:  %s\n", cfg.Output.Inject)
	fmt.Printf("  Log:     %s\n", cfg.LogLevel)
	fmt.Println("====================")
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
