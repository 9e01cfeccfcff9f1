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

	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/config"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/core"
	"github.com/SGokul2005/AR-COLORIZE-REAL-TIME-WALL-REPAINTING-SYSTEM-1/internal/tui"
)

const shutdownTimeout = 10 * time.Second

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults apply when empty)")
	logLevel := flag.String("log-level", "", "Override log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "", "Override log format: json, text")
	withTUI := flag.Bool("tui", false, "Show the interactive terminal status screen")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arcolorized %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arcolorized: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the file for log and UI settings.
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *withTUI {
		cfg.UI.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "arcolorized: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	slog.Info("starting arcolorized",
		"version", version,
		"config", *configPath,
		"instance", cfg.Instance.ID,
	)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	session, err := core.New(cfg, version)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	// Run session in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- session.Run(ctx) // Always send, even if nil
	}()

	// The terminal screen quits back through the shared context, so a 'q'
	// there tears the whole service down.
	var uiDone chan struct{}
	if cfg.UI.Enabled {
		ui := tui.New(version, session.Status, session.Callbacks())
		uiDone = make(chan struct{})
		go func() {
			defer close(uiDone)
			if err := ui.Run(ctx); err != nil {
				slog.Error("terminal ui error", "error", err)
			}
			cancel()
		}()
	}

	// Wait for shutdown signal or error
	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case runErr = <-errChan:
		if runErr != nil {
			slog.Error("session error", "error", runErr)
		} else {
			slog.Info("session stopped")
		}
	}
	cancel()

	// Graceful shutdown
	slog.Info("shutting down gracefully", "timeout", shutdownTimeout)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErr := session.Shutdown(shutdownCtx)

	// The screen must be restored before the process exits.
	if uiDone != nil {
		<-uiDone
	}

	if shutdownErr != nil {
		slog.Error("shutdown failed", "error", shutdownErr)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
	slog.Info("arcolorized stopped")
}

// setupLogger installs the process-wide slog handler on stderr.
func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
