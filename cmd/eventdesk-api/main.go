package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thenextevent/eventdesk/internal/app"
	"github.com/thenextevent/eventdesk/internal/config"
	"github.com/thenextevent/eventdesk/internal/gelf"
	"github.com/thenextevent/eventdesk/internal/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("EVENTDESK_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logOpts := logging.Options{Level: cfg.Log.Level, AddSource: cfg.Log.AddSource}
	logging.Init(os.Stderr, logOpts)

	// GELF UDP logging
	if cfg.Log.GELFAddr != "" {
		gelfWriter, err := gelf.New(cfg.Log.GELFAddr, "eventdesk-api")
		if err != nil {
			slog.Warn("GELF init failed", "error", err)
		} else {
			defer gelfWriter.Close()
			logging.Init(io.MultiWriter(os.Stderr, gelfWriter), logOpts)
			slog.Info("GELF logging enabled", "addr", cfg.Log.GELFAddr)
		}
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout(),
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("eventdesk api starting", "addr", cfg.Server.Addr, "db", cfg.Database.Driver,
			"media", cfg.Media.Backend, "email", cfg.Email.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
