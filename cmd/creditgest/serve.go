package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/creditgest/internal/api"
	"github.com/dgallion1/creditgest/internal/config"
	"github.com/dgallion1/creditgest/internal/extract"
	"github.com/dgallion1/creditgest/internal/ingest"
	"github.com/dgallion1/creditgest/internal/parser"
	"github.com/dgallion1/creditgest/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return err
	}

	profile, err := loadProfile(cfg.ProfilePath)
	if err != nil {
		log.Error("invalid extraction profile", "path", cfg.ProfilePath, "error", err)
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("open store", "path", cfg.DatabasePath, "error", err)
		return err
	}
	defer st.Close()

	extractor := extract.NewExtractor(profile, parser.NewXMLParser(cfg.MaxTreeDepth, cfg.MaxTreeNodes), log)
	svc, err := ingest.NewService(extractor, st, extract.NewStats(cfg.StatsWindow), log, ingest.Options{
		CacheSize:     cfg.ResultCacheSize,
		MaxBytes:      cfg.MaxUploadBytes,
		MaxConcurrent: cfg.MaxConcurrentExtract,
	})
	if err != nil {
		return err
	}

	srv := api.NewServer(svc, st, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting creditgest", "port", cfg.Port, "database", cfg.DatabasePath, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return fmt.Errorf("listen: %w", err)
	}
	<-done
	return nil
}

func loadProfile(path string) (*extract.Profile, error) {
	if path == "" {
		return extract.DefaultProfile(), nil
	}
	return extract.LoadProfile(path)
}
