package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/internal/app/archivehttp"
	"github.com/sir_venger/photo_archive/internal/usecase/archivesvc"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Run the HTTP server (default)",
	Flags:  serviceFlags(false),
	Action: runServe,
}

// runServe поднимает HTTP-сервер и корректно завершает его по сигналу.
func runServe(ctx context.Context, command *cli.Command) error {
	logger := getLogger(ctx)

	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	archiver, err := archivesvc.ResolveCommand(cfg.Archiver, cfg.Flatten)
	if err != nil {
		return err
	}
	for _, st := range archivesvc.CheckArchiver(archiver, cfg.PhotosDir) {
		if !st.Available {
			logger.Warn("preflight check failed",
				zap.String("check", st.Name), zap.String("target", st.Target), zap.String("detail", st.Detail))
		}
	}

	handler, _, err := archivehttp.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			// /uptime и длинные архивы сами не закончатся: рвём соединения,
			// архиваторы будут убиты через отмену контекста запросов.
			logger.Warn("graceful shutdown timed out, closing connections")
			err = server.Close()
		}
		shutdownErr <- err
	}()

	logger.Info("listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("photos_dir", cfg.PhotosDir),
		zap.Int("chunk_size", cfg.ChunkSize),
		zap.Duration("chunk_delay", cfg.ChunkDelay.Duration()),
		zap.Strings("archiver", archiver),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}
