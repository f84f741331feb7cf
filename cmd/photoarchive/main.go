package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var loggerDeferFunc func() error

func main() {
	app := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if loggerDeferFunc != nil {
			_ = loggerDeferFunc()
		}
	}()

	_ = app.Run(ctx, os.Args)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "photoarchive",
		Usage: "Streams ZIP archives of photo albums over HTTP",
		Flags: append(globalFlags(), serviceFlags(true)...),
		Commands: []*cli.Command{
			serveCommand,
			packCommand,
			fetchCommand,
			checkCommand,
		},
		Action: runServe,
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			// pack запускается сервером внутри каталога альбома: stdout занят архивом,
			// а чужой config.yaml из альбома читать нельзя.
			if command.Args().First() == packCommand.Name {
				return withLogger(ctx, zap.NewNop()), nil
			}

			cfg, err := loadConfig(command)
			if err != nil {
				return nil, err
			}

			logger, err := createLogger(cfg.Logging, command.Bool(flagDebug), cfg.LogLevel)
			if err != nil {
				return nil, err
			}
			logger.Debug("logger created", zap.String("log_level", cfg.LogLevel))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withLogger(ctx, logger), nil
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			if logger := tryLogger(ctx); logger != nil && logger.Core().Enabled(zap.FatalLevel) {
				logger.Fatal("failed to run application", zap.Error(err))
			} else {
				log.Fatal(fmt.Errorf("failed to run application: %w", err))
			}
		},
	}
}
