package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type loggerCtxKey struct{}

// createLogger собирает zap-логгер. enabled=false отключает логирование целиком.
func createLogger(enabled, debug bool, logLevel string) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}

	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", logLevel, err)
	}

	var loggerCfg zap.Config
	if debug {
		loggerCfg = zap.NewDevelopmentConfig()
	} else {
		loggerCfg = zap.NewProductionConfig()
	}
	loggerCfg.Level = level

	logger, err := loggerCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Named("photoarchive"), nil
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

func tryLogger(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerCtxKey{}).(*zap.Logger)
	if !ok {
		return nil
	}
	return logger
}

func getLogger(ctx context.Context) *zap.Logger {
	if logger := tryLogger(ctx); logger != nil {
		return logger
	}
	return zap.NewNop()
}
