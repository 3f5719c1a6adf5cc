// Package logger builds the zap logger shared by the server, stores and CLI.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared logger: console output at debug level when debug is
// set, JSON at info level otherwise.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if debug {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		z.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = z.Build()
	} else {
		z := zap.NewProductionConfig()
		z.EncoderConfig.TimeKey = "time"
		z.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err = z.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Sugar(), nil
}

// Must is New for entry points that cannot continue without a logger.
func Must(debug bool) *zap.SugaredLogger {
	log, err := New(debug)
	if err != nil {
		panic(err)
	}
	return log
}
