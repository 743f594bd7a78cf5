package util

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

// InitLogger initializes the global logger for env, optionally overriding the level
func InitLogger(env, level string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	named := built.Named("storefront")
	logger.Store(named)

	zap.ReplaceGlobals(named)
	return nil
}

// GetLogger returns the global logger
func GetLogger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	l, _ := zap.NewDevelopment()
	logger.CompareAndSwap(nil, l)
	return logger.Load()
}

// SetLogger swaps the global logger, mostly for tests
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if l := logger.Load(); l != nil {
		_ = l.Sync()
	}
}
