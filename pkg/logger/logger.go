package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide zap logger for the given environment.
// "local" and "development" get a human-readable console logger at debug
// level; everything else gets production JSON at info level.
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case "local", "development":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	return zap.Must(cfg.Build())
}
