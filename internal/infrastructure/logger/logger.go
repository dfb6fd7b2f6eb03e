package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"orders/internal/config"
)

const serviceName = "orders"

// New builds the service logger. JSON goes to stderr for shipping, console
// output is meant for local runs. An unparseable level falls back to info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "", config.LogFormatJSON:
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case config.LogFormatConsole:
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.InitialFields = map[string]interface{}{"service": serviceName}

	return zcfg.Build()
}
