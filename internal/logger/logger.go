package logger

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
)

var Module = fx.Provide(NewLogger)

func NewLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel))); err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}

	zcfg := zap.NewProductionConfig()
	if cfg.DevLogging {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}
	return l.Sugar(), nil
}

// GormWriter adapts a sugared logger to gorm's logger.Writer.
type GormWriter struct {
	L *zap.SugaredLogger
}

func (w GormWriter) Printf(format string, args ...interface{}) {
	w.L.Debugf(format, args...)
}
