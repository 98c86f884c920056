package logger

import (
	"fmt"

	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type ZapLogger struct {
	lg *zap.SugaredLogger
}

func New(cfg config.Logger) (ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return ZapLogger{}, fmt.Errorf("parse level error: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	if len(cfg.Output) != 0 {
		zapCfg.OutputPaths = cfg.Output
	}

	if len(cfg.ErrOutput) != 0 {
		zapCfg.ErrorOutputPaths = cfg.ErrOutput
	}

	l, err := zapCfg.Build()
	if err != nil {
		return ZapLogger{}, fmt.Errorf("build logger error: %w", err)
	}

	return ZapLogger{lg: l.Sugar()}, nil
}

func (z ZapLogger) Debugf(format string, args ...interface{}) {
	z.lg.Debugf(format, args...)
}

func (z ZapLogger) Info(args ...interface{}) {
	z.lg.Info(args...)
}

func (z ZapLogger) Infof(format string, args ...interface{}) {
	z.lg.Infof(format, args...)
}

func (z ZapLogger) Warnf(format string, args ...interface{}) {
	z.lg.Warnf(format, args...)
}

func (z ZapLogger) Error(args ...interface{}) {
	z.lg.Error(args...)
}

func (z ZapLogger) Errorf(format string, args ...interface{}) {
	z.lg.Errorf(format, args...)
}
