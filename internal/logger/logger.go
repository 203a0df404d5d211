package logger

import (
	"go.uber.org/zap"
)

type LoggerI interface {
	Info(msg string, keysAndValues ...interface{})
	Init(lvl string) error
}

type Logger struct {
	Log *zap.Logger
}

func New() *Logger {
	return &Logger{
		Log: zap.NewNop(),
	}
}

// Init replaces the no-op logger with a production zap logger at the given
// level.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = zl
	return nil
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	sugar := l.Log.Sugar()

	sugar.Infow(msg, keysAndValues...)
}
