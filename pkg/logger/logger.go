package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
	exit  = os.Exit
)

// Init builds the process logger. Production gets JSON output, everything
// else the console encoder. An unparseable level falls back to info.
func Init(env, level string) error {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set replaces the process logger, mainly for tests.
func Set(l *zap.Logger) {
	base = l
	sugar = l.Sugar()
}

// L returns the structured logger.
func L() *zap.Logger {
	return base
}

func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

// Fatal logs at error level, flushes and exits with status 1.
func Fatal(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
	Sync()
	exit(1)
}

func Sync() {
	_ = base.Sync()
}
