package obs

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// Logger returns the shared structured logger. Before InitLogger is called it
// falls back to a production JSON logger writing to stdout.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = mustBuild("info")
	}
	return logger
}

// InitLogger configures the shared logger with the given level ("debug",
// "info", "warn", "error"). Unknown levels default to info.
func InitLogger(level string) *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = mustBuild(level)
	return logger
}

// SetLogger replaces the shared logger. Tests use this to capture output.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

func mustBuild(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		panic(err)
	}
	return l
}
