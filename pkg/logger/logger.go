package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop() // safe no-op until Init runs
)

// Init builds the global logger at the requested level. Unknown level
// strings fall back to info rather than failing start-up.
func Init(level string) error {
	built, err := buildConfig(level).Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = built
	mu.Unlock()
	return nil
}

func buildConfig(level string) zap.Config {
	parsed := zapcore.InfoLevel
	_ = parsed.UnmarshalText([]byte(level))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.Sampling = nil // every entry matters at this traffic volume
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithModule returns a child logger tagged with the owning module.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// Sync flushes any buffered entries.
func Sync() error { return Logger().Sync() }

// Info logs at info level on the global logger.
func Info(msg string, fields ...zap.Field) { Logger().Info(msg, fields...) }

// Warn logs at warn level on the global logger.
func Warn(msg string, fields ...zap.Field) { Logger().Warn(msg, fields...) }

// Error logs at error level on the global logger.
func Error(msg string, fields ...zap.Field) { Logger().Error(msg, fields...) }

// Debug logs at debug level on the global logger.
func Debug(msg string, fields ...zap.Field) { Logger().Debug(msg, fields...) }
