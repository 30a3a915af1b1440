package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerOptions struct {
	Key  string
	Data interface{}
}

// Logger is replaced by InitializeLogger. It is a no-op until then so packages
// can log from tests and init code without a running server.
var Logger = zap.NewNop()

var initOnce sync.Once

// InitializeLogger builds the process logger. GIN_MODE=debug gives a console
// development logger, anything else the JSON production logger.
func InitializeLogger() {
	initOnce.Do(func() {
		var cfg zap.Config
		if os.Getenv("GIN_MODE") == "debug" {
			cfg = zap.NewDevelopmentConfig()
		} else {
			cfg = zap.NewProductionConfig()
		}
		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			if level, err := zapcore.ParseLevel(raw); err == nil {
				cfg.Level.SetLevel(level)
			}
		}
		built, err := cfg.Build()
		if err != nil {
			return
		}
		Logger = built
		zap.ReplaceGlobals(built)
	})
}

// Sync flushes buffered entries. Called from CleanUpServices.
func Sync() {
	_ = Logger.Sync()
}

func fields(payload []LoggerOptions) []zapcore.Field {
	zapFields := []zapcore.Field{}
	for _, data := range payload {
		if err, ok := data.Data.(error); ok {
			zapFields = append(zapFields, zap.NamedError(data.Key, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(data.Key, data.Data))
	}
	return zapFields
}

// This logs info level messages.
func Info(msg string, payload ...LoggerOptions) {
	Logger.Info(msg, fields(payload)...)
}

// This logs error messages.
// describe the incident in msg and pass the error through logger options
// with key error
func Error(msg string, payload ...LoggerOptions) {
	Logger.Error(msg, fields(payload)...)
}

// This logs warning messages.
func Warning(msg string, payload ...LoggerOptions) {
	Logger.Warn(msg, fields(payload)...)
}
