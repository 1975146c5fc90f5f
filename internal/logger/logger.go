package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"awsiot-client/config"
)

const logFileName = "awsiot-bridge.log"

type Logger struct {
	*slog.Logger
}

func NewLogger(cfg *config.LogConfig) (*Logger, error) {
	if cfg == nil {
		return nil, os.ErrInvalid
	}

	// Create logging directory if it doesn't exist
	if cfg.LogToFile && cfg.Directory != "" {
		if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
			return nil, err
		}
	}

	writer := newWriter(cfg)
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return &Logger{Logger: slog.New(handler)}, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newWriter(cfg *config.LogConfig) io.Writer {
	var fileWriter io.Writer
	if cfg.LogToFile {
		fileWriter = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, logFileName),
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
	}

	switch {
	case cfg.LogToFile && cfg.LogToStdout:
		return io.MultiWriter(os.Stdout, fileWriter)
	case cfg.LogToFile:
		return fileWriter
	default:
		return os.Stdout
	}
}

// Fatal logs a message at Error level and exits the program
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
