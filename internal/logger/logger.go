// Package logger builds the zap logger used by the CLI.
//
// Console output goes to stderr so that reports on stdout stay clean. When a
// log file is configured it is rotated by lumberjack and always written as
// JSON.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"arbsweep/internal/config"
)

// Logger is a zap logger that owns its file sink.
type Logger struct {
	*zap.Logger
	level  zap.AtomicLevel
	closer io.Closer
}

// New creates a logger writing to stderr and, if cfg.File is set, to a
// rotated file.
func New(cfg config.LogConfig) (*Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with the console output redirected to w.
func NewWithWriter(cfg config.LogConfig, w io.Writer) (*Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var enc zapcore.Encoder

	switch cfg.Format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console", "":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(w), level)}

	l := &Logger{level: level}

	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}

		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(lj), level))
		l.closer = lj
	}

	l.Logger = zap.New(zapcore.NewTee(cores...))

	return l, nil
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) error {
	return l.level.UnmarshalText([]byte(level))
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Close flushes the logger and closes the file sink.
func (l *Logger) Close() error {
	_ = l.Sync()

	if l.closer != nil {
		return l.closer.Close()
	}

	return nil
}
