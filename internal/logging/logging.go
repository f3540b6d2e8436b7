// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"neuromentor/internal/config"
)

const fileTimeLayout = "2006-01-02__15-04-05"

type Logger struct {
	*slog.Logger
	Writer io.Writer

	file *lumberjack.Logger
}

// New writes to stdout and, when saving is enabled, to a size-rotated file
// under cfg.Dir. The returned logger is also installed as the slog default.
func New(cfg config.LogConfig) (*Logger, error) {
	writer := io.Writer(os.Stdout)

	var file *lumberjack.Logger
	if cfg.Save {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, err
		}
		filename := cfg.Filename
		if filename == "" {
			filename = DefaultFilename(time.Now())
		}
		file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, filename),
			MaxSize:    max(cfg.MaxSizeMB, 1),
			MaxBackups: max(cfg.MaxBackupCount, 0),
		}
		writer = io.MultiWriter(os.Stdout, file)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return &Logger{Logger: logger, Writer: writer, file: file}, nil
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func DefaultFilename(now time.Time) string {
	return now.Format(fileTimeLayout) + ".log"
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
