// Package slogutil wires slog up with level parsing and optional
// lumberjack-backed file rotation for the CLI entry point.
package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the logging setup.
type Config struct {
	// File is the log file path. Empty means console only.
	File string `yaml:"file" mapstructure:"file"`

	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// MaxSize is the size in MB before rotation.
	MaxSize int `yaml:"max_size" mapstructure:"max_size"`

	// MaxAge is the number of days to keep rotated files.
	MaxAge int `yaml:"max_age" mapstructure:"max_age"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress" mapstructure:"compress"`
}

// ParseLevel maps a level string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
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

// Setup builds a logger from cfg. With a file configured it logs to both
// console and the rotating file.
func Setup(cfg Config) *slog.Logger {
	var writer io.Writer = os.Stdout

	if cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writer = io.MultiWriter(os.Stdout, fileWriter)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})

	return slog.New(handler)
}
