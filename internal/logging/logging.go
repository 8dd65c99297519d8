package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/injurywire/internal/model"
)

// Logger bundles a logger with the file it writes to, if any
type Logger struct {
	*log.Logger
	file *os.File
}

// New builds a logger from config. Output goes to the configured file,
// or to stderr when no file is set.
func New(cfg model.LogConfig) (*Logger, error) {
	var w io.Writer = os.Stderr
	var file *os.File

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		file = f
	}

	logger, err := NewWithWriter(w, cfg)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, err
	}

	return &Logger{Logger: logger, file: file}, nil
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, cfg model.LogConfig) (*log.Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	return log.NewWithOptions(w, opts), nil
}

// Discard returns a logger that drops everything, for tests and quiet paths
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Close closes the log file
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
