// Package logging builds the logrus logger shared by prefsync components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const defaultLevel = logrus.InfoLevel

// Options configure logger construction.
type Options struct {
	Level string
	// Path is the log file. Empty writes to Output (stderr when nil).
	Path   string
	Output io.Writer
}

// New returns a text-formatted logger. The caller owns the returned closer.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   opts.Path != "",
	})
	logger.SetLevel(ParseLevel(opts.Level))

	if strings.TrimSpace(opts.Path) == "" {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		logger.SetOutput(out)
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, file, nil
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return defaultLevel
	}
	return parsed
}

// Discard returns a logger that drops everything. Handy for tests and for
// components constructed without a logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Component returns an entry tagged with the component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", name)
}
