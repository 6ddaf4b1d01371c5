// Package logging builds the charmbracelet logger shared by the CLI, the
// daemon and every container it drives.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

// New returns a logger for cfg. The returned closer releases the log file
// when Output names one; it is a no-op for stdout and stderr.
func New(cfg config.LoggingConfig) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	formatter, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot open log file %s", cfg.Output)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "cargo",
	})
	return logger, closer, nil
}

// ParseLevel maps a level name onto a log.Level. Empty means info.
func ParseLevel(s string) (log.Level, error) {
	if strings.TrimSpace(s) == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel, errUtils.Build(errUtils.Usagef("invalid log level %q", s)).
			WithHint("supported levels are debug, info, warn, error and fatal").
			Err()
	}
	return level, nil
}

// ParseFormat maps text, json or logfmt onto a formatter.
func ParseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, errUtils.Usagef("invalid log format %q: expected text, json or logfmt", s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
