package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

// Watchdog polls a Checker at a fixed interval until it reaches the wanted
// state or the timeout elapses. A timeout is an error.
type Watchdog struct {
	checker  Checker
	timeout  time.Duration
	interval time.Duration
	logger   *log.Logger
}

// NewWatchdog creates a watchdog. A non-positive timeout uses DefaultTimeout.
func NewWatchdog(checker Checker, timeout time.Duration, logger *log.Logger) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watchdog{
		checker:  checker,
		timeout:  timeout,
		interval: DefaultInterval,
		logger:   logger,
	}
}

// WithInterval returns a copy of the watchdog polling at interval.
func (w *Watchdog) WithInterval(interval time.Duration) *Watchdog {
	cp := *w
	cp.interval = interval
	return &cp
}

// WaitForAvailable blocks until the checker reports availability.
func (w *Watchdog) WaitForAvailable(ctx context.Context) error {
	return w.wait(ctx, true)
}

// WaitForUnavailable blocks until the checker stops reporting availability.
func (w *Watchdog) WaitForUnavailable(ctx context.Context) error {
	return w.wait(ctx, false)
}

func (w *Watchdog) wait(parent context.Context, want bool) error {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	w.logger.Debug("watching", "target", w.checker.String(), "available", want, "timeout", w.timeout)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		available := w.checker.IsAvailable(ctx)
		// A probe cut short by the deadline says nothing about the target.
		if ctx.Err() != nil {
			return w.expired(parent, want)
		}
		if available == want {
			return nil
		}

		select {
		case <-ctx.Done():
			return w.expired(parent, want)
		case <-ticker.C:
		}
	}
}

func (w *Watchdog) expired(parent context.Context, want bool) error {
	if err := parent.Err(); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "stopped watching %s", w.checker)
	}
	if want {
		return errUtils.Newf(errUtils.ErrTimeout, "%s did not become available within %s", w.checker, w.timeout)
	}
	return errUtils.Newf(errUtils.ErrTimeout, "%s was still available after %s", w.checker, w.timeout)
}
