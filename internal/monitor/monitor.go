// Package monitor checks whether a container or deployable is serving
// requests, and waits for it to start or stop doing so.
package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultTimeout bounds every readiness wait unless configured otherwise.
	DefaultTimeout = 120 * time.Second

	// DefaultInterval is the delay between two readiness probes.
	DefaultInterval = 100 * time.Millisecond

	// requestTimeout bounds a single probe.
	requestTimeout = 5 * time.Second
)

// Checker reports whether something is available right now.
type Checker interface {
	IsAvailable(ctx context.Context) bool
	String() string
}

// URLMonitor checks a URL. The URL is available when it answers with a 2xx
// status and, if Contains is set, the body contains that string.
type URLMonitor struct {
	url      string
	contains string
	client   *resty.Client
}

// Option customizes a URLMonitor.
type Option func(*URLMonitor)

// WithContains requires the response body to contain s.
func WithContains(s string) Option {
	return func(m *URLMonitor) { m.contains = s }
}

// WithClient replaces the HTTP client.
func WithClient(c *resty.Client) Option {
	return func(m *URLMonitor) { m.client = c }
}

// NewURLMonitor creates a monitor for url.
func NewURLMonitor(url string, opts ...Option) *URLMonitor {
	m := &URLMonitor{
		url:    url,
		client: resty.New().SetTimeout(requestTimeout),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsAvailable probes the URL once.
func (m *URLMonitor) IsAvailable(ctx context.Context) bool {
	resp, err := m.client.R().SetContext(ctx).Get(m.url)
	if err != nil || !resp.IsSuccess() {
		return false
	}
	if m.contains != "" {
		return strings.Contains(resp.String(), m.contains)
	}
	return true
}

// URL returns the monitored URL.
func (m *URLMonitor) URL() string { return m.url }

func (m *URLMonitor) String() string {
	if m.contains == "" {
		return m.url
	}
	return m.url + " (containing " + m.contains + ")"
}
