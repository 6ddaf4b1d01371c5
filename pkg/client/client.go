// Package client talks to a cargo daemon over its HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/codehaus-cargo/cargo-sub009/internal/daemon"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/version"
)

// Client is a daemon API client.
type Client struct {
	baseURL string
	http    *resty.Client
}

// Option configures a Client.
type Option func(*options)

type options struct {
	token   string
	timeout time.Duration
	hc      *http.Client
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithTimeout bounds every request. Starting a server can take minutes.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient sets the underlying transport client, mostly for tests.
// Token and timeout options apply on top of it whatever the order.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// New returns a client for the daemon listening at baseURL. Requests time
// out after five minutes unless WithTimeout says otherwise.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errUtils.Usagef("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	o := &options{timeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(o)
	}

	hc := resty.New()
	if o.hc != nil {
		hc = resty.NewWithClient(o.hc)
	}
	hc.SetBaseURL(baseURL).
		SetTimeout(o.timeout).
		SetHeader("User-Agent", version.Get().UserAgent())
	if o.token != "" {
		hc.SetAuthToken(o.token)
	}
	return &Client{baseURL: baseURL, http: hc}, nil
}

// BaseURL returns the daemon address.
func (c *Client) BaseURL() string { return c.baseURL }

// Health returns the daemon health document.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).SetError(&daemon.APIError{}).Get("/health")
	return out, check(resp, err, "health check")
}

// Containers lists the containers the daemon can run.
func (c *Client) Containers(ctx context.Context) ([]daemon.ContainerInfo, error) {
	var out []daemon.ContainerInfo
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).SetError(&daemon.APIError{}).Get("/api/v1/containers")
	return out, check(resp, err, "list containers")
}

// Handles lists every handle.
func (c *Client) Handles(ctx context.Context) ([]daemon.Status, error) {
	var out []daemon.Status
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).SetError(&daemon.APIError{}).Get("/api/v1/handles")
	return out, check(resp, err, "list handles")
}

// Handle returns one handle.
func (c *Client) Handle(ctx context.Context, id string) (*daemon.Status, error) {
	var out daemon.Status
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&daemon.APIError{}).
		Get("/api/v1/handles/{id}")
	if err := check(resp, err, "get handle "+id); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start runs descriptor, a YAML document, under handle id.
func (c *Client) Start(ctx context.Context, id, descriptor string, autostart bool) error {
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetBody(daemon.StartRequest{Descriptor: descriptor, Autostart: autostart}).
		SetError(&daemon.APIError{}).
		Post("/api/v1/handles/{id}/start")
	return check(resp, err, "start "+id)
}

// Restart restarts handle id with its recorded descriptor.
func (c *Client) Restart(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetError(&daemon.APIError{}).
		Post("/api/v1/handles/{id}/restart")
	return check(resp, err, "restart "+id)
}

// Stop stops handle id, removing it and its files when remove is set.
func (c *Client) Stop(ctx context.Context, id string, remove bool) error {
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("deleteContainer", strconv.FormatBool(remove)).
		SetError(&daemon.APIError{}).
		Post("/api/v1/handles/{id}/stop")
	return check(resp, err, "stop "+id)
}

// Delete stops and removes handle id.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetError(&daemon.APIError{}).
		Delete("/api/v1/handles/{id}")
	return check(resp, err, "delete "+id)
}

// Log returns the server output of handle id from offset, and the offset
// to continue from.
func (c *Client) Log(ctx context.Context, id string, offset int64) ([]byte, int64, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("offset", strconv.FormatInt(offset, 10)).
		SetError(&daemon.APIError{}).
		Get("/api/v1/handles/{id}/log")
	if err := check(resp, err, "read log of "+id); err != nil {
		return nil, offset, err
	}
	next, perr := strconv.ParseInt(resp.Header().Get(daemon.LogOffsetHeader), 10, 64)
	if perr != nil {
		next = offset + int64(len(resp.Body()))
	}
	return resp.Body(), next, nil
}

func check(resp *resty.Response, err error, action string) error {
	if err != nil {
		return errUtils.Build(errUtils.Wrapf(err, errUtils.ErrConfiguration, "%s failed", action)).
			WithHint("Check that the daemon is running and the address is correct").
			Err()
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*daemon.APIError)
	if !ok || apiErr.Message == "" {
		apiErr = daemon.NewAPIError(resp.StatusCode(), resp.Status(), "")
	}
	b := errUtils.Build(fmt.Errorf("%s: %w", action, apiErr))
	for _, h := range apiErr.Hints {
		b = b.WithHint(h)
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		b = b.Mark(errUtils.ErrNotFound)
	case http.StatusBadRequest:
		b = b.Mark(errUtils.ErrUsage)
	case http.StatusUnprocessableEntity:
		b = b.Mark(errUtils.ErrCapability)
	case http.StatusGatewayTimeout:
		b = b.Mark(errUtils.ErrTimeout)
	}
	return b.Err()
}
