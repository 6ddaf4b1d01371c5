package monitor

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

func TestURLMonitor_IsAvailable(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte("welcome to the shop"))
	}))
	defer srv.Close()

	ctx := context.Background()
	assert.True(t, NewURLMonitor(srv.URL).IsAvailable(ctx))
	assert.True(t, NewURLMonitor(srv.URL, WithContains("shop")).IsAvailable(ctx))
	assert.False(t, NewURLMonitor(srv.URL, WithContains("admin")).IsAvailable(ctx))

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, NewURLMonitor(srv.URL).IsAvailable(ctx))
}

func TestURLMonitor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := NewURLMonitor(url)
	assert.False(t, m.IsAvailable(context.Background()))
	assert.Equal(t, url, m.URL())
}

type flipChecker struct {
	calls   atomic.Int32
	flipsAt int32
}

func (f *flipChecker) IsAvailable(context.Context) bool {
	return f.calls.Add(1) >= f.flipsAt
}

func (f *flipChecker) String() string { return "flip" }

func TestWatchdog_WaitForAvailable(t *testing.T) {
	checker := &flipChecker{flipsAt: 3}
	w := NewWatchdog(checker, time.Second, nil).WithInterval(5 * time.Millisecond)

	require.NoError(t, w.WaitForAvailable(context.Background()))
	assert.Equal(t, int32(3), checker.calls.Load())
}

func TestWatchdog_Timeout(t *testing.T) {
	checker := &flipChecker{flipsAt: 1 << 30}
	w := NewWatchdog(checker, 50*time.Millisecond, nil).WithInterval(5 * time.Millisecond)

	err := w.WaitForAvailable(context.Background())
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrTimeout))
	assert.Contains(t, err.Error(), "flip did not become available")
}

func TestWatchdog_WaitForUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	m := NewURLMonitor(srv.URL)
	w := NewWatchdog(m, 2*time.Second, nil).WithInterval(5 * time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		srv.Close()
	}()
	require.NoError(t, w.WaitForUnavailable(context.Background()))
}

func TestWatchdog_WaitForUnavailable_SlowServerTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	w := NewWatchdog(NewURLMonitor(srv.URL), 100*time.Millisecond, nil).WithInterval(5 * time.Millisecond)
	err := w.WaitForUnavailable(context.Background())
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrTimeout))
	assert.Contains(t, err.Error(), "was still available")
}

func TestWatchdog_CancelledIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWatchdog(&flipChecker{flipsAt: 1 << 30}, time.Second, nil).WithInterval(5 * time.Millisecond)
	err := w.WaitForUnavailable(ctx)
	require.Error(t, err)
	assert.False(t, errUtils.Is(err, errUtils.ErrTimeout))
	assert.True(t, errUtils.Is(err, context.Canceled))
}

func TestNewWatchdog_DefaultTimeout(t *testing.T) {
	w := NewWatchdog(&flipChecker{}, 0, nil)
	assert.Equal(t, DefaultTimeout, w.timeout)
	assert.Equal(t, DefaultInterval, w.interval)
}

func TestPortMonitor(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.Listener.Addr().(*net.TCPAddr)

	m := NewPortMonitor("127.0.0.1", u.Port, 0)
	assert.True(t, m.IsAvailable(context.Background()))
	assert.True(t, InUse(context.Background(), "127.0.0.1", u.Port))
	assert.Equal(t, "port 127.0.0.1:"+strconv.Itoa(u.Port), m.String())

	srv.Close()
	assert.False(t, m.IsAvailable(context.Background()))
}
