package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	"github.com/codehaus-cargo/cargo-sub009/internal/daemon"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
	"github.com/codehaus-cargo/cargo-sub009/pkg/client"
)

func setup(t *testing.T, defines ...string) {
	t.Helper()
	var err error
	cfg, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Container.ScratchDir = t.TempDir()
	logger = log.New(&bytes.Buffer{})
	properties = defines
	t.Cleanup(func() { properties = nil })
}

func TestNewRegistry(t *testing.T) {
	setup(t)
	r, err := newRegistry()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"docker", "generic"}, r.Containers.ContainerIDs())
	assert.True(t, r.Containers.IsRegistered("generic", models.Embedded))
	assert.True(t, r.Packagers.IsRegistered("generic", models.DirectoryPackager))
}

func TestNewRegistry_Defines(t *testing.T) {
	setup(t, property.ServletPort+"=9191")
	r, err := newRegistry()
	require.NoError(t, err)

	c, err := r.CreateContainer("generic", models.Embedded, models.Standalone, "")
	require.NoError(t, err)
	assert.Equal(t, "9191", c.Configuration().PropertyValue(property.ServletPort))

	properties = []string{"no-equals"}
	_, err = newRegistry()
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

func TestLoadRun(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`container:
  id: generic
  type: embedded
configuration:
  home: `+filepath.Join(dir, "home")+`
  properties:
    cargo.servlet.port: "8123"
`), 0o644))

	run, err := loadRun(path)
	require.NoError(t, err)
	assert.Equal(t, "generic", run.Container.ID())
	assert.Equal(t, "8123", run.Container.Configuration().PropertyValue(property.ServletPort))

	require.NoError(t, run.Configure(context.Background()))
	assert.DirExists(t, filepath.Join(dir, "home"))
}

func TestFollowLog(t *testing.T) {
	content := []byte("line one\nline two\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > len(content) {
			offset = len(content)
		}
		w.Header().Set(daemon.LogOffsetHeader, strconv.Itoa(len(content)))
		_, _ = w.Write(content[offset:])
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, followLog(context.Background(), c, "shop", &out, false, time.Millisecond))
	assert.Equal(t, string(content), out.String())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	out.Reset()
	require.NoError(t, followLog(ctx, c, "shop", &out, true, 10*time.Millisecond))
	assert.Equal(t, string(content), out.String())
}
