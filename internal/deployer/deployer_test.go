package deployer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/monitor"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

type noopLauncher struct{}

func (noopLauncher) Start(context.Context, *container.Local) error { return nil }
func (noopLauncher) Stop(context.Context, *container.Local) error  { return nil }

func newLocal(t *testing.T) *container.Local {
	t.Helper()
	cfg, err := configuration.New(models.Standalone, t.TempDir())
	require.NoError(t, err)
	c, err := container.NewLocal("generic", "Generic", models.Installed, cfg, noopLauncher{})
	require.NoError(t, err)
	return c
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCopying_DeployWar(t *testing.T) {
	c := newLocal(t)
	d := NewCopying(c, "webapps", nil)
	assert.Equal(t, models.InstalledDeployer, d.Type())

	war := models.NewDeployable(models.WAR, writeFile(t, filepath.Join(t.TempDir(), "shop-1.0.war"), "PK"))
	war.Context = "/shop"

	require.NoError(t, d.Deploy(context.Background(), war))
	target := filepath.Join(c.Configuration().Home(), "webapps", "shop.war")
	got, err := d.Target(war)
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.FileExists(t, target)

	require.NoError(t, d.Undeploy(context.Background(), war))
	assert.NoFileExists(t, target)
}

func TestCopying_TargetStaysInDeployDir(t *testing.T) {
	c := newLocal(t)
	d := NewCopying(c, "webapps", nil)

	victim := filepath.Join(c.Configuration().Home(), "keep")
	data := writeFile(t, filepath.Join(victim, "data.txt"), "precious")

	war := models.NewDeployable(models.WAR, writeFile(t, filepath.Join(t.TempDir(), "shop.war"), "PK"))
	war.Context = "../keep"
	got, err := d.Target(war)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Dir(), "shop.war"), got)

	require.NoError(t, d.Undeploy(context.Background(), war))
	assert.FileExists(t, data)

	file := models.NewDeployable(models.File, "..")
	_, err = d.Target(file)
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
	assert.Error(t, d.Undeploy(context.Background(), file))
	assert.FileExists(t, data)
}

func TestCopying_DeployExpandedWar(t *testing.T) {
	c := newLocal(t)
	d := NewCopying(c, "webapps", nil)

	dir := filepath.Join(t.TempDir(), "admin")
	writeFile(t, filepath.Join(dir, "WEB-INF", "web.xml"), "<web-app/>")
	war := models.NewDeployable(models.WAR, dir)

	require.NoError(t, d.InstallDeployable(context.Background(), war))
	assert.FileExists(t, filepath.Join(c.Configuration().Home(), "webapps", "admin", "WEB-INF", "web.xml"))

	require.NoError(t, d.Redeploy(context.Background(), war))
	assert.FileExists(t, filepath.Join(c.Configuration().Home(), "webapps", "admin", "WEB-INF", "web.xml"))
}

func TestCopying_UnsupportedType(t *testing.T) {
	d := NewCopying(newLocal(t), "webapps", nil)
	ear := models.NewDeployable(models.EAR, writeFile(t, filepath.Join(t.TempDir(), "app.ear"), "PK"))

	err := d.Deploy(context.Background(), ear)
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrCapability))
}

func TestCopying_MissingFile(t *testing.T) {
	d := NewCopying(newLocal(t), "/absolute/deploy", nil)
	assert.Equal(t, "/absolute/deploy", d.Dir())

	err := d.Deploy(context.Background(), models.NewDeployable(models.WAR, "/does/not/exist.war"))
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

type manager struct {
	mu       sync.Mutex
	deployed map[string]string
	user     string
}

func (m *manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _, _ := r.BasicAuth()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user

	path := r.URL.Query().Get("path")
	switch {
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/deploy"):
		body, _ := io.ReadAll(r.Body)
		m.deployed[path] = string(body)
		_, _ = io.WriteString(w, "OK - Deployed application at context path ["+path+"]\n")
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/undeploy"):
		if _, ok := m.deployed[path]; !ok {
			_, _ = io.WriteString(w, "FAIL - No context exists named ["+path+"]\n")
			return
		}
		delete(m.deployed, path)
		_, _ = io.WriteString(w, "OK - Undeployed application at context path ["+path+"]\n")
	case m.deployed[r.URL.Path] != "":
		_, _ = io.WriteString(w, "hello")
	default:
		http.NotFound(w, r)
	}
}

func newRemote(t *testing.T, srvURL string) *container.Remote {
	t.Helper()
	cfg, err := configuration.New(models.Runtime, "")
	require.NoError(t, err)
	u, err := url.Parse(srvURL)
	require.NoError(t, err)
	cfg.SetProperty(property.Hostname, u.Hostname())
	cfg.SetProperty(property.ServletPort, u.Port())
	cfg.SetProperty(property.RemoteUsername, "admin")
	cfg.SetProperty(property.RemotePassword, "secret")
	r, err := container.NewRemote("tomcat9x", "Tomcat", cfg, nil)
	require.NoError(t, err)
	return r
}

func TestRemote_DeployUndeploy(t *testing.T) {
	m := &manager{deployed: map[string]string{}}
	srv := httptest.NewServer(m)
	defer srv.Close()

	d := NewRemote(newRemote(t, srv.URL), nil)
	assert.Equal(t, models.RemoteDeployer, d.Type())

	war := models.NewDeployable(models.WAR, writeFile(t, filepath.Join(t.TempDir(), "shop.war"), "war-bytes"))
	require.NoError(t, d.Deploy(context.Background(), war))

	m.mu.Lock()
	assert.Equal(t, "war-bytes", m.deployed["/shop"])
	assert.Equal(t, "admin", m.user)
	m.mu.Unlock()

	require.NoError(t, d.Undeploy(context.Background(), war))
	err := d.Undeploy(context.Background(), war)
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrLifecycle))
}

func TestRemote_ExplicitURI(t *testing.T) {
	m := &manager{deployed: map[string]string{}}
	srv := httptest.NewServer(m)
	defer srv.Close()

	r := newRemote(t, "http://unused.invalid:1")
	r.Configuration().SetProperty(property.RemoteURI, srv.URL+"/custom/")
	d := NewRemote(r, nil)

	war := models.NewDeployable(models.WAR, writeFile(t, filepath.Join(t.TempDir(), "ROOT.war"), "x"))
	require.NoError(t, d.Deploy(context.Background(), war))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Contains(t, m.deployed, "/")
}

func TestDeployAndWait(t *testing.T) {
	m := &manager{deployed: map[string]string{}}
	srv := httptest.NewServer(m)
	defer srv.Close()

	d := NewRemote(newRemote(t, srv.URL), nil)
	war := models.NewDeployable(models.WAR, writeFile(t, filepath.Join(t.TempDir(), "shop.war"), "x"))
	checker := monitor.NewURLMonitor(srv.URL+"/shop", monitor.WithContains("hello"))

	require.NoError(t, DeployAndWait(context.Background(), d, war, checker, 2*time.Second, nil))
	require.NoError(t, UndeployAndWait(context.Background(), d, war, checker, 2*time.Second, nil))
}
