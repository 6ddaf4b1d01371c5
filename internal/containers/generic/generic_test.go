package generic

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func newRegistry(t *testing.T) *factory.Registry {
	t.Helper()
	r := factory.New(factory.WithScratchDir(t.TempDir()))
	r.Discover(factory.Providers{Provider()})
	return r
}

func newLocal(t *testing.T, ct models.ContainerType) *container.Local {
	t.Helper()
	c, err := newRegistry(t).CreateContainer(ID, ct, models.Standalone, filepath.Join(t.TempDir(), "conf"))
	require.NoError(t, err)
	local := c.(*container.Local)

	cfg := local.Configuration()
	cfg.SetProperty(property.Hostname, "127.0.0.1")
	cfg.SetProperty(property.ServletPort, freePort(t))
	require.NoError(t, local.Apply(container.WithTimeout(5*time.Second), container.WithPostStopDelay(0)))
	return local
}

func TestRegister(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, []string{ID}, r.Containers.ContainerIDs())
	assert.True(t, r.Containers.IsRegistered(ID, models.Embedded))
	assert.True(t, r.Configurations.IsRegistered(ID, models.Installed, models.Existing))
	assert.True(t, r.Configurations.IsRegistered(ID, models.Remote, models.Runtime))
	assert.True(t, r.Deployers.IsRegistered(ID, models.RemoteDeployer))
	assert.True(t, r.Packagers.IsRegistered(ID, models.DirectoryPackager))
}

func TestEmbedded_ServesDeployables(t *testing.T) {
	c := newLocal(t, models.Embedded)
	cfg := c.Configuration()

	app := filepath.Join(t.TempDir(), "shop")
	require.NoError(t, os.MkdirAll(app, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(app, "index.html"), []byte("<h1>shop</h1>"), 0o644))
	cfg.AddDeployable(models.NewDeployable(models.WAR, app))

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() { _ = c.Stop(ctx) })
	assert.Equal(t, models.StateStarted, c.State())

	resp, err := http.Get("http://127.0.0.1:" + cfg.PropertyValue(property.ServletPort) + "/shop/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<h1>shop</h1>", string(body))

	props, err := os.ReadFile(filepath.Join(cfg.Home(), PropertiesFile))
	require.NoError(t, err)
	assert.Contains(t, string(props), "cargo.servlet.port="+cfg.PropertyValue(property.ServletPort)+"\n")

	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, models.StateStopped, c.State())
}

func TestWriter_DataSourcesAndResources(t *testing.T) {
	c := newLocal(t, models.Embedded)
	cfg := c.Configuration()
	cfg.SetProperty(property.DataSource, "cargo.datasource.jndi=jdbc/shop|cargo.datasource.driver=org.h2.Driver|cargo.datasource.url=jdbc:h2:mem:shop|cargo.datasource.password=secret")
	cfg.AddResource(&models.Resource{Name: "mail/session", Type: "javax.mail.Session"})

	require.NoError(t, cfg.Configure(context.Background(), c))

	raw, err := os.ReadFile(filepath.Join(cfg.Home(), DataSourcesFile))
	require.NoError(t, err)
	var ds struct {
		DataSources []models.DataSource `yaml:"datasources"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &ds))
	require.Len(t, ds.DataSources, 1)
	assert.Equal(t, "jdbc/shop", ds.DataSources[0].JNDILocation)

	raw, err = os.ReadFile(filepath.Join(cfg.Home(), ResourcesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "mail/session")

	props, err := os.ReadFile(filepath.Join(cfg.Home(), PropertiesFile))
	require.NoError(t, err)
	assert.NotContains(t, string(props), "secret")
	assert.DirExists(t, filepath.Join(cfg.Home(), DeployDir))
}

func TestInstalled_StartCommand(t *testing.T) {
	c := newLocal(t, models.Installed)
	cfg := c.Configuration()
	cfg.SetProperty(StartCommand, "sleep 30")
	require.NoError(t, c.Apply(container.WithTimeout(0)))

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, models.StateStarted, c.State())
	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, models.StateStopped, c.State())
}

func TestInstalled_MissingStartCommand(t *testing.T) {
	c := newLocal(t, models.Installed)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
	assert.Contains(t, err.Error(), StartCommand)
	assert.Equal(t, models.StateUnknown, c.State())
}

func TestExisting_RejectsDataSources(t *testing.T) {
	r := newRegistry(t)
	c, err := r.CreateContainer(ID, models.Installed, models.Existing, t.TempDir())
	require.NoError(t, err)

	cfg := c.Configuration()
	cfg.AddDataSource(&models.DataSource{JNDILocation: "jdbc/a"})
	cfg.AddDataSource(&models.DataSource{JNDILocation: "jdbc/b"})

	err = cfg.Configure(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrCapability))
	assert.Contains(t, err.Error(), "JndiName: jdbc/a")
	assert.Contains(t, err.Error(), "JndiName: jdbc/b")
}

func TestPackager(t *testing.T) {
	r := newRegistry(t)
	c, err := r.CreateContainer(ID, models.Embedded, models.Standalone, filepath.Join(t.TempDir(), "conf"))
	require.NoError(t, err)
	require.NoError(t, c.Configuration().Configure(context.Background(), c))

	out := filepath.Join(t.TempDir(), "pkg")
	p, err := r.Packagers.Create(ID, models.DirectoryPackager, out)
	require.NoError(t, err)
	require.NoError(t, p.Package(context.Background(), c))

	assert.FileExists(t, filepath.Join(out, PropertiesFile))
	assert.NoDirExists(t, filepath.Join(out, "logs"))
}
