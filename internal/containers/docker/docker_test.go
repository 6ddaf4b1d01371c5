package docker

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cargo "github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

type fakeEngine struct {
	created *container.Config
	host    *container.HostConfig
	stopped int
	removed int
}

func (f *fakeEngine) ImageExists(context.Context, string) bool { return true }
func (f *fakeEngine) PullImage(context.Context, string) error  { return nil }
func (f *fakeEngine) Start(context.Context, string) error      { return nil }

func (f *fakeEngine) Create(_ context.Context, cfg *container.Config, host *container.HostConfig, _ string) (string, error) {
	f.created = cfg
	f.host = host
	return "c0ffee", nil
}

func (f *fakeEngine) Stop(context.Context, string, int) error {
	f.stopped++
	return nil
}

func (f *fakeEngine) Remove(context.Context, string) error {
	f.removed++
	return nil
}

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
}

func TestDockerContainer_Lifecycle(t *testing.T) {
	engine := &fakeEngine{}
	r := factory.New()
	r.Discover(factory.Providers{Provider(engine)})

	c, err := r.CreateContainer(ID, models.Installed, models.Standalone, filepath.Join(t.TempDir(), "conf"))
	require.NoError(t, err)
	local := c.(*cargo.Local)
	require.NoError(t, local.Apply(cargo.WithTimeout(0), cargo.WithPostStopDelay(0)))

	cfg := local.Configuration()
	port := freePort(t)
	cfg.SetProperty(property.ServletPort, port)
	cfg.SetProperty(Image, "tomcat:9-jre17")
	cfg.SetProperty(Env, "CATALINA_OPTS=-Xmx512m | TZ=UTC")

	ctx := context.Background()
	require.NoError(t, local.Start(ctx))
	require.NotNil(t, engine.created)
	assert.Equal(t, "tomcat:9-jre17", engine.created.Image)
	assert.Equal(t, []string{"CATALINA_OPTS=-Xmx512m", "TZ=UTC"}, engine.created.Env)
	assert.Len(t, engine.created.ExposedPorts, 1)
	assert.Equal(t, []string{cfg.Home() + ":/cargo/conf"}, engine.host.Binds)

	require.NoError(t, local.Stop(ctx))
	assert.Equal(t, 1, engine.stopped)
	assert.Equal(t, 1, engine.removed)
	assert.Equal(t, models.StateStopped, local.State())
}

func TestCapability(t *testing.T) {
	cc := Capability()
	assert.True(t, cc.SupportsProperty(Image))
	assert.True(t, cc.SupportsProperty(property.DataSource))
	assert.True(t, cc.SupportsProperty(property.ServletPort))
}
