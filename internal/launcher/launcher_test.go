package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	cargo "github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

func newLocal(t *testing.T, l cargo.Launcher, opts ...cargo.LocalOption) *cargo.Local {
	t.Helper()
	cfg, err := configuration.New(models.Standalone, t.TempDir())
	require.NoError(t, err)
	c, err := cargo.NewLocal("generic", "Generic", models.Installed, cfg, l, opts...)
	require.NoError(t, err)
	return c
}

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	assert.Eventually(t, func() bool {
		b, err := os.ReadFile(path)
		return err == nil && string(b) == want
	}, 5*time.Second, 10*time.Millisecond)
}

func TestProcess_StartStop(t *testing.T) {
	out := filepath.Join(t.TempDir(), "logs", "server.log")
	p := NewProcess([]string{"sh", "-c", "echo port @cargo.servlet.port@; exec sleep 30"})
	c := newLocal(t, p, cargo.WithOutput(out, false))
	ctx := context.Background()

	require.NoError(t, p.Start(ctx, c))
	assert.NotZero(t, p.Pid())
	waitForFile(t, out, "port 8080\n")

	err := p.Start(ctx, c)
	assert.True(t, errUtils.Is(err, errUtils.ErrLifecycle))

	require.NoError(t, p.Stop(ctx, c))
	assert.Zero(t, p.Pid())
	require.NoError(t, p.ForceStop(ctx, c))
}

func TestProcess_StopCommand(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "stopped")
	p := NewProcess(
		[]string{"sh", "-c", "exit 0"},
		WithStopCommand("sh", "-c", "printf %s @cargo.configuration.home@ > "+marker),
	)
	c := newLocal(t, p)
	ctx := context.Background()

	require.NoError(t, p.Start(ctx, c))
	require.NoError(t, p.Stop(ctx, c))

	b, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, c.Configuration().Home(), string(b))
}

func TestProcess_ForceStop(t *testing.T) {
	p := NewProcess([]string{"sh", "-c", "trap '' INT; sleep 2"}, WithStopGrace(50*time.Millisecond))
	c := newLocal(t, p)
	ctx := context.Background()

	require.NoError(t, p.Start(ctx, c))
	require.NoError(t, p.Stop(ctx, c))
	assert.NotZero(t, p.Pid())

	require.NoError(t, p.ForceStop(ctx, c))
	assert.Zero(t, p.Pid())
}

func TestProcess_AppendOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(out, []byte("previous\n"), 0o644))

	p := NewProcess([]string{"sh", "-c", "echo next"})
	c := newLocal(t, p, cargo.WithOutput(out, true))
	require.NoError(t, p.Start(context.Background(), c))
	waitForFile(t, out, "previous\nnext\n")
}

func TestProcess_NoCommand(t *testing.T) {
	p := NewProcess(nil)
	c := newLocal(t, p)
	err := p.Start(context.Background(), c)
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

type fakeDocker struct {
	images   map[string]bool
	pulled   []string
	created  *container.Config
	host     *container.HostConfig
	started  []string
	stopped  []string
	removed  []string
	startErr error
}

func (f *fakeDocker) ImageExists(_ context.Context, ref string) bool { return f.images[ref] }

func (f *fakeDocker) PullImage(_ context.Context, ref string) error {
	f.pulled = append(f.pulled, ref)
	return nil
}

func (f *fakeDocker) Create(_ context.Context, cfg *container.Config, host *container.HostConfig, _ string) (string, error) {
	f.created = cfg
	f.host = host
	return "0123456789abcdef", nil
}

func (f *fakeDocker) Start(_ context.Context, id string) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, id)
	return nil
}

func (f *fakeDocker) Stop(_ context.Context, id string, _ int) error {
	f.stopped = append(f.stopped, id)
	return nil
}

func (f *fakeDocker) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func TestDocker_Lifecycle(t *testing.T) {
	api := &fakeDocker{}
	d := NewDocker(api, DockerSpec{Image: "tomcat:9"})
	c := newLocal(t, d)
	c.Configuration().SetProperty(property.RMIPort, "1099")
	c.Configuration().SetProperty("cargo.docker.port", "bogus")
	ctx := context.Background()

	require.NoError(t, d.Start(ctx, c))
	assert.Equal(t, []string{"tomcat:9"}, api.pulled)
	assert.Equal(t, "0123456789abcdef", d.ContainerID())

	require.NotNil(t, api.created)
	assert.Equal(t, "tomcat:9", api.created.Image)
	assert.Contains(t, api.created.ExposedPorts, nat.Port("8080/tcp"))
	assert.Contains(t, api.created.ExposedPorts, nat.Port("1099/tcp"))
	assert.Len(t, api.created.ExposedPorts, 2)
	assert.Equal(t, "8080", api.host.PortBindings[nat.Port("8080/tcp")][0].HostPort)
	assert.Equal(t, []string{c.Configuration().Home() + ":" + DefaultConfigMount}, api.host.Binds)

	require.NoError(t, d.Stop(ctx, c))
	require.NoError(t, d.ForceStop(ctx, c))
	assert.Equal(t, []string{"0123456789abcdef"}, api.stopped)
	assert.Equal(t, []string{"0123456789abcdef"}, api.removed)
	assert.Empty(t, d.ContainerID())
}

func TestDocker_PullPolicy(t *testing.T) {
	ctx := context.Background()

	api := &fakeDocker{images: map[string]bool{"tomcat:9": true}}
	d := NewDocker(api, DockerSpec{Image: "tomcat:9"})
	require.NoError(t, d.Start(ctx, newLocal(t, d)))
	assert.Empty(t, api.pulled)

	api = &fakeDocker{images: map[string]bool{"tomcat:9": true}}
	d = NewDocker(api, DockerSpec{Image: "tomcat:9", PullPolicy: PullAlways})
	require.NoError(t, d.Start(ctx, newLocal(t, d)))
	assert.Equal(t, []string{"tomcat:9"}, api.pulled)

	api = &fakeDocker{}
	d = NewDocker(api, DockerSpec{Image: "tomcat:9", PullPolicy: "sometimes"})
	err := d.Start(ctx, newLocal(t, d))
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

func TestDocker_StartFailureRemovesContainer(t *testing.T) {
	api := &fakeDocker{startErr: errors.New("port is already allocated")}
	d := NewDocker(api, DockerSpec{Image: "tomcat:9", PullPolicy: PullNever})

	err := d.Start(context.Background(), newLocal(t, d))
	require.Error(t, err)
	assert.True(t, errUtils.Is(err, errUtils.ErrLifecycle))
	assert.Equal(t, []string{"0123456789abcdef"}, api.removed)
	assert.Empty(t, d.ContainerID())
}

func TestDocker_RequiresImage(t *testing.T) {
	d := NewDocker(&fakeDocker{}, DockerSpec{})
	err := d.Start(context.Background(), newLocal(t, d))
	assert.True(t, errUtils.Is(err, errUtils.ErrUsage))
}

func TestFuncs(t *testing.T) {
	var calls []string
	f := Funcs{
		OnStart: func(context.Context, *cargo.Local) error { calls = append(calls, "start"); return nil },
	}
	c := newLocal(t, f)
	require.NoError(t, f.Start(context.Background(), c))
	require.NoError(t, f.Stop(context.Background(), c))
	assert.Equal(t, []string{"start"}, calls)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "cargo-tomcat9x-a_b.c", sanitizeName("cargo-tomcat9x/a_b.c"))
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
}
