package launcher

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	cargo "github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Pull policies for DockerSpec.PullPolicy.
const (
	PullAlways       = "always"
	PullIfNotPresent = "if-not-present"
	PullNever        = "never"
)

// DefaultConfigMount is where the configuration home is mounted inside the
// container.
const DefaultConfigMount = "/cargo/conf"

// DockerAPI is the part of the Docker engine API the launcher needs.
type DockerAPI interface {
	ImageExists(ctx context.Context, ref string) bool
	PullImage(ctx context.Context, ref string) error
	Create(ctx context.Context, cfg *container.Config, host *container.HostConfig, name string) (string, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string, timeoutSeconds int) error
	Remove(ctx context.Context, id string) error
}

// DockerSpec describes the image a Docker container runs.
type DockerSpec struct {
	Image       string
	PullPolicy  string
	Command     []string
	Env         []string
	ConfigMount string
	StopTimeout int
}

// Docker runs the server inside a Docker container. Every valid port
// property is published on the same host port, and the configuration home
// is bind mounted.
type Docker struct {
	api  DockerAPI
	spec DockerSpec

	mu sync.Mutex
	id string
}

// NewDocker creates a Docker launcher.
func NewDocker(api DockerAPI, spec DockerSpec) *Docker {
	if spec.PullPolicy == "" {
		spec.PullPolicy = PullIfNotPresent
	}
	if spec.ConfigMount == "" {
		spec.ConfigMount = DefaultConfigMount
	}
	if spec.StopTimeout == 0 {
		spec.StopTimeout = 10
	}
	return &Docker{api: api, spec: spec}
}

// ContainerID returns the Docker id of the running container.
func (d *Docker) ContainerID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Start pulls the image as needed, then creates and starts the container.
func (d *Docker) Start(ctx context.Context, c *cargo.Local) error {
	if d.spec.Image == "" {
		return errUtils.Usagef("container [%s] has no docker image", c.ID())
	}
	if err := d.pull(ctx); err != nil {
		return err
	}

	cfg, host, err := d.dockerConfig(c)
	if err != nil {
		return err
	}

	name := sanitizeName(models.GenerateID("cargo-" + c.ID()))
	id, err := d.api.Create(ctx, cfg, host, name)
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to create docker container %s", name)
	}

	if err := d.api.Start(ctx, id); err != nil {
		_ = d.api.Remove(ctx, id)
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to start docker container %s", name)
	}

	d.mu.Lock()
	d.id = id
	d.mu.Unlock()

	c.Logger().Info("docker container started", "id", shortID(id), "image", d.spec.Image)
	return nil
}

// Stop stops the container.
func (d *Docker) Stop(ctx context.Context, c *cargo.Local) error {
	id := d.ContainerID()
	if id == "" {
		return nil
	}
	if err := d.api.Stop(ctx, id, d.spec.StopTimeout); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to stop docker container %s", shortID(id))
	}
	c.Logger().Info("docker container stopped", "id", shortID(id))
	return nil
}

// ForceStop removes the container.
func (d *Docker) ForceStop(ctx context.Context, c *cargo.Local) error {
	d.mu.Lock()
	id := d.id
	d.id = ""
	d.mu.Unlock()

	if id == "" {
		return nil
	}
	if err := d.api.Remove(ctx, id); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to remove docker container %s", shortID(id))
	}
	c.Logger().Debug("docker container removed", "id", shortID(id))
	return nil
}

func (d *Docker) pull(ctx context.Context) error {
	switch d.spec.PullPolicy {
	case PullNever:
		return nil
	case PullIfNotPresent:
		if d.api.ImageExists(ctx, d.spec.Image) {
			return nil
		}
		fallthrough
	case PullAlways:
		if err := d.api.PullImage(ctx, d.spec.Image); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to pull image %s", d.spec.Image)
		}
		return nil
	default:
		return errUtils.Usagef("invalid pull policy [%s]", d.spec.PullPolicy)
	}
}

func (d *Docker) dockerConfig(c *cargo.Local) (*container.Config, *container.HostConfig, error) {
	cfg := c.Configuration()

	exposed := make(nat.PortSet)
	bindings := make(nat.PortMap)

	names := make([]string, 0)
	ports := cfg.PortProperties()
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		port, err := strconv.Atoi(ports[name])
		if err != nil || port < 1 || port > 65535 {
			continue
		}
		natPort, err := nat.NewPort("tcp", strconv.Itoa(port))
		if err != nil {
			return nil, nil, errUtils.Wrapf(err, errUtils.ErrInvalidProperty, "invalid port in %s", name)
		}
		exposed[natPort] = struct{}{}
		bindings[natPort] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(port)}}
	}

	config := &container.Config{
		Image:        d.spec.Image,
		Cmd:          d.spec.Command,
		Env:          d.spec.Env,
		ExposedPorts: exposed,
		Labels: map[string]string{
			"cargo.container":     c.ID(),
			"cargo.configuration": string(cfg.Type()),
		},
	}
	host := &container.HostConfig{
		PortBindings: bindings,
	}
	if cfg.Home() != "" {
		host.Binds = []string{fmt.Sprintf("%s:%s", cfg.Home(), d.spec.ConfigMount)}
	}
	return config, host, nil
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Engine adapts a Docker engine client to DockerAPI.
type Engine struct {
	cli *dockerclient.Client
}

// NewEngine connects to the Docker daemon described by the environment.
func NewEngine() (*Engine, error) {
	cli, err := dockerclient.NewClientWithOpts(dockerclient.FromEnv, dockerclient.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to create docker client")
	}
	return &Engine{cli: cli}, nil
}

// Close releases the client.
func (e *Engine) Close() error { return e.cli.Close() }

// ImageExists reports whether ref is present locally.
func (e *Engine) ImageExists(ctx context.Context, ref string) bool {
	_, _, err := e.cli.ImageInspectWithRaw(ctx, ref)
	return err == nil
}

// PullImage pulls ref and waits for the pull to finish.
func (e *Engine) PullImage(ctx context.Context, ref string) error {
	reader, err := e.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

// Create creates a container and returns its id.
func (e *Engine) Create(ctx context.Context, cfg *container.Config, host *container.HostConfig, name string) (string, error) {
	resp, err := e.cli.ContainerCreate(ctx, cfg, host, nil, nil, name)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Start starts a created container.
func (e *Engine) Start(ctx context.Context, id string) error {
	return e.cli.ContainerStart(ctx, id, container.StartOptions{})
}

// Stop stops a container, killing it after timeoutSeconds.
func (e *Engine) Stop(ctx context.Context, id string, timeoutSeconds int) error {
	return e.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeoutSeconds})
}

// Remove force removes a container.
func (e *Engine) Remove(ctx context.Context, id string) error {
	return e.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
}

var _ DockerAPI = (*Engine)(nil)
