package deployer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// DefaultManagerPath is appended to the server address when cargo.remote.uri
// is not set.
const DefaultManagerPath = "/manager/text"

// Remote deploys through a manager endpoint of a running server:
// PUT {uri}/deploy?path=/ctx&update=true with the archive as body,
// GET {uri}/undeploy?path=/ctx to remove it. Replies starting with "OK"
// are successes.
type Remote struct {
	container container.Container
	client    *resty.Client
	logger    *log.Logger
}

// NewRemote creates a remote deployer for c, configured from the runtime
// configuration properties.
func NewRemote(c container.Container, logger *log.Logger) *Remote {
	if logger == nil {
		logger = log.Default()
	}
	cfg := c.Configuration()

	client := resty.New().
		SetBaseURL(managerURI(c)).
		SetTimeout(5 * time.Minute)
	if user := cfg.PropertyValue(property.RemoteUsername); user != "" {
		client.SetBasicAuth(user, cfg.PropertyValue(property.RemotePassword))
	}

	return &Remote{
		container: c,
		client:    client,
		logger:    logger.With("deployer", "remote", "container", c.ID()),
	}
}

func managerURI(c container.Container) string {
	cfg := c.Configuration()
	if uri := cfg.PropertyValue(property.RemoteURI); uri != "" {
		return strings.TrimSuffix(uri, "/")
	}
	return fmt.Sprintf("%s://%s:%s%s",
		cfg.PropertyValue(property.Protocol),
		cfg.PropertyValue(property.Hostname),
		cfg.PropertyValue(property.ServletPort),
		DefaultManagerPath)
}

// Type returns remote.
func (d *Remote) Type() models.DeployerType { return models.RemoteDeployer }

// Deploy uploads the deployable.
func (d *Remote) Deploy(ctx context.Context, dep *models.Deployable) error {
	if err := checkSupported(d.container, dep); err != nil {
		return err
	}
	f, err := os.Open(dep.File)
	if err != nil {
		return errUtils.Usagef("deployable file [%s] cannot be read: %v", dep.File, err)
	}
	defer f.Close()

	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"path": contextPath(dep), "update": "true"}).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(f).
		Put("/deploy")
	if err := checkReply(resp, err, "deploy", dep); err != nil {
		return err
	}
	d.logger.Info("deployed", "deployable", dep.Name(), "context", contextPath(dep))
	return nil
}

// Undeploy removes the deployable.
func (d *Remote) Undeploy(ctx context.Context, dep *models.Deployable) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetQueryParam("path", contextPath(dep)).
		Get("/undeploy")
	if err := checkReply(resp, err, "undeploy", dep); err != nil {
		return err
	}
	d.logger.Info("undeployed", "deployable", dep.Name())
	return nil
}

// Redeploy uploads the deployable with update=true, replacing any previous
// version.
func (d *Remote) Redeploy(ctx context.Context, dep *models.Deployable) error {
	return d.Deploy(ctx, dep)
}

func checkReply(resp *resty.Response, err error, action string, dep *models.Deployable) error {
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to %s %s", action, dep.Name())
	}
	body := strings.TrimSpace(resp.String())
	if !resp.IsSuccess() || !strings.HasPrefix(body, "OK") {
		return errUtils.Build(errUtils.Newf(errUtils.ErrLifecycle, "failed to %s %s: %s", action, dep.Name(), resp.Status())).
			WithDetailf("%s", body).
			Err()
	}
	return nil
}

// contextPath maps the deployable name to the manager path parameter.
func contextPath(dep *models.Deployable) string {
	name := dep.WebContext()
	if name == "" {
		name = dep.Name()
	}
	if name == "ROOT" {
		return "/"
	}
	return "/" + name
}
