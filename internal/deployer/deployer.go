// Package deployer installs deployables into containers, either by copying
// them into the configuration or by talking to a remote manager endpoint.
package deployer

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/monitor"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Deployer deploys and undeploys deployables on one container.
type Deployer interface {
	Type() models.DeployerType
	Deploy(ctx context.Context, d *models.Deployable) error
	Undeploy(ctx context.Context, d *models.Deployable) error
	Redeploy(ctx context.Context, d *models.Deployable) error
}

// checkSupported fails when the container does not accept the deployable type.
func checkSupported(c container.Container, d *models.Deployable) error {
	if !c.Capability().SupportsDeployableType(d.Type) {
		return errUtils.Capabilityf("the %s container does not support %s deployables (%s)", c.Name(), d.Type, d.File)
	}
	return nil
}

// DeployAndWait deploys d and blocks until checker reports it available.
func DeployAndWait(ctx context.Context, dep Deployer, d *models.Deployable, checker monitor.Checker, timeout time.Duration, logger *log.Logger) error {
	if err := dep.Deploy(ctx, d); err != nil {
		return err
	}
	if err := monitor.NewWatchdog(checker, timeout, logger).WaitForAvailable(ctx); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrTimeout, "deployable %s did not become available", d.Name())
	}
	return nil
}

// UndeployAndWait undeploys d and blocks until checker stops reporting it.
func UndeployAndWait(ctx context.Context, dep Deployer, d *models.Deployable, checker monitor.Checker, timeout time.Duration, logger *log.Logger) error {
	if err := dep.Undeploy(ctx, d); err != nil {
		return err
	}
	if err := monitor.NewWatchdog(checker, timeout, logger).WaitForUnavailable(ctx); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrTimeout, "deployable %s is still available", d.Name())
	}
	return nil
}
