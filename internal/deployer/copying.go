package deployer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	cp "github.com/otiai10/copy"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Copying deploys by copying archives or expanded directories into a
// directory of the configuration home that the server scans.
type Copying struct {
	container container.Container
	deployDir string
	kind      models.DeployerType
	logger    *log.Logger
}

// NewCopying creates a copying deployer writing into deployDir, relative to
// the configuration home unless absolute.
func NewCopying(c container.Container, deployDir string, logger *log.Logger) *Copying {
	if logger == nil {
		logger = log.Default()
	}
	return &Copying{
		container: c,
		deployDir: deployDir,
		kind:      models.DeployerTypeFor(c.Type()),
		logger:    logger.With("deployer", "copying", "container", c.ID()),
	}
}

// Type returns installed or embedded, following the container.
func (d *Copying) Type() models.DeployerType { return d.kind }

// Dir returns the absolute deploy directory.
func (d *Copying) Dir() string {
	if filepath.IsAbs(d.deployDir) {
		return d.deployDir
	}
	return filepath.Join(d.container.Configuration().Home(), d.deployDir)
}

// Target returns the path deployable ends up at. The path always lies
// inside the deploy directory.
func (d *Copying) Target(dep *models.Deployable) (string, error) {
	name := filepath.Base(dep.File)
	if dep.Type == models.WAR {
		name = dep.Name()
		if !dep.IsExpanded() {
			name += ".war"
		}
	}
	dir := d.Dir()
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errUtils.Build(errUtils.Usagef("deployable [%s] would be installed outside %s", dep.File, dir)).
			WithHint("use a web context without \"..\" segments").
			Err()
	}
	return target, nil
}

// Deploy copies the deployable into the deploy directory.
func (d *Copying) Deploy(_ context.Context, dep *models.Deployable) error {
	if err := checkSupported(d.container, dep); err != nil {
		return err
	}
	if _, err := os.Stat(dep.File); err != nil {
		return errUtils.Usagef("deployable file [%s] does not exist", dep.File)
	}
	if err := os.MkdirAll(d.Dir(), 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create deploy directory %s", d.Dir())
	}

	target, err := d.Target(dep)
	if err != nil {
		return err
	}
	if err := cp.Copy(dep.File, target); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to deploy %s to %s", dep.File, target)
	}
	d.logger.Info("deployed", "deployable", dep.Name(), "target", target)
	return nil
}

// Undeploy removes the deployable from the deploy directory.
func (d *Copying) Undeploy(_ context.Context, dep *models.Deployable) error {
	target, err := d.Target(dep)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to undeploy %s", target)
	}
	d.logger.Info("undeployed", "deployable", dep.Name())
	return nil
}

// Redeploy undeploys then deploys.
func (d *Copying) Redeploy(ctx context.Context, dep *models.Deployable) error {
	if err := d.Undeploy(ctx, dep); err != nil {
		return err
	}
	return d.Deploy(ctx, dep)
}

// InstallDeployable lets the deployer install static deployables while the
// configuration is created.
func (d *Copying) InstallDeployable(ctx context.Context, dep *models.Deployable) error {
	return d.Deploy(ctx, dep)
}
