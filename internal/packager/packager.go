// Package packager bundles a configured container into a distributable form.
package packager

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	cp "github.com/otiai10/copy"
	"github.com/samber/lo"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Packager packages a container.
type Packager interface {
	Type() models.PackagerType
	Package(ctx context.Context, c container.Container) error
}

// homed is implemented by containers with an installation directory.
type homed interface {
	Home() string
}

// Directory copies the container installation and then the configuration
// home into one target directory, so the result runs without cargo.
type Directory struct {
	target   string
	excludes []string
	logger   *log.Logger
}

// NewDirectory creates a directory packager. Excludes are base names skipped
// anywhere in the copied trees.
func NewDirectory(target string, logger *log.Logger, excludes ...string) *Directory {
	if logger == nil {
		logger = log.Default()
	}
	return &Directory{
		target:   target,
		excludes: append([]string{configuration.MarkerFile}, excludes...),
		logger:   logger,
	}
}

// Type returns directory.
func (p *Directory) Type() models.PackagerType { return models.DirectoryPackager }

// Target returns the output directory.
func (p *Directory) Target() string { return p.target }

// Package writes the container into the target directory. The
// configuration must be local and already configured.
func (p *Directory) Package(ctx context.Context, c container.Container) error {
	cfg := c.Configuration()
	if !cfg.Type().IsLocal() {
		return errUtils.Usagef("cannot package the %s container: a %s configuration has no files", c.Name(), cfg.Type())
	}
	if !cfg.IsConfigured() {
		return errUtils.Usagef("cannot package the %s container before it is configured", c.Name())
	}
	if err := os.MkdirAll(p.target, 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create package directory %s", p.target)
	}

	opts := cp.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			if err := ctx.Err(); err != nil {
				return true, err
			}
			return lo.Contains(p.excludes, filepath.Base(src)), nil
		},
	}

	if h, ok := c.(homed); ok && h.Home() != "" {
		if err := cp.Copy(h.Home(), p.target, opts); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to copy container home %s", h.Home())
		}
	}
	if err := cp.Copy(cfg.Home(), p.target, opts); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to copy configuration home %s", cfg.Home())
	}

	p.logger.Info("packaged", "container", c.ID(), "target", p.target)
	return nil
}
