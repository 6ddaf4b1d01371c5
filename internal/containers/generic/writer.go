package generic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Files written into a standalone configuration home.
const (
	PropertiesFile  = "conf/cargo.properties"
	DataSourcesFile = "conf/datasources.yaml"
	ResourcesFile   = "conf/resources.yaml"
)

// Writer lays out a standalone generic configuration: the effective
// properties, the datasource and resource definitions, and empty deploy
// and log directories.
type Writer struct{}

// WriteFiles implements configuration.Writer.
func (Writer) WriteFiles(_ context.Context, c *configuration.Configuration, owner configuration.Owner, _ configuration.Tokens) error {
	home := c.Home()
	for _, dir := range []string{"conf", DeployDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(home, dir), 0o755); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create %s", dir)
		}
	}

	if err := write(home, PropertiesFile, []byte(propertiesFile(owner, c.EffectiveProperties()))); err != nil {
		return err
	}
	if ds := c.DataSources(); len(ds) > 0 {
		if err := writeYAML(home, DataSourcesFile, map[string][]*models.DataSource{"datasources": ds}); err != nil {
			return err
		}
	}
	if rs := c.Resources(); len(rs) > 0 {
		if err := writeYAML(home, ResourcesFile, map[string][]*models.Resource{"resources": rs}); err != nil {
			return err
		}
	}
	return nil
}

// propertiesFile renders props sorted by name. Datasource and resource
// definitions and passwords are left out; they live in their own files.
func propertiesFile(owner configuration.Owner, props map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s configuration for %s\n", Name, owner.Name())

	names := make([]string, 0, len(props))
	for name := range props {
		if strings.HasPrefix(name, property.DataSource) || strings.HasPrefix(name, property.Resource) ||
			strings.HasSuffix(name, ".password") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s\n", name, props[name])
	}
	return b.String()
}

func writeYAML(home, name string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to encode %s", name)
	}
	return write(home, name, data)
}

func write(home, name string, data []byte) error {
	path := filepath.Join(home, filepath.FromSlash(name))
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to write %s", path)
	}
	return nil
}
