// Package descriptor reads run descriptors: YAML documents naming a
// container, the configuration it runs with and the deployables to install.
//
// A minimal descriptor:
//
//	container:
//	  id: generic
//	  type: embedded
//	configuration:
//	  type: standalone
//	  properties:
//	    cargo.servlet.port: "8080"
//	deployables:
//	  - type: war
//	    file: build/app.war
//
// The daemon accepts the same document over HTTP, so JSON works as well.
package descriptor

import (
	"bytes"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Descriptor is a complete run description.
type Descriptor struct {
	Container     ContainerSpec     `json:"container" yaml:"container"`
	Configuration ConfigurationSpec `json:"configuration" yaml:"configuration"`
	Deployables   []DeployableSpec  `json:"deployables,omitempty" yaml:"deployables,omitempty" validate:"dive"`
}

// ContainerSpec selects the container and tunes its runtime.
type ContainerSpec struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=installed embedded remote"`
	Home string `json:"home,omitempty" yaml:"home,omitempty"`

	// Timeout bounds the start and stop waits. Nil keeps the default and
	// zero disables waiting.
	Timeout *time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// PostStopDelay is the pause after the server stopped answering.
	PostStopDelay *time.Duration `json:"postStopDelay,omitempty" yaml:"postStopDelay,omitempty"`

	Output       string `json:"output,omitempty" yaml:"output,omitempty"`
	Append       bool   `json:"append,omitempty" yaml:"append,omitempty"`
	PingPath     string `json:"pingPath,omitempty" yaml:"pingPath,omitempty"`
	PingContains string `json:"pingContains,omitempty" yaml:"pingContains,omitempty"`
	PingURL      string `json:"pingUrl,omitempty" yaml:"pingUrl,omitempty" validate:"omitempty,url"`
}

// ConfigurationSpec describes the configuration the container runs with.
type ConfigurationSpec struct {
	Type        string              `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=standalone existing runtime"`
	Home        string              `json:"home,omitempty" yaml:"home,omitempty"`
	Properties  map[string]string   `json:"properties,omitempty" yaml:"properties,omitempty"`
	Files       []models.FileConfig `json:"files,omitempty" yaml:"files,omitempty" validate:"dive"`
	DataSources []models.DataSource `json:"datasources,omitempty" yaml:"datasources,omitempty" validate:"dive"`
	Resources   []models.Resource   `json:"resources,omitempty" yaml:"resources,omitempty" validate:"dive"`
}

// DeployableSpec is one artifact to install.
type DeployableSpec struct {
	Type    string `json:"type" yaml:"type" validate:"required,oneof=war ear ejb rar sar bundle file"`
	File    string `json:"file" yaml:"file" validate:"required"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Parse decodes a descriptor. Unknown fields are rejected so typos in
// property blocks surface early.
func Parse(data []byte) (*Descriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, errUtils.Usagef("empty descriptor")
		}
		return nil, errUtils.Build(errUtils.Wrapf(err, errUtils.ErrUsage, "invalid descriptor")).
			WithHint("descriptors are YAML or JSON documents with container, configuration and deployables sections").
			Err()
	}
	return &d, nil
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrUsage, "cannot read descriptor %s", path)
	}
	return Parse(data)
}

// Marshal encodes d as YAML.
func (d *Descriptor) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// ContainerType returns the requested container type, installed by default.
func (d *Descriptor) ContainerType() (models.ContainerType, error) {
	if d.Container.Type == "" {
		return models.Installed, nil
	}
	t, err := models.ParseContainerType(d.Container.Type)
	if err != nil {
		return "", errUtils.Usagef("%s", err)
	}
	return t, nil
}

// ConfigurationType returns the requested configuration type. Remote
// containers default to runtime, everything else to standalone.
func (d *Descriptor) ConfigurationType() (models.ConfigurationType, error) {
	if d.Configuration.Type == "" {
		ct, err := d.ContainerType()
		if err != nil {
			return "", err
		}
		if ct == models.Remote {
			return models.Runtime, nil
		}
		return models.Standalone, nil
	}
	t, err := models.ParseConfigurationType(d.Configuration.Type)
	if err != nil {
		return "", errUtils.Usagef("%s", err)
	}
	return t, nil
}
