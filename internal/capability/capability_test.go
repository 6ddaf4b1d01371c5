package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

func TestMap_LaterLayersOverride(t *testing.T) {
	c := New(StandaloneDefaults(), map[string]bool{
		property.Protocol:   false,
		property.DataSource: true,
	})

	assert.False(t, c.SupportsProperty(property.Protocol))
	assert.True(t, c.SupportsProperty(property.DataSource))
	assert.True(t, c.SupportsProperty(property.Logging))
}

func TestMap_MissingKeyIsUnsupported(t *testing.T) {
	c := New()
	assert.False(t, c.SupportsProperty("cargo.anything"))
	assert.Empty(t, c.Properties())
}

func TestMap_PropertiesSortedAndSupportedOnly(t *testing.T) {
	c := New(map[string]bool{"b": true, "a": true, "c": false})

	assert.Equal(t, []string{"a", "b"}, c.Properties())
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": false}, c.SupportsMap())
}

func TestMap_IsImmutable(t *testing.T) {
	layer := map[string]bool{property.Hostname: true}
	c := New(layer)
	layer[property.Hostname] = false

	m := c.SupportsMap()
	m[property.Hostname] = false

	assert.True(t, c.SupportsProperty(property.Hostname))
}

func TestDefaultsPerConfigurationType(t *testing.T) {
	standalone := New(DefaultsFor(models.Standalone))
	existing := New(DefaultsFor(models.Existing))
	runtime := New(DefaultsFor(models.Runtime))

	assert.True(t, standalone.SupportsProperty(property.Protocol))
	assert.True(t, standalone.SupportsProperty(property.Logging))
	assert.False(t, existing.SupportsProperty(property.Protocol))
	assert.True(t, existing.SupportsProperty(property.PortOffset))
	assert.True(t, runtime.SupportsProperty(property.Hostname))
	assert.False(t, runtime.SupportsProperty(property.JavaHome))
}

func TestDeployableSet(t *testing.T) {
	s := NewDeployableSet(models.WAR, models.WAR, models.EAR)

	assert.True(t, s.SupportsDeployableType(models.EAR))
	assert.False(t, s.SupportsDeployableType(models.RAR))
	assert.Equal(t, []models.DeployableType{models.WAR, models.EAR}, s.DeployableTypes())
	assert.True(t, J2EEContainer().SupportsDeployableType(models.EJB))
	assert.False(t, ServletContainer().SupportsDeployableType(models.EJB))
}
