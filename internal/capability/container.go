package capability

import (
	"github.com/samber/lo"

	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ContainerCapability answers which deployable types a container accepts.
type ContainerCapability interface {
	SupportsDeployableType(t models.DeployableType) bool
}

// DeployableSet is an immutable ContainerCapability.
type DeployableSet struct {
	types []models.DeployableType
}

// NewDeployableSet creates a capability accepting the given types.
func NewDeployableSet(types ...models.DeployableType) *DeployableSet {
	return &DeployableSet{types: lo.Uniq(types)}
}

// ServletContainer accepts web applications and plain files.
func ServletContainer() *DeployableSet {
	return NewDeployableSet(models.WAR, models.File)
}

// J2EEContainer accepts every enterprise deployable type.
func J2EEContainer() *DeployableSet {
	return NewDeployableSet(models.WAR, models.EAR, models.EJB, models.RAR, models.File)
}

// SupportsDeployableType reports whether t is accepted.
func (s *DeployableSet) SupportsDeployableType(t models.DeployableType) bool {
	return lo.Contains(s.types, t)
}

// DeployableTypes returns the accepted types in declaration order.
func (s *DeployableSet) DeployableTypes() []models.DeployableType {
	return append([]models.DeployableType(nil), s.types...)
}
