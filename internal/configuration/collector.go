package configuration

import (
	"sort"
	"strings"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// AddDeployable registers a static deployable installed during Configure.
func (c *Configuration) AddDeployable(d *models.Deployable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deployables = append(c.deployables, d)
}

// AddResource registers a resource.
func (c *Configuration) AddResource(r *models.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, r)
}

// AddDataSource registers a datasource.
func (c *Configuration) AddDataSource(ds *models.DataSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataSources = append(c.dataSources, ds)
}

// Deployables returns the registered deployables in registration order.
func (c *Configuration) Deployables() []*models.Deployable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.Deployable(nil), c.deployables...)
}

// Resources returns the registered resources in registration order.
func (c *Configuration) Resources() []*models.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.Resource(nil), c.resources...)
}

// DataSources returns the registered datasources in registration order.
func (c *Configuration) DataSources() []*models.DataSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.DataSource(nil), c.dataSources...)
}

// CollectUnsupportedResources fails with one error naming every registered
// resource when the capability does not support resources.
func (c *Configuration) CollectUnsupportedResources() error {
	return c.unsupportedError(c.unsupportedResources())
}

// CollectUnsupportedDataSources fails with one error naming every registered
// datasource the capability cannot provision.
func (c *Configuration) CollectUnsupportedDataSources() error {
	return c.unsupportedError(c.unsupportedDataSources())
}

func (c *Configuration) unsupportedResources() []string {
	resources := c.Resources()
	if len(resources) == 0 || c.capability.SupportsProperty(property.Resource) {
		return nil
	}

	var msgs []string
	for _, r := range resources {
		msgs = append(msgs, "This configuration does not support Resource configuration! JndiName: "+r.Name)
	}
	return msgs
}

func (c *Configuration) unsupportedDataSources() []string {
	var msgs []string
	for _, ds := range c.DataSources() {
		if reason := c.dataSourceViolation(ds); reason != "" {
			msgs = append(msgs, reason+"! JndiName: "+ds.JNDILocation)
		}
	}
	return msgs
}

// dataSourceViolation returns the first capability a datasource needs but
// the configuration lacks.
func (c *Configuration) dataSourceViolation(ds *models.DataSource) string {
	switch {
	case !c.capability.SupportsProperty(property.DataSource):
		return "This configuration does not support DataSource configuration"
	case ds.IsXA() && !c.capability.SupportsProperty(property.DataSourceConnectionType):
		return "This configuration does not support XADataSource configured DataSources"
	case ds.RequiresTransactions() && !c.capability.SupportsProperty(property.DataSourceTransactionSupport):
		return "This configuration does not support Transactions on Driver configured DataSources"
	}
	return ""
}

func (c *Configuration) unsupportedError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	for _, m := range msgs {
		c.logger.Warn(m)
	}
	return errUtils.Capabilityf("%s", strings.Join(msgs, "\n"))
}

// parsePendingProperties turns cargo.resource.resource* and
// cargo.datasource.datasource* properties into registered entries. It runs
// once per configuration so repeated Configure calls do not duplicate them.
func (c *Configuration) parsePendingProperties() {
	c.mu.Lock()
	if c.parsed {
		c.mu.Unlock()
		return
	}
	c.parsed = true
	c.mu.Unlock()

	props := c.props.Effective()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch {
		case strings.HasPrefix(name, property.Resource):
			r := property.ParseResource(props[name])
			c.logger.Debug("resource from property", "property", name, "name", r.Name)
			c.AddResource(r)
		case strings.HasPrefix(name, property.DataSource):
			ds := property.ParseDataSource(props[name])
			c.logger.Debug("datasource from property", "property", name, "jndi", ds.JNDILocation)
			c.AddDataSource(ds)
		}
	}
}
