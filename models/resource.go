package models

// Resource is a JNDI bound resource such as a mail session or a JMS queue.
type Resource struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string            `json:"name" yaml:"name" validate:"required"`
	Type       string            `json:"type" yaml:"type" validate:"required"`
	ClassName  string            `json:"className,omitempty" yaml:"className,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}
