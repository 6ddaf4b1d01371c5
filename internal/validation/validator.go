// Package validation checks run descriptors before anything is created on
// disk or started.
//
// Validation runs in three steps:
//
//  1. Parsing - the document must be valid YAML or JSON with known fields
//  2. Struct validation - required fields and enumerations, through
//     go-playground/validator tags on the descriptor types
//  3. Semantic validation - container registration, configuration type
//     compatibility, port values and deployable files
//
// # Usage Example
//
//	v := validation.New(validation.WithRegistry(registry))
//	result, err := v.ValidateDescriptor(data)
//	if err != nil {
//	    // Handle error
//	}
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
package validation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codehaus-cargo/cargo-sub009/internal/descriptor"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Validator checks descriptors. Without a registry, container
// registration is not checked.
type Validator struct {
	// structValidator validates struct tags
	structValidator *validator.Validate

	registry   *factory.Registry
	checkFiles bool
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the dotted path of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// Option customizes a Validator.
type Option func(*Validator)

// WithRegistry checks that the descriptor names a registered container.
func WithRegistry(r *factory.Registry) Option {
	return func(v *Validator) { v.registry = r }
}

// WithFileChecks requires deployable and configuration files to exist.
func WithFileChecks() Option {
	return func(v *Validator) { v.checkFiles = true }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	sv := validator.New(validator.WithRequiredStructEnabled())
	sv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v := &Validator{structValidator: sv}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDescriptor parses and validates a descriptor document. Parse
// failures are reported in the result, not as an error.
func (v *Validator) ValidateDescriptor(data []byte) (*ValidationResult, error) {
	d, err := descriptor.Parse(data)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Field:   "document",
					Message: err.Error(),
				},
			},
		}, nil
	}
	return v.Validate(d)
}

// Validate checks an already parsed descriptor.
func (v *Validator) Validate(d *descriptor.Descriptor) (*ValidationResult, error) {
	if d == nil {
		return nil, errors.New("descriptor is nil")
	}

	structErrors, err := v.validateStruct(d)
	if err != nil {
		return nil, err
	}

	allErrors := append(structErrors, v.validateSemantics(d)...)

	return &ValidationResult{
		Valid:  len(allErrors) == 0,
		Errors: allErrors,
	}, nil
}

func (v *Validator) validateStruct(d *descriptor.Descriptor) ([]ValidationError, error) {
	err := v.structValidator.Struct(d)
	if err == nil {
		return nil, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil, err
	}

	out := make([]ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: tagMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out, nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "must be a URL"
	}
	return fmt.Sprintf("failed the %s check", fe.Tag())
}

// validateSemantics checks what struct tags cannot express.
func (v *Validator) validateSemantics(d *descriptor.Descriptor) []ValidationError {
	var errs []ValidationError

	ct, ctErr := d.ContainerType()
	cfgType, cfgErr := d.ConfigurationType()

	if ctErr == nil && cfgErr == nil {
		if ct == models.Remote && cfgType != models.Runtime {
			errs = append(errs, ValidationError{
				Field:   "configuration.type",
				Message: "remote containers require a runtime configuration",
				Value:   string(cfgType),
			})
		}
		if ct.IsLocal() && cfgType == models.Runtime {
			errs = append(errs, ValidationError{
				Field:   "configuration.type",
				Message: fmt.Sprintf("%s containers require a standalone or existing configuration", ct),
				Value:   string(cfgType),
			})
		}
		if cfgType == models.Existing && d.Configuration.Home == "" {
			errs = append(errs, ValidationError{
				Field:   "configuration.home",
				Message: "an existing configuration requires a home directory",
			})
		}
		if cfgType == models.Runtime && d.Configuration.Home != "" {
			errs = append(errs, ValidationError{
				Field:   "configuration.home",
				Message: "a runtime configuration has no home directory",
				Value:   d.Configuration.Home,
			})
		}

		if v.registry != nil && d.Container.ID != "" && !v.registry.Containers.IsRegistered(d.Container.ID, ct) {
			errs = append(errs, ValidationError{
				Field: "container.id",
				Message: fmt.Sprintf("no %s container registered as [%s]; registered containers: %s",
					ct, d.Container.ID, strings.Join(v.registry.Containers.ContainerIDs(), ", ")),
				Value: d.Container.ID,
			})
		}
	}

	if d.Container.Timeout != nil && *d.Container.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "container.timeout",
			Message: "timeout must not be negative",
			Value:   d.Container.Timeout.String(),
		})
	}
	if d.Container.PostStopDelay != nil && *d.Container.PostStopDelay < 0 {
		errs = append(errs, ValidationError{
			Field:   "container.postStopDelay",
			Message: "delay must not be negative",
			Value:   d.Container.PostStopDelay.String(),
		})
	}

	for i, dep := range d.Deployables {
		if dep.Context != "" && !models.ValidContext(dep.Context) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("deployables[%d].context", i),
				Message: "context must not contain \".\" or \"..\" segments or backslashes",
				Value:   dep.Context,
			})
		}
	}

	for name, value := range d.Configuration.Properties {
		if !property.IsPortProperty(name) && name != property.PortOffset {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || (property.IsPortProperty(name) && (n < 0 || n > 65535)) {
			errs = append(errs, ValidationError{
				Field:   "configuration.properties." + name,
				Message: "port must be an integer between 0 and 65535",
				Value:   value,
			})
		}
	}

	if v.checkFiles {
		for i, dep := range d.Deployables {
			if dep.File == "" {
				continue
			}
			if _, err := os.Stat(dep.File); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("deployables[%d].file", i),
					Message: "file does not exist",
					Value:   dep.File,
				})
			}
		}
		for i, f := range d.Configuration.Files {
			if f.File == "" {
				continue
			}
			if _, err := os.Stat(f.File); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("configuration.files[%d].file", i),
					Message: "file does not exist",
					Value:   f.File,
				})
			}
		}
	}

	return errs
}
