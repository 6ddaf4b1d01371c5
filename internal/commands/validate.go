package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codehaus-cargo/cargo-sub009/internal/validation"
)

var validateFiles bool

var validateCmd = &cobra.Command{
	Use:   "validate [descriptor]",
	Short: "Validate a run descriptor",
	Long: `Validate a run descriptor against the registered containers.

Examples:
  cargo validate tomcat.yaml
  cargo validate tomcat.yaml --files=false`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFiles, "files", true, "check that referenced files exist")
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	r, err := newRegistry()
	if err != nil {
		return err
	}
	opts := []validation.Option{validation.WithRegistry(r)}
	if validateFiles {
		opts = append(opts, validation.WithFileChecks())
	}

	result, err := validation.New(opts...).ValidateDescriptor(data)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if result.Valid {
		fmt.Println("✓ Descriptor is valid")
		return nil
	}

	fmt.Println("✗ Validation failed:")
	for _, e := range result.Errors {
		if e.Value != nil {
			fmt.Printf("  - %s: %s (value: %v)\n", e.Field, e.Message, e.Value)
		} else {
			fmt.Printf("  - %s: %s\n", e.Field, e.Message)
		}
	}

	return fmt.Errorf("validation failed")
}
