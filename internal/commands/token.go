package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codehaus-cargo/cargo-sub009/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage daemon authentication tokens",
}

var generateTokenCmd = &cobra.Command{
	Use:   "generate [subject]",
	Short: "Generate a daemon API token",
	Long: `Generate a JWT token for the daemon API.

The token is signed with daemon.jwt_secret from the configuration file.
Operators may start and stop handles, viewers may only read them.

Examples:
  # Token for a CI job
  cargo token generate ci --role operator

  # Read-only token valid for a week
  cargo token generate dashboard --role viewer --expiration 168

  # Use custom secret (overrides config)
  cargo token generate ci --secret "my-custom-secret"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateToken,
}

var (
	tokenExpiration int64
	tokenSecret     string
	tokenRoles      []string
)

func init() {
	generateTokenCmd.Flags().Int64Var(&tokenExpiration, "expiration", 0, "Token expiration in hours (default: daemon.token_expiration)")
	generateTokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "JWT secret (default: from config file)")
	generateTokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{string(auth.RoleViewer)}, "Roles granted (operator, viewer)")

	tokenCmd.AddCommand(generateTokenCmd)
}

func runGenerateToken(cmd *cobra.Command, args []string) error {
	subject := args[0]

	dc := cfg.Daemon
	if tokenSecret != "" {
		dc.JWTSecret = tokenSecret
	}
	if dc.JWTSecret == "" {
		return fmt.Errorf(`jwt_secret not found in config file and --secret not provided

Please either:
  1. Add to your cargo.yaml:
     daemon:
       jwt_secret: your-secret-here

  2. Or use the --secret flag:
     cargo token generate %s --secret "your-secret-here"`, subject)
	}
	if tokenExpiration > 0 {
		dc.TokenExpiration = time.Duration(tokenExpiration) * time.Hour
	}

	roles := make([]auth.Role, 0, len(tokenRoles))
	for _, r := range tokenRoles {
		role, err := auth.ParseRole(r)
		if err != nil {
			return err
		}
		roles = append(roles, role)
	}

	token, err := auth.NewJWTService(dc).GenerateToken(subject, roles...)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("Token Generated Successfully\n")
	fmt.Printf("============================\n\n")
	fmt.Printf("Subject:    %s\n", subject)
	fmt.Printf("Roles:      %v\n", roles)
	fmt.Printf("Expiration: %s\n", dc.TokenExpiration)
	fmt.Printf("\nToken:\n%s\n\n", token)
	fmt.Printf("Pass it to remote commands:\n")
	fmt.Printf("  cargo remote list --token %s\n\n", token)
	fmt.Printf("⚠️  Keep this token secure!\n")

	return nil
}
