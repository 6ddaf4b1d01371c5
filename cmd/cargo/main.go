package main

import (
	"fmt"
	"os"

	"github.com/codehaus-cargo/cargo-sub009/internal/commands"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/version"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime
	version.GitCommit = GitCommit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errUtils.Hints(err) {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
