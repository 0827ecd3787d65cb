package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the trainctl version, injected at build time via
// -ldflags "-X github.com/nvfp4-lab/trainctl/cmd/trainctl/app.Version=...".
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand(globalOpts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", cliName, Version)
		},
	}

	return cmd
}
