// Package app provides the command-line interface implementation for
// trainctl.
//
// This package contains all CLI commands and their implementations,
// following the Kubernetes CLI architecture pattern with cobra. The root
// command doubles as the session launcher: a bare invocation starts an
// interactive lab shell, --validate runs the in-container verification
// suite, and any unrecognized positional arguments are executed verbatim
// inside the image.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvfp4-lab/trainctl/internal/config"
	"github.com/nvfp4-lab/trainctl/internal/logger"
	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

const (
	// cliName is the name of the CLI application
	cliName = "trainctl"

	// cliDescription is the short description shown in help text
	cliDescription = "trainctl - NVFP4 training lab container manager"
)

// GlobalOptions holds options that are common to all commands
type GlobalOptions struct {
	// Verbose enables debug-level logging
	Verbose bool
}

// NewTrainctlCommand creates the root trainctl command with all subcommands.
//
// Interspersed flag parsing is disabled on the root so that a pass-through
// command line such as `trainctl python train.py --epochs 3` reaches the
// container untouched; flags after the first positional argument belong to
// the in-container command, not to trainctl.
func NewTrainctlCommand() *cobra.Command {
	globalOpts := &GlobalOptions{}
	opts := &SessionOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   cliName + " [command ...]",
		Short: cliDescription,
		Long: `trainctl manages the NVFP4 training lab container.

Run without arguments to start an interactive lab session with the
workspace, data, checkpoints and logs directories mounted and the notebook
and dashboard ports published. Any other arguments are executed as a
command inside the image.

The image must be built once per machine with 'trainctl build'; the target
CUDA architectures are detected from the local GPU.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(globalOpts.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), opts, args)
		},
	}

	cmd.PersistentFlags().BoolVar(&globalOpts.Verbose, "verbose", false,
		"verbose output")
	cmd.Flags().BoolVarP(&opts.Validate, "validate", "v", false,
		"run the in-container environment validation suite")
	cmd.Flags().SetInterspersed(false)

	cmd.AddCommand(
		NewBuildCommand(globalOpts),
		NewJupyterCommand(globalOpts),
		NewSaveCommand(globalOpts),
		NewLoadCommand(globalOpts),
		NewVersionCommand(globalOpts),
	)

	return cmd
}

// Execute runs the root command and maps errors to the process exit code:
// 0 on success, 1 for precondition failures (with the remediation hint
// printed), and a wrapped tool's non-zero exit code verbatim.
func Execute() int {
	cmd := NewTrainctlCommand()
	if err := cmd.Execute(); err != nil {
		reportError(err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps a command error to the process exit code: a wrapped tool's
// literal code, 1 for everything else (precondition failures and unexpected
// errors).
func exitCode(err error) int {
	var exit *runtime.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}

// reportError prints a command error. Precondition failures carry a
// remediation hint; wrapped tool failures print nothing because the tool's
// own streamed output already explained them.
func reportError(err error) {
	var pre *runtime.PreconditionError
	if errors.As(err, &pre) {
		fail("%s", pre.Msg)
		if pre.Hint != "" {
			info("%s", pre.Hint)
		}
		return
	}

	var exit *runtime.ExitError
	if errors.As(err, &exit) {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// loadConfig resolves the workspace (the current directory) and builds the
// immutable configuration every command consumes.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return config.Load(wd)
}
