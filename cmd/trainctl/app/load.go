package app

import (
	"context"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

// LoadOptions holds options for the load command
type LoadOptions struct {
	*GlobalOptions
}

// NewLoadCommand creates the load command.
//
// Usage:
//
//	trainctl load [image-file]
//
// Without an argument the archive is expected under its default name in the
// current directory, i.e. the counterpart of a plain 'trainctl save'.
func NewLoadCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &LoadOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "load [image-file]",
		Short: "Import a training lab image archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runLoad(cmd.Context(), opts, path)
		},
	}

	return cmd
}

// runLoad executes the load command logic.
func runLoad(ctx context.Context, opts *LoadOptions, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := runtime.CheckTool("docker"); err != nil {
		return err
	}

	if path == "" {
		path = cfg.ArchiveName()
	}

	size, err := runtime.ArchiveInfo(path)
	if err != nil {
		return err
	}

	info("Loading image from %s (%s) ...", path, units.HumanSize(float64(size)))

	res, err := runtime.LoadImage(ctx, path)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &runtime.ExitError{Tool: "docker load", Code: res.ExitCode}
	}

	ok("Loaded image from %s", path)
	info("Archives like this are written with: %s save [output-dir]", cliName)
	info("Start a lab session with: %s", cliName)
	return nil
}
