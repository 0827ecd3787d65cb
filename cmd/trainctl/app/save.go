package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

// SaveOptions holds options for the save command
type SaveOptions struct {
	*GlobalOptions

	// Force overwrites an existing archive without prompting
	Force bool
}

// NewSaveCommand creates the save command.
//
// Usage:
//
//	trainctl save [output-dir]
//
// Examples:
//
//	# Write ./nvfp4-training-lab.tar.gz
//	trainctl save
//
//	# Write /mnt/usb/nvfp4-training-lab.tar.gz, creating the directory
//	trainctl save /mnt/usb
func NewSaveCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &SaveOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "save [output-dir]",
		Short: "Export the training lab image as a compressed archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runSave(cmd.Context(), opts, dir)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false,
		"overwrite an existing archive without prompting")

	return cmd
}

// runSave executes the save command logic.
func runSave(ctx context.Context, opts *SaveOptions, dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := runtime.CheckTool("docker"); err != nil {
		return err
	}

	cli, err := runtime.NewEngineClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	imageSize, err := runtime.FindImage(ctx, cli, cfg.ImageRef())
	if err != nil {
		return err
	}

	path, err := runtime.EnsureArchivePath(dir, cfg.ArchiveName())
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		overwrite, err := confirmOverwrite(path)
		if err != nil {
			return err
		}
		if !overwrite {
			info("Aborted, %s left untouched", path)
			return nil
		}
	}

	info("Saving %s (%s) to %s ...", cfg.ImageRef(), units.HumanSize(float64(imageSize)), path)

	archiveSize, err := runtime.SaveImage(ctx, cfg.ImageRef(), path)
	if err != nil {
		return err
	}

	ok("Saved %s (%s)", path, units.HumanSize(float64(archiveSize)))
	info("Load it on another machine with: %s load %s", cliName, filepath.Base(path))
	return nil
}

// confirmOverwrite prompts before replacing an existing archive. Ctrl-C or
// EOF counts as "no".
func confirmOverwrite(path string) (bool, error) {
	rl, err := readline.New(fmt.Sprintf("%s exists, overwrite? [y/N] ", path))
	if err != nil {
		return false, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
