package app

import (
	"context"
	"os"
	"strings"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/nvfp4-lab/trainctl/internal/config"
	"github.com/nvfp4-lab/trainctl/internal/device"
	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

// BuildOptions holds options for the build command
type BuildOptions struct {
	*GlobalOptions
}

// NewBuildCommand creates the build command.
//
// Preconditions are checked in order of severity: a missing docker binary
// or less than the required free disk space aborts before anything runs;
// an inaccessible GPU only warns and widens the target architecture list.
//
// Usage:
//
//	trainctl build
//
// Examples:
//
//	# Build for the detected local GPU
//	trainctl build
//
//	# Build for explicit architectures
//	CUDA_ARCH_LIST="9.0;10.0" trainctl build
func NewBuildCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &BuildOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the training lab image for the local GPU",
		Long: `Build the training lab image.

The target CUDA architectures are detected from the local GPU via
nvidia-smi. Set ` + config.ArchOverrideEnv + ` to override detection with an
explicit list, e.g. ` + config.ArchOverrideEnv + `="9.0;10.0".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), opts)
		},
	}

	return cmd
}

// runBuild executes the build command logic.
func runBuild(ctx context.Context, opts *BuildOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := runtime.CheckTool("docker"); err != nil {
		return err
	}
	if err := runtime.CheckDiskSpace(cfg.WorkspaceDir, cfg.MinBuildDisk); err != nil {
		return err
	}

	queryOut, gpuVisible := runtime.QueryGPU(ctx)
	if !gpuVisible {
		warn("GPU not accessible via nvidia-smi; the image will be built anyway")
	}

	det := device.Detect(queryOut, os.Getenv(config.ArchOverrideEnv))
	switch det.Source {
	case device.SourceOverride:
		info("Using architecture override from %s", config.ArchOverrideEnv)
	case device.SourceDetected:
		info("Detected GPU: %s (compute capability %s)", det.GPUName, det.Arches[0])
	case device.SourceUnrecognized:
		warn("Unrecognized GPU model %q; building for all supported architectures", det.GPUName)
	}
	info("Building %s for TORCH_CUDA_ARCH_LIST=%s", cfg.ImageRef(), strings.Join(det.Arches, ";"))

	res, err := runtime.Run(ctx, runtime.Invocation{
		Tool: "docker",
		Args: runtime.BuildImageArgs(cfg, det.Arches),
		Dir:  cfg.WorkspaceDir,
		PTY:  true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &runtime.ExitError{Tool: "docker build", Code: res.ExitCode}
	}

	// Report the final image size.
	cli, err := runtime.NewEngineClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	size, err := runtime.FindImage(ctx, cli, cfg.ImageRef())
	if err != nil {
		return err
	}

	ok("Built %s (%s)", cfg.ImageRef(), units.HumanSize(float64(size)))
	info("Start a lab session with: %s", cliName)
	return nil
}
