package app

import (
	"context"

	"github.com/nvfp4-lab/trainctl/internal/config"
	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

// SessionOptions holds options for the root (session) command
type SessionOptions struct {
	*GlobalOptions

	// Validate runs the in-container environment validation suite
	// instead of an interactive shell
	Validate bool
}

// validateCommand is the fixed verification entrypoint inside the image.
// The script lives in the mounted workspace, so validation always checks
// the environment against the checked-out lab sources.
var validateCommand = []string{"python", "docker/validate.py"}

// runSession implements the bare invocation of trainctl.
//
// Three shapes share the same image precondition and mount set:
//   - no arguments: an interactive shell with both service ports published
//   - --validate: the fixed validation entrypoint, no ports
//   - positional arguments: a pass-through command executed verbatim, no ports
func runSession(ctx context.Context, opts *SessionOptions, args []string) error {
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

	if _, err := runtime.FindImage(ctx, cli, cfg.ImageRef()); err != nil {
		return err
	}

	run := runtime.RunArgs{
		Image:          cfg.ImageRef(),
		Workdir:        config.ContainerWorkdir,
		GPUs:           true,
		Mounts:         runtime.LabMounts(cfg),
		EnvPassthrough: []string{config.APIKeyEnv},
	}

	switch {
	case opts.Validate:
		run.Command = validateCommand
	case len(args) > 0:
		run.Command = args
	default:
		run.Interactive = true
		run.Ports = []runtime.PortBinding{
			{HostPort: cfg.JupyterPort, ContainerPort: cfg.JupyterPort},
			{HostPort: cfg.TensorBoardPort, ContainerPort: cfg.TensorBoardPort},
		}
		run.Command = []string{"bash"}
		info("Starting lab session from %s", cfg.ImageRef())
	}

	dockerArgs, err := run.Build()
	if err != nil {
		return err
	}

	res, err := runtime.Run(ctx, runtime.Invocation{
		Tool:        "docker",
		Args:        dockerArgs,
		Dir:         cfg.WorkspaceDir,
		Interactive: run.Interactive,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &runtime.ExitError{Tool: "docker", Code: res.ExitCode}
	}

	if opts.Validate {
		ok("Environment validation passed")
	}
	return nil
}
