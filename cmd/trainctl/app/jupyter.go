package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvfp4-lab/trainctl/internal/config"
	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

// JupyterOptions holds options for the jupyter command
type JupyterOptions struct {
	*GlobalOptions
}

// NewJupyterCommand creates the jupyter command.
//
// The command runs JupyterLab in the foreground with the notebook and
// dashboard ports published. Ctrl-C is the normal way to stop it and is
// reported as a clean shutdown, not an error.
//
// Usage:
//
//	trainctl jupyter
func NewJupyterCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &JupyterOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "jupyter",
		Short: "Start JupyterLab inside the training lab container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJupyter(cmd.Context(), opts)
		},
	}

	return cmd
}

// runJupyter executes the jupyter command logic.
func runJupyter(ctx context.Context, opts *JupyterOptions) error {
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
		Ports: []runtime.PortBinding{
			{HostPort: cfg.JupyterPort, ContainerPort: cfg.JupyterPort},
			{HostPort: cfg.TensorBoardPort, ContainerPort: cfg.TensorBoardPort},
		},
		Command: []string{
			"jupyter", "lab",
			"--ip=0.0.0.0",
			fmt.Sprintf("--port=%d", cfg.JupyterPort),
			"--no-browser",
			"--allow-root",
		},
	}

	dockerArgs, err := run.Build()
	if err != nil {
		return err
	}

	info("JupyterLab:  http://localhost:%d", cfg.JupyterPort)
	info("TensorBoard: http://localhost:%d", cfg.TensorBoardPort)
	info("Press Ctrl-C to stop")

	res, err := runtime.Run(ctx, runtime.Invocation{
		Tool:        "docker",
		Args:        dockerArgs,
		Dir:         cfg.WorkspaceDir,
		InterruptOK: true,
	})
	if err != nil {
		return err
	}

	if res.Interrupted {
		ok("JupyterLab stopped")
		return nil
	}
	if res.ExitCode != 0 {
		return &runtime.ExitError{Tool: "docker", Code: res.ExitCode}
	}
	return nil
}
