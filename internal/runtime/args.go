// Package runtime assembles and executes the external tool invocations that
// drive the training lab container: docker build/run/save/load and the
// nvidia-smi hardware query.
//
// The package is organized around three pieces: the argument builders in
// this file produce reproducible, order-stable docker CLI argument lists;
// runner.go executes a tool and reports its exit status verbatim; and
// preflight.go hosts the checks that must pass before anything is executed.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvfp4-lab/trainctl/internal/config"
	"github.com/nvfp4-lab/trainctl/internal/logger"
)

// MountSpec binds a host directory to a container path.
type MountSpec struct {
	// HostPath is the absolute host directory. It is created if absent
	// before the mount flag is emitted.
	HostPath string

	// ContainerPath is the target path inside the container.
	ContainerPath string

	// Mode is an optional mount mode such as "ro". Empty means the
	// Docker default (read-write).
	Mode string
}

func (m MountSpec) flag() string {
	if m.Mode != "" {
		return m.HostPath + ":" + m.ContainerPath + ":" + m.Mode
	}
	return m.HostPath + ":" + m.ContainerPath
}

// PortBinding publishes a container port on the host.
type PortBinding struct {
	HostPort      int
	ContainerPort int
}

// LabMounts returns the fixed mount set for a lab session.
//
// The order is part of the contract: workspace root first, then data,
// checkpoints, logs. Consumers (and the golden-output tests) rely on the
// emitted argument string being stable across invocations.
func LabMounts(cfg *config.Config) []MountSpec {
	return []MountSpec{
		{HostPath: cfg.WorkspaceDir, ContainerPath: config.ContainerWorkdir},
		{HostPath: filepath.Join(cfg.WorkspaceDir, "data"), ContainerPath: config.ContainerWorkdir + "/data"},
		{HostPath: filepath.Join(cfg.WorkspaceDir, "checkpoints"), ContainerPath: config.ContainerWorkdir + "/checkpoints"},
		{HostPath: filepath.Join(cfg.WorkspaceDir, "logs"), ContainerPath: config.ContainerWorkdir + "/logs"},
	}
}

// RunArgs describes a docker run invocation to assemble.
type RunArgs struct {
	// Image is the full image reference to run.
	Image string

	// Workdir is the container working directory.
	Workdir string

	// Interactive allocates a TTY and wires the caller's stdin (-it).
	Interactive bool

	// GPUs exposes all host GPUs to the container.
	GPUs bool

	// Mounts are emitted in slice order; each host directory is created
	// if absent.
	Mounts []MountSpec

	// EnvPassthrough lists environment variable names forwarded from the
	// calling environment. A name whose variable is unset or empty is
	// omitted entirely.
	EnvPassthrough []string

	// Ports are the host-to-container port publications.
	Ports []PortBinding

	// Command is the command line executed inside the container. Empty
	// means the image default.
	Command []string
}

// Build assembles the docker CLI argument list for the run invocation.
//
// Building has one side effect it is responsible for: every mount's host
// directory is created (idempotently) before its flag is emitted, so a
// fresh workspace gets its data/checkpoints/logs directories on first use.
func (r *RunArgs) Build() ([]string, error) {
	args := []string{"run", "--rm"}

	if r.Interactive {
		args = append(args, "-it")
	}
	if r.GPUs {
		args = append(args, "--gpus", "all")
	}
	if r.Workdir != "" {
		args = append(args, "-w", r.Workdir)
	}

	for _, m := range r.Mounts {
		if err := os.MkdirAll(m.HostPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create mount directory %s: %w", m.HostPath, err)
		}
		args = append(args, "-v", m.flag())
	}

	for _, name := range r.EnvPassthrough {
		// Passing the bare name lets docker copy the value from the
		// environment itself, so secrets never show up in process
		// listings. Unset and empty variables are skipped entirely.
		if os.Getenv(name) == "" {
			logger.Debug("Skipping passthrough of %s (unset or empty)", name)
			continue
		}
		args = append(args, "-e", name)
	}

	for _, p := range r.Ports {
		args = append(args, "-p", fmt.Sprintf("%d:%d", p.HostPort, p.ContainerPort))
	}

	args = append(args, r.Image)
	args = append(args, r.Command...)

	return args, nil
}

// BuildImageArgs assembles the docker build argument list for the lab image.
//
// The architecture list becomes the TORCH_CUDA_ARCH_LIST build argument,
// joined with ';' as the CUDA toolchain expects.
func BuildImageArgs(cfg *config.Config, arches []string) []string {
	return []string{
		"build",
		"-f", cfg.Dockerfile,
		"-t", cfg.ImageRef(),
		"--build-arg", "TORCH_CUDA_ARCH_LIST=" + strings.Join(arches, ";"),
		".",
	}
}
