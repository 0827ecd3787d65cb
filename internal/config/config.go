// Package config provides configuration management for trainctl.
//
// The whole tool is driven by a single immutable Config constructed once at
// process start: image name and tag, container paths, published ports, the
// environment variable names trainctl recognizes, and the disk-space
// threshold enforced before builds. An optional trainctl.yaml in the
// workspace can override the image and port settings; everything else is
// fixed by constants below.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nvfp4-lab/trainctl/internal/logger"
)

const (
	// DefaultImageName is the name of the training lab image.
	DefaultImageName = "nvfp4-training-lab"

	// DefaultImageTag is the tag used for builds and lookups.
	DefaultImageTag = "latest"

	// DefaultDockerfile is the Dockerfile path relative to the workspace.
	DefaultDockerfile = "docker/Dockerfile"

	// ContainerWorkdir is the working directory inside the container.
	// The workspace is mounted here; data, checkpoints and logs are
	// mounted as subdirectories.
	ContainerWorkdir = "/workspace"

	// DefaultJupyterPort is the host and container port for the
	// JupyterLab server started by the jupyter subcommand.
	DefaultJupyterPort = 8888

	// DefaultTensorBoardPort is the host and container port for the
	// TensorBoard dashboard.
	DefaultTensorBoardPort = 6006

	// MinBuildDiskBytes is the free disk space required before a build
	// is allowed to start. Image layers for the lab routinely exceed
	// 15 GB, so anything below this threshold aborts the build.
	MinBuildDiskBytes = int64(20) << 30

	// APIKeyEnv is the environment variable forwarded into the container
	// when set, enabling experiment tracking without baking credentials
	// into the image.
	APIKeyEnv = "WANDB_API_KEY"

	// ArchOverrideEnv is the environment variable that, when set,
	// bypasses GPU detection during builds. Accepts a list of compute
	// capabilities separated by ';' or ','.
	ArchOverrideEnv = "CUDA_ARCH_LIST"

	// OverrideFileName is the optional per-workspace configuration file.
	OverrideFileName = "trainctl.yaml"
)

// Config is the complete trainctl configuration.
//
// A Config is constructed once by Load and treated as immutable afterwards;
// commands receive it explicitly instead of reading package-level state.
type Config struct {
	// ImageName is the training image name without the tag.
	ImageName string

	// ImageTag is the training image tag.
	ImageTag string

	// WorkspaceDir is the absolute host path of the workspace. It is the
	// build context, the mount source root, and the default location of
	// saved image archives.
	WorkspaceDir string

	// Dockerfile is the Dockerfile path relative to WorkspaceDir.
	Dockerfile string

	// JupyterPort is the published notebook server port.
	JupyterPort int

	// TensorBoardPort is the published dashboard port.
	TensorBoardPort int

	// MinBuildDisk is the free-space threshold in bytes enforced before
	// builds.
	MinBuildDisk int64
}

// ImageRef returns the full image reference ("name:tag").
func (c *Config) ImageRef() string {
	return c.ImageName + ":" + c.ImageTag
}

// ArchiveName returns the filename used for saved image archives.
func (c *Config) ArchiveName() string {
	return c.ImageName + ".tar.gz"
}

// fileConfig mirrors the subset of settings that trainctl.yaml may override.
type fileConfig struct {
	Image struct {
		Name string `yaml:"name"`
		Tag  string `yaml:"tag"`
	} `yaml:"image"`
	Ports struct {
		Jupyter     int `yaml:"jupyter"`
		TensorBoard int `yaml:"tensorboard"`
	} `yaml:"ports"`
}

// NewDefaultConfig creates a configuration with default values rooted at the
// given workspace directory.
func NewDefaultConfig(workspaceDir string) *Config {
	return &Config{
		ImageName:       DefaultImageName,
		ImageTag:        DefaultImageTag,
		WorkspaceDir:    workspaceDir,
		Dockerfile:      DefaultDockerfile,
		JupyterPort:     DefaultJupyterPort,
		TensorBoardPort: DefaultTensorBoardPort,
		MinBuildDisk:    MinBuildDiskBytes,
	}
}

// Load builds the configuration for a workspace.
//
// Defaults are applied first; if a trainctl.yaml exists in the workspace its
// settings override the image name/tag and ports. A missing override file is
// not an error, a malformed one is.
func Load(workspaceDir string) (*Config, error) {
	cfg := NewDefaultConfig(workspaceDir)

	path := filepath.Join(workspaceDir, OverrideFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var overrides fileConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if overrides.Image.Name != "" {
		cfg.ImageName = overrides.Image.Name
	}
	if overrides.Image.Tag != "" {
		cfg.ImageTag = overrides.Image.Tag
	}
	if overrides.Ports.Jupyter != 0 {
		cfg.JupyterPort = overrides.Ports.Jupyter
	}
	if overrides.Ports.TensorBoard != 0 {
		cfg.TensorBoardPort = overrides.Ports.TensorBoard
	}

	logger.Debug("Loaded configuration overrides from %s (image: %s)", path, cfg.ImageRef())

	return cfg, nil
}
