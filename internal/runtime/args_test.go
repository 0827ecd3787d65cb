package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvfp4-lab/trainctl/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.NewDefaultConfig(t.TempDir())
}

func TestLabMountOrder(t *testing.T) {
	cfg := testConfig(t)

	mounts := LabMounts(cfg)

	require.Len(t, mounts, 4)
	assert.Equal(t, cfg.WorkspaceDir, mounts[0].HostPath)
	assert.Equal(t, "/workspace", mounts[0].ContainerPath)
	assert.Equal(t, filepath.Join(cfg.WorkspaceDir, "data"), mounts[1].HostPath)
	assert.Equal(t, filepath.Join(cfg.WorkspaceDir, "checkpoints"), mounts[2].HostPath)
	assert.Equal(t, filepath.Join(cfg.WorkspaceDir, "logs"), mounts[3].HostPath)
}

func TestRunArgsGolden(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("WANDB_API_KEY", "secret")

	run := RunArgs{
		Image:          cfg.ImageRef(),
		Workdir:        "/workspace",
		Interactive:    true,
		GPUs:           true,
		Mounts:         LabMounts(cfg),
		EnvPassthrough: []string{"WANDB_API_KEY"},
		Ports: []PortBinding{
			{HostPort: 8888, ContainerPort: 8888},
			{HostPort: 6006, ContainerPort: 6006},
		},
		Command: []string{"bash"},
	}

	args, err := run.Build()
	require.NoError(t, err)

	ws := cfg.WorkspaceDir
	want := []string{
		"run", "--rm", "-it", "--gpus", "all", "-w", "/workspace",
		"-v", ws + ":/workspace",
		"-v", filepath.Join(ws, "data") + ":/workspace/data",
		"-v", filepath.Join(ws, "checkpoints") + ":/workspace/checkpoints",
		"-v", filepath.Join(ws, "logs") + ":/workspace/logs",
		"-e", "WANDB_API_KEY",
		"-p", "8888:8888",
		"-p", "6006:6006",
		"nvfp4-training-lab:latest",
		"bash",
	}
	assert.Equal(t, want, args)
}

func TestRunArgsCreatesMountDirectories(t *testing.T) {
	cfg := testConfig(t)

	run := RunArgs{Image: cfg.ImageRef(), Mounts: LabMounts(cfg)}

	_, err := run.Build()
	require.NoError(t, err)

	for _, sub := range []string{"data", "checkpoints", "logs"} {
		st, err := os.Stat(filepath.Join(cfg.WorkspaceDir, sub))
		require.NoError(t, err, "directory %s should exist", sub)
		assert.True(t, st.IsDir())
	}
}

func TestRunArgsIdempotent(t *testing.T) {
	cfg := testConfig(t)

	run := RunArgs{Image: cfg.ImageRef(), Mounts: LabMounts(cfg)}

	first, err := run.Build()
	require.NoError(t, err)

	// Directories already exist on the second pass; the emitted argument
	// list must not change and re-creation must not fail.
	second, err := run.Build()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunArgsOmitsUnsetAndEmptyEnv(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("TRAINCTL_TEST_EMPTY", "")
	os.Unsetenv("TRAINCTL_TEST_UNSET")

	run := RunArgs{
		Image:          cfg.ImageRef(),
		EnvPassthrough: []string{"TRAINCTL_TEST_EMPTY", "TRAINCTL_TEST_UNSET"},
	}

	args, err := run.Build()
	require.NoError(t, err)

	assert.NotContains(t, args, "-e")
	assert.NotContains(t, args, "TRAINCTL_TEST_EMPTY")
	assert.NotContains(t, args, "TRAINCTL_TEST_UNSET")
}

func TestRunArgsMountMode(t *testing.T) {
	run := RunArgs{
		Image: "img:latest",
		Mounts: []MountSpec{
			{HostPath: t.TempDir(), ContainerPath: "/ro", Mode: "ro"},
		},
	}

	args, err := run.Build()
	require.NoError(t, err)

	assert.Contains(t, args[len(args)-2], ":/ro:ro")
}

func TestBuildImageArgs(t *testing.T) {
	cfg := testConfig(t)

	args := BuildImageArgs(cfg, []string{"8.0", "9.0"})

	want := []string{
		"build",
		"-f", "docker/Dockerfile",
		"-t", "nvfp4-training-lab:latest",
		"--build-arg", "TORCH_CUDA_ARCH_LIST=8.0;9.0",
		".",
	}
	assert.Equal(t, want, args)
}
