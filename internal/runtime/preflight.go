package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	units "github.com/docker/go-units"
	"golang.org/x/sys/unix"

	"github.com/nvfp4-lab/trainctl/internal/logger"
)

// EngineAPI is the slice of the Docker Engine API the preflight checks use.
// *client.Client satisfies it; tests substitute a fake.
type EngineAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
}

// NewEngineClient connects to the local Docker daemon.
//
// The client respects DOCKER_HOST, DOCKER_TLS_VERIFY and DOCKER_CERT_PATH
// and negotiates the API version with the daemon. Connectivity is verified
// with a short timeout so a stopped daemon fails fast instead of hanging.
func NewEngineClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, &PreconditionError{
			Msg:  fmt.Sprintf("Docker daemon is not accessible: %v", err),
			Hint: "Start the Docker daemon and retry.",
		}
	}

	return cli, nil
}

// CheckTool verifies that an external tool is available on PATH.
func CheckTool(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return &PreconditionError{
			Msg:  fmt.Sprintf("%s not found in PATH", name),
			Hint: fmt.Sprintf("Install %s and make sure it is on your PATH.", name),
		}
	}
	return nil
}

// FindImage returns the local size in bytes of the given image reference.
//
// A missing image is a precondition failure carrying the "build first"
// remediation hint; run, validate, jupyter, save and pass-through commands
// all short-circuit on it before any external tool is invoked.
func FindImage(ctx context.Context, api EngineAPI, ref string) (int64, error) {
	summaries, err := api.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query local images: %w", err)
	}

	if len(summaries) == 0 {
		return 0, &PreconditionError{
			Msg:  fmt.Sprintf("image %s not found locally", ref),
			Hint: "Run 'trainctl build' first.",
		}
	}

	logger.Debug("Image %s present locally (%s)", ref, units.HumanSize(float64(summaries[0].Size)))

	return summaries[0].Size, nil
}

// CheckDiskSpace verifies that the filesystem containing path has at least
// min bytes available.
func CheckDiskSpace(path string, min int64) error {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return fmt.Errorf("failed to stat filesystem at %s: %w", path, err)
	}

	free := int64(st.Bavail) * st.Bsize
	if free < min {
		return &PreconditionError{
			Msg: fmt.Sprintf("insufficient disk space: %s free, %s required",
				units.HumanSize(float64(free)), units.HumanSize(float64(min))),
			Hint: "Free up disk space before building the image.",
		}
	}

	logger.Debug("Disk space ok: %s free at %s", units.HumanSize(float64(free)), path)

	return nil
}

// QueryGPU asks nvidia-smi for the name of the first visible GPU.
//
// GPU visibility is never fatal: a missing tool or non-zero exit yields
// ok=false and the caller decides whether to warn. The raw query output is
// returned for the architecture detector to parse.
func QueryGPU(ctx context.Context) (output string, ok bool) {
	res, err := RunCapture(ctx, Invocation{
		Tool: "nvidia-smi",
		Args: []string{"--query-gpu=name", "--format=csv,noheader"},
	})
	if err != nil || res.ExitCode != 0 {
		logger.Debug("nvidia-smi query failed: err=%v exit=%d", err, res.ExitCode)
		return "", false
	}
	if strings.TrimSpace(res.Output) == "" {
		return "", false
	}
	return res.Output, true
}
