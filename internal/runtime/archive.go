package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/nvfp4-lab/trainctl/internal/logger"
)

// EnsureArchivePath resolves where a saved image archive is written.
//
// With an empty dir the archive lands in the current directory; otherwise
// the directory is created if missing. The filename is always the fixed
// archive name for the image.
func EnsureArchivePath(dir, archiveName string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return filepath.Join(dir, archiveName), nil
}

// ArchiveInfo returns the size of an existing archive file.
//
// A missing file is a precondition failure with a usage hint, since load is
// most often called without arguments in a directory that has no archive.
func ArchiveInfo(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, &PreconditionError{
			Msg:  fmt.Sprintf("archive %s not found", path),
			Hint: "Usage: trainctl load [image-file] — create an archive with 'trainctl save'.",
		}
	}
	return st.Size(), nil
}

// SaveImage streams `docker save` through gzip into outPath and returns the
// size of the written archive.
//
// docker save emits a plain tar, so the compression happens here. A failed
// save removes the partial archive rather than leaving a truncated file
// that `load` would later choke on.
func SaveImage(ctx context.Context, ref, outPath string) (int64, error) {
	cmd := exec.CommandContext(ctx, "docker", "save", ref)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open docker save pipe: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive %s: %w", outPath, err)
	}
	gz := gzip.NewWriter(out)

	logger.Debug("exec: docker save %s | gzip > %s", ref, outPath)

	removePartial := func() {
		if err := os.Remove(outPath); err != nil {
			logger.Warn("Failed to remove partial archive %s: %v", outPath, err)
		}
	}

	if err := cmd.Start(); err != nil {
		gz.Close()
		out.Close()
		removePartial()
		return 0, fmt.Errorf("failed to start docker save: %w", err)
	}

	_, copyErr := io.Copy(gz, stdout)
	gzErr := gz.Close()
	closeErr := out.Close()
	waitErr := cmd.Wait()

	if waitErr != nil {
		removePartial()
		// A non-zero exit from the tool is propagated verbatim, like
		// every other wrapped invocation.
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && exitErr.ExitCode() > 0 {
			return 0, &ExitError{Tool: "docker save", Code: exitErr.ExitCode()}
		}
		return 0, fmt.Errorf("docker save failed: %w", waitErr)
	}

	for _, err := range []error{copyErr, gzErr, closeErr} {
		if err != nil {
			removePartial()
			return 0, fmt.Errorf("failed to write archive %s: %w", outPath, err)
		}
	}

	st, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive %s: %w", outPath, err)
	}
	return st.Size(), nil
}

// LoadImage imports an image archive via `docker load`.
//
// docker load decompresses gzip archives natively, so the file is handed
// over as-is. The tool's output is streamed and its exit code reported
// verbatim in the result.
func LoadImage(ctx context.Context, path string) (Result, error) {
	return Run(ctx, Invocation{
		Tool: "docker",
		Args: []string{"load", "-i", path},
	})
}
