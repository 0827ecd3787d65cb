package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/creack/pty"

	"github.com/nvfp4-lab/trainctl/internal/logger"
)

// Invocation describes a single external tool execution.
type Invocation struct {
	// Tool is the executable name, e.g. "docker" or "nvidia-smi".
	Tool string

	// Args is the argument list passed to the tool.
	Args []string

	// Dir is the working directory; empty means the caller's.
	Dir string

	// Interactive wires the caller's stdin to the child. Used for
	// interactive container sessions.
	Interactive bool

	// PTY runs the child under a pseudo-terminal so tools like docker
	// build keep their native progress rendering when streamed.
	PTY bool

	// InterruptOK marks SIGINT as the expected termination path (the
	// long-lived jupyter session). The signal still reaches the child
	// via the foreground process group; the parent only records it.
	InterruptOK bool
}

// Result reports how an external tool invocation ended.
type Result struct {
	// ExitCode is the child's exit code, verbatim. Callers inspect the
	// literal code; non-zero is never translated into an error here.
	ExitCode int

	// Interrupted is set when the invocation ended through SIGINT.
	Interrupted bool

	// Output holds captured combined output, only set by RunCapture.
	Output string
}

// Run executes the invocation, streaming the child's stdout and stderr to
// the caller's unmodified.
//
// A non-zero child exit is not an error: it is reported through
// Result.ExitCode so the dispatcher can propagate it verbatim. An error is
// returned only when the tool could not be started at all.
func Run(ctx context.Context, inv Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir

	logger.Debug("exec: %s %s", inv.Tool, strings.Join(inv.Args, " "))

	if inv.PTY {
		return runPTY(cmd, inv.Tool)
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if inv.Interactive {
		cmd.Stdin = os.Stdin
	}

	sigCh := make(chan os.Signal, 1)
	if inv.Interactive || inv.InterruptOK {
		// The terminal delivers SIGINT to the whole foreground process
		// group, child included. The parent must not die before the
		// child has shut down and reported its exit code.
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
	}

	err := cmd.Run()

	interrupted := false
	select {
	case <-sigCh:
		interrupted = true
	default:
	}

	return finishResult(inv.Tool, err, interrupted)
}

// RunCapture executes the invocation and returns its combined output in the
// result instead of streaming it. Used for diagnostic queries such as
// nvidia-smi where the output is parsed rather than shown.
func RunCapture(ctx context.Context, inv Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir

	logger.Debug("exec (capture): %s %s", inv.Tool, strings.Join(inv.Args, " "))

	out, err := cmd.CombinedOutput()

	res, ferr := finishResult(inv.Tool, err, false)
	res.Output = string(out)
	return res, ferr
}

// runPTY executes the command under a pseudo-terminal and copies its output
// to stdout. Docker renders build and pull progress with carriage returns
// only when it sees a terminal.
func runPTY(cmd *exec.Cmd, tool string) (Result, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start %s with pty: %w", tool, err)
	}
	defer ptmx.Close()

	// On Linux the pty read returns EIO once the child exits; that is the
	// normal end-of-stream, not a failure.
	if _, err := io.Copy(os.Stdout, ptmx); err != nil && !errors.Is(err, syscall.EIO) {
		logger.Debug("pty stream ended: %v", err)
	}

	return finishResult(tool, cmd.Wait(), false)
}

// finishResult converts an exec error into a Result, keeping the child's
// exit code intact.
func finishResult(tool string, err error, interrupted bool) (Result, error) {
	res := Result{Interrupted: interrupted}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return res, fmt.Errorf("failed to run %s: %w", tool, err)
	}

	res.ExitCode = exitErr.ExitCode()

	// 130 is the shell convention for death by SIGINT; docker run
	// forwards the signal to the container and reports it the same way.
	if res.ExitCode == 130 {
		res.Interrupted = true
	}

	// A child killed directly by the signal has no exit code; report the
	// conventional one so callers still see a literal code.
	if res.ExitCode < 0 {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() && status.Signal() == syscall.SIGINT {
			res.Interrupted = true
			res.ExitCode = 130
		} else {
			res.ExitCode = 1
		}
	}

	return res, nil
}
