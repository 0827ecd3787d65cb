package runtime

import "fmt"

// PreconditionError reports a failed check that must pass before an external
// tool is invoked: missing image, missing tool, missing archive file, or
// insufficient disk space. Precondition failures are always fatal, never
// retried, and map to exit code 1.
type PreconditionError struct {
	// Msg describes what check failed.
	Msg string

	// Hint tells the user how to remediate, e.g. "Run 'trainctl build' first."
	Hint string
}

func (e *PreconditionError) Error() string {
	return e.Msg
}

// ExitError carries a wrapped tool's non-zero exit code so the process can
// propagate it verbatim instead of collapsing it into a generic failure.
type ExitError struct {
	// Tool is the external tool that failed.
	Tool string

	// Code is the tool's literal exit code.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}
