package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvfp4-lab/trainctl/internal/runtime"
)

func TestCommandTree(t *testing.T) {
	cmd := NewTrainctlCommand()

	for _, name := range []string{"build", "jupyter", "save", "load", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "subcommand %s", name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestValidateFlagShorthand(t *testing.T) {
	cmd := NewTrainctlCommand()

	flag := cmd.Flags().ShorthandLookup("v")
	require.NotNil(t, flag)
	assert.Equal(t, "validate", flag.Name)
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "precondition failure",
			err:  &runtime.PreconditionError{Msg: "image not found locally"},
			want: 1,
		},
		{
			name: "tool exit propagated verbatim",
			err:  &runtime.ExitError{Tool: "docker", Code: 7},
			want: 7,
		},
		{
			name: "wrapped tool exit still propagated",
			err:  fmt.Errorf("build step: %w", &runtime.ExitError{Tool: "docker build", Code: 125}),
			want: 125,
		},
		{
			name: "unexpected error",
			err:  errors.New("boom"),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUnknownArgsRouteToRoot(t *testing.T) {
	// Positional arguments that match no subcommand stay on the root
	// command and become the pass-through command line.
	cmd := NewTrainctlCommand()

	target, args, err := cmd.Find([]string{"python", "train.py", "--epochs", "3"})
	require.NoError(t, err)
	assert.Same(t, cmd, target)
	assert.Equal(t, []string{"python", "train.py", "--epochs", "3"}, args)
}
