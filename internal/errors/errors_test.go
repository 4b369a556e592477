package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpreterNotFoundError(t *testing.T) {
	err := &InterpreterNotFoundError{
		SearchedPaths: []string{"$GFORTHPATH", "$PATH", "/usr/bin/gforth"},
	}

	require.Equal(
		t,
		"interpreter not found in: [$GFORTHPATH $PATH /usr/bin/gforth]",
		err.Error(),
	)
	require.True(t, err.IsKernelError())
}

func TestProcessSpawnError(t *testing.T) {
	root := errors.New("permission denied")
	err := &ProcessSpawnError{Path: "/usr/bin/gforth", Err: root}

	require.Equal(t, "failed to spawn interpreter /usr/bin/gforth: permission denied", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsKernelError())

	noPath := &ProcessSpawnError{Err: root}
	require.Equal(t, "failed to spawn interpreter: permission denied", noPath.Error())
}

func TestWriteError(t *testing.T) {
	root := errors.New("broken pipe")
	err := &WriteError{Line: "1 2 +", Err: root}

	require.Equal(t, "write to interpreter stdin: broken pipe", err.Error())
	require.ErrorIs(t, err, root)
}

func TestProcessError(t *testing.T) {
	tests := []struct {
		name string
		err  *ProcessError
		want string
	}{
		{
			name: "underlying error wins",
			err:  &ProcessError{ExitCode: 9, Stderr: "ignored", Err: errors.New("signal: killed")},
			want: "interpreter process exited (exit 9): signal: killed",
		},
		{
			name: "stderr only",
			err:  &ProcessError{ExitCode: 2, Stderr: "stack underflow"},
			want: "interpreter process exited (exit 2): stack underflow",
		},
		{
			name: "exit code only",
			err:  &ProcessError{ExitCode: 0},
			want: "interpreter process exited (exit 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Error())
			require.True(t, tt.err.IsKernelError())
		})
	}
}

func TestCommandError(t *testing.T) {
	err := &CommandError{Index: 1, Line: "foo", Stderr: "Undefined word"}

	require.Equal(t, `line 2 "foo" failed: Undefined word`, err.Error())
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{Stream: "stdout", Bytes: 3}

	require.Contains(t, err.Error(), "stdout")
	require.Contains(t, err.Error(), "ISO-8859-1")
}

func TestAsTypeThroughWrapping(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &ProcessError{ExitCode: 1})

	pe, ok := errors.AsType[*ProcessError](wrapped)
	require.True(t, ok)
	require.Equal(t, 1, pe.ExitCode)
}
