//go:build integration

// Package integration runs the kernel against a real gforth installation.
package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	forthkernel "github.com/wagiedev/forth-kernel-go"
)

// skipIfInterpreterNotInstalled skips the test if the error indicates gforth
// is not found.
func skipIfInterpreterNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*forthkernel.InterpreterNotFoundError](err); ok {
		t.Skip("gforth not installed")
	}
}

// startKernel starts a kernel on the installed gforth and shuts it down when
// the test ends.
func startKernel(t *testing.T, opts ...forthkernel.Option) forthkernel.Kernel {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	k := forthkernel.NewKernel()

	opts = append([]forthkernel.Option{forthkernel.WithDrainWait(300 * time.Millisecond)}, opts...)
	if err := k.Start(ctx, opts...); err != nil {
		skipIfInterpreterNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	t.Cleanup(func() {
		require.NoError(t, k.Shutdown())
	})

	return k
}

// rendered returns the markup of the first rendered event.
func rendered(t *testing.T, reply *forthkernel.Reply) string {
	t.Helper()

	for _, e := range reply.Events {
		if r, ok := e.(*forthkernel.RenderedOutput); ok {
			return r.Markup
		}
	}

	t.Fatalf("no rendered output in %d events", len(reply.Events))

	return ""
}

// value returns the expression value of a reply, if any.
func value(reply *forthkernel.Reply) (string, bool) {
	for _, e := range reply.Events {
		if v, ok := e.(*forthkernel.ExpressionValue); ok {
			return v.Text, true
		}
	}

	return "", false
}
