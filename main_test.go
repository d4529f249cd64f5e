// ./main_test.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/storefront-e2e/cmd"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("run: %w", context.Canceled), 0},
		{"scenarios failed", fmt.Errorf("%w: 1 of 10 failed", cmd.ErrScenariosFailed), 1},
		{"command error", errors.New("failed to load or validate config"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestHandlePanic(t *testing.T) {
	t.Cleanup(func() {
		osWriteFile = os.WriteFile
		osExit = os.Exit
	})

	var written string
	var code = -1
	osWriteFile = func(name string, data []byte, perm os.FileMode) error {
		written = string(data)
		assert.Equal(t, panicLogFile, name)
		return nil
	}
	osExit = func(c int) { code = c }

	func() {
		defer handlePanic()
		panic("boom")
	}()

	require.Equal(t, 1, code)
	assert.Contains(t, written, "panic: boom")
	assert.Contains(t, written, "goroutine")
}

func TestHandlePanic_NoPanic(t *testing.T) {
	t.Cleanup(func() { osExit = os.Exit })
	called := false
	osExit = func(int) { called = true }

	func() {
		defer handlePanic()
	}()
	assert.False(t, called)
}
