// Test Type: Unit Test
// Description: Tests for command tokenizing and process execution

package executor_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantProgram string
		wantArgs    []string
	}{
		{"simple", "make all", "make", []string{"all"}},
		{"runs of spaces", "go   build\t./...", "go", []string{"build", "./..."}},
		{"no args", "true", "true", []string{}},
		{"quotes are not interpreted", `echo "a b"`, "echo", []string{`"a`, `b"`}},
		{"empty", "", "", nil},
		{"blank", "   ", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, args := executor.Tokenize(tt.raw)
			assert.Equal(t, tt.wantProgram, program)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	ex := executor.New(executor.Options{})

	result, err := ex.Run(context.Background(), "true")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.True(t, result.Success())

	result, err = ex.Run(context.Background(), "false")
	require.NoError(t, err, "non-zero exit is not an error")
	assert.Equal(t, 1, result.ExitCode)
	assert.False(t, result.Success())
}

func TestRun_ExitCodeIsPassedThrough(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "exit3.sh")
	require.NoError(t, os.WriteFile(script, []byte("exit 3\n"), 0644))

	ex := executor.New(executor.Options{})
	result, err := ex.Run(context.Background(), "sh "+script)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "sh", result.Program)
	assert.Equal(t, []string{script}, result.Args)
}

func TestRun_EmptyCommand(t *testing.T) {
	ex := executor.New(executor.Options{})
	_, err := ex.Run(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyCommand))
}

func TestRun_SpawnFailure(t *testing.T) {
	ex := executor.New(executor.Options{})
	result, err := ex.Run(context.Background(), "prown-no-such-program --flag")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSpawn))
	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, errors.UserMessage(err), "prown-no-such-program")
}

func TestRun_Timeout(t *testing.T) {
	ex := executor.New(executor.Options{Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := ex.Run(context.Background(), "sleep 5")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTimeout))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := executor.New(executor.Options{})
	_, err := ex.Run(ctx, "sleep 5")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
}

func TestRun_CapturesOutput(t *testing.T) {
	var stdout bytes.Buffer
	ex := executor.New(executor.Options{Stdout: &stdout})

	_, err := ex.Run(context.Background(), "echo hello   world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestRun_Environment(t *testing.T) {
	var stdout bytes.Buffer
	ex := executor.New(executor.Options{
		Stdout: &stdout,
		Env:    []string{"PROWN_PROJECT_DIR=/tmp/project"},
	})

	_, err := ex.Run(context.Background(), "env", "PROWN_MODULE=src")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "PROWN_PROJECT_DIR=/tmp/project")
	assert.Contains(t, stdout.String(), "PROWN_MODULE=src")
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	ex := executor.New(executor.Options{Stdout: &stdout, Dir: dir})

	_, err := ex.Run(context.Background(), "pwd")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(bytes.TrimSpace(stdout.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRun_DryRun(t *testing.T) {
	var stdout bytes.Buffer
	ex := executor.New(executor.Options{Stdout: &stdout, DryRun: true})

	result, err := ex.Run(context.Background(), "echo should-not-print")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Empty(t, stdout.String())
}
