package executor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/rs/zerolog"
)

// waitDelay bounds how long Run waits for output pipes after the command
// has been killed.
const waitDelay = 500 * time.Millisecond

// Runner executes raw command strings.
type Runner interface {
	Run(ctx context.Context, raw string, env ...string) (Result, error)
}

// Result describes a finished command.
type Result struct {
	Command  string
	Program  string
	Args     []string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Options configures an Executor.
type Options struct {
	// Timeout bounds each command; zero means no limit.
	Timeout time.Duration
	// Dir is the working directory of spawned processes.
	Dir string
	// Env entries ("KEY=VALUE") appended to the inherited environment.
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
	DryRun bool
}

// Executor runs commands one at a time and waits for each to finish.
type Executor struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an executor. Output goes to the process stdout/stderr unless
// writers are given.
func New(opts Options) *Executor {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Executor{
		opts:   opts,
		logger: logging.GetLogger("executor"),
	}
}

// Tokenize splits a raw command into program and arguments.
// An empty or blank command yields an empty program.
func Tokenize(raw string) (string, []string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Run executes raw and blocks until the process exits.
func (e *Executor) Run(ctx context.Context, raw string, env ...string) (Result, error) {
	program, args := Tokenize(raw)
	result := Result{Command: raw, Program: program, Args: args, ExitCode: -1}

	if program == "" {
		return result, errors.New(errors.ErrEmptyCommand, "cannot run an empty command").
			WithHint("give the command a program name")
	}

	logging.LogCommand(e.logger, program, args)

	if e.opts.DryRun {
		e.logger.Info().Str("command", raw).Msg("Dry run mode - command would be executed")
		result.ExitCode = 0
		return result, nil
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = e.opts.Dir
	cmd.Env = append(os.Environ(), e.opts.Env...)
	cmd.Env = append(cmd.Env, env...)
	cmd.Stdout = e.opts.Stdout
	cmd.Stderr = e.opts.Stderr
	// Once ctx is done, stop waiting for output still held open by
	// descendants that escaped the kill.
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)

	if err == nil {
		result.ExitCode = 0
		e.logger.Info().
			Str("command", raw).
			Dur("duration", result.Duration).
			Msg("Command exited successfully")
		return result, nil
	}

	switch {
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return result, errors.Wrapf(err, errors.ErrTimeout,
			"command `%s` did not finish within %s", raw, e.opts.Timeout).
			WithDetail("command", raw).
			WithHint("raise exec.timeout or set it to 0 to disable")
	case stderrors.Is(ctx.Err(), context.Canceled):
		return result, errors.Wrapf(err, errors.ErrCanceled, "command `%s` was interrupted", raw).
			WithDetail("command", raw)
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		e.logger.Warn().
			Str("command", raw).
			Int("exitCode", result.ExitCode).
			Dur("duration", result.Duration).
			Msg("Command exited with non-zero status")
		return result, nil
	}

	return result, errors.Wrapf(err, errors.ErrSpawn, "cannot start `%s`", program).
		WithDetail("command", raw).
		WithHint("check that `%s` is installed and on your PATH", program)
}
