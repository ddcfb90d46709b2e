package engine

import (
	"context"
	"sync"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/module"
	"github.com/arthur-debert/prown/pkg/watcher"
	"github.com/rs/zerolog"
)

// Source is a subscription that yields debounced events. *watcher.Watcher
// implements it.
type Source interface {
	Start() error
	Events() <-chan watcher.Event
	Errors() <-chan error
	Close() error
}

// CommandOutcome is the result of one command run during a pass.
type CommandOutcome struct {
	Module   string
	Command  string
	ExitCode int
	Err      error
}

// Failed reports whether the command could not run or exited non-zero.
func (o CommandOutcome) Failed() bool {
	return o.Err != nil || o.ExitCode != 0
}

// Pass records what one dispatched event did.
type Pass struct {
	Path    string
	Kind    watcher.Kind
	Modules []string
	Results []CommandOutcome
}

// Failures counts the failed commands of the pass.
func (p Pass) Failures() int {
	n := 0
	for _, r := range p.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Engine dispatches events from a Source to modules.
type Engine struct {
	modules []*module.Module
	runner  executor.Runner
	source  Source
	onPass  func(Pass)
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
	err   error
}

// New creates an idle engine. The module list is not copied and must not be
// modified while the engine runs.
func New(modules []*module.Module, runner executor.Runner, source Source) *Engine {
	return &Engine{
		modules: modules,
		runner:  runner,
		source:  source,
		logger:  logging.GetLogger("engine"),
		state:   StateIdle,
	}
}

// OnPass registers a function called after every dispatched pass that
// matched at least one module. It must be set before Run.
func (e *Engine) OnPass(fn func(Pass)) {
	e.onPass = fn
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error that moved the engine to StateFailed.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Engine) setState(s State, err error) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.err = err
	e.mu.Unlock()
	e.logger.Debug().Str("from", prev.String()).Str("to", s.String()).Msg("Engine state changed")
}

// Run subscribes and processes events until the source closes its event
// stream or ctx is canceled. It returns nil when stopped and a WATCH error
// when the subscription fails.
func (e *Engine) Run(ctx context.Context) error {
	if s := e.State(); s != StateIdle {
		return errors.Newf(errors.ErrInternal, "engine cannot run from state %s", s)
	}

	if err := e.source.Start(); err != nil {
		if !errors.IsErrorCode(err, errors.ErrWatch) {
			err = errors.Wrap(err, errors.ErrWatch, "cannot subscribe to filesystem events")
		}
		_ = e.source.Close()
		e.setState(StateFailed, err)
		return err
	}
	defer func() { _ = e.source.Close() }()

	e.setState(StateWatching, nil)
	e.logger.Info().Int("modules", len(e.modules)).Msg("Watching for changes")

	events := e.source.Events()
	errs := e.source.Errors()
	for {
		select {
		case <-ctx.Done():
			e.setState(StateStopped, nil)
			return nil
		case event, ok := <-events:
			if !ok {
				e.setState(StateStopped, nil)
				return nil
			}
			pass := e.Dispatch(ctx, event)
			if e.onPass != nil && len(pass.Modules) > 0 {
				e.onPass(pass)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			e.logger.Warn().Err(err).Msg("Watch error")
		}
	}
}

// Dispatch runs the commands of every module matching the event's path.
// Only create and write events are dispatched.
func (e *Engine) Dispatch(ctx context.Context, event watcher.Event) Pass {
	pass := Pass{Path: event.Path, Kind: event.Kind}

	if !event.Kind.Dispatchable() {
		e.logger.Debug().
			Str("path", event.Path).
			Str("kind", event.Kind.String()).
			Msg("Ignoring event")
		return pass
	}

	done := logging.LogOperationStart(e.logger, "dispatch "+event.Path)
	defer done()

	for _, m := range e.modules {
		if !m.Matches(event.Path) {
			continue
		}
		pass.Modules = append(pass.Modules, m.Name())
		e.logger.Info().
			Str("module", m.Name()).
			Str("path", event.Path).
			Msg("Module matched")

		for _, raw := range m.RunCommands() {
			if ctx.Err() != nil {
				e.logger.Debug().Str("module", m.Name()).Msg("Pass interrupted")
				return pass
			}
			pass.Results = append(pass.Results, e.run(ctx, m.Name(), event.Path, raw))
		}
	}
	return pass
}

func (e *Engine) run(ctx context.Context, moduleName, path, raw string) CommandOutcome {
	outcome := CommandOutcome{Module: moduleName, Command: raw}

	result, err := e.runner.Run(ctx, raw,
		"PROWN_MODULE="+moduleName,
		"PROWN_CHANGED_PATH="+path,
	)
	outcome.ExitCode = result.ExitCode
	outcome.Err = err

	switch {
	case err != nil:
		e.logger.Error().
			Err(err).
			Str("module", moduleName).
			Str("command", raw).
			Msg("Command could not run")
	case result.ExitCode != 0:
		e.logger.Error().
			Str("module", moduleName).
			Str("command", raw).
			Int("exitCode", result.ExitCode).
			Msg("Command failed")
	default:
		e.logger.Info().
			Str("module", moduleName).
			Str("command", raw).
			Dur("duration", result.Duration).
			Msg("Command finished")
	}
	return outcome
}
