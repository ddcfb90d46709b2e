// Test Type: Unit Test
// Description: Tests for the dispatch engine using a fake event source and runner

package engine_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/prown/pkg/descriptor"
	"github.com/arthur-debert/prown/pkg/engine"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/arthur-debert/prown/pkg/module"
	"github.com/arthur-debert/prown/pkg/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	startErr error
	events   chan watcher.Event
	errs     chan error

	mu     sync.Mutex
	closed int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan watcher.Event, 8),
		errs:   make(chan error, 1),
	}
}

func (s *fakeSource) Start() error                 { return s.startErr }
func (s *fakeSource) Events() <-chan watcher.Event { return s.events }
func (s *fakeSource) Errors() <-chan error         { return s.errs }
func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type call struct {
	raw string
	env []string
}

type recordingRunner struct {
	mu    sync.Mutex
	calls []call
	// results by raw command; missing entries exit 0
	exit map[string]int
	errs map[string]error
}

func (r *recordingRunner) Run(_ context.Context, raw string, env ...string) (executor.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{raw: raw, env: env})
	if err := r.errs[raw]; err != nil {
		return executor.Result{Command: raw, ExitCode: -1}, err
	}
	return executor.Result{Command: raw, ExitCode: r.exit[raw]}, nil
}

func (r *recordingRunner) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.raw)
	}
	return out
}

func modules(t *testing.T, doc string) []*module.Module {
	t.Helper()
	d, err := descriptor.Parse([]byte(doc), "/project/.prown.toml")
	require.NoError(t, err)
	return d.Modules()
}

func write(path string) watcher.Event {
	return watcher.Event{Path: path, Kind: watcher.KindWrite, Count: 1, Timestamp: time.Now()}
}

func TestDispatch_MatchingWrite(t *testing.T) {
	runner := &recordingRunner{}
	e := engine.New(modules(t, "[src]\nchange = \"*.go\"\nrun = \"go build ./...\"\n"), runner, newFakeSource())

	pass := e.Dispatch(context.Background(), write("/project/src/main.go"))
	assert.Equal(t, []string{"src"}, pass.Modules)
	assert.Equal(t, []string{"go build ./..."}, runner.commands())
	require.Len(t, pass.Results, 1)
	assert.False(t, pass.Results[0].Failed())

	assert.Contains(t, runner.calls[0].env, "PROWN_MODULE=src")
	assert.Contains(t, runner.calls[0].env, "PROWN_CHANGED_PATH=/project/src/main.go")
}

func TestDispatch_NonMatchingWrite(t *testing.T) {
	runner := &recordingRunner{}
	e := engine.New(modules(t, "[src]\nchange = \"*.go\"\nrun = \"go build ./...\"\n"), runner, newFakeSource())

	pass := e.Dispatch(context.Background(), write("/project/docs/readme.md"))
	assert.Empty(t, pass.Modules)
	assert.Empty(t, runner.commands())
}

func TestDispatch_ModuleOrderAndSequence(t *testing.T) {
	runner := &recordingRunner{}
	e := engine.New(modules(t, `
[first]
change = "*.go"
run = ["a1", "a2"]

[unrelated]
change = "*.md"
run = "never"

[second]
change = ["src/*"]
run = ["b1"]
`), runner, newFakeSource())

	pass := e.Dispatch(context.Background(), write("/project/src/main.go"))
	assert.Equal(t, []string{"first", "second"}, pass.Modules)
	assert.Equal(t, []string{"a1", "a2", "b1"}, runner.commands())
}

func TestDispatch_FailuresDoNotStopThePass(t *testing.T) {
	runner := &recordingRunner{
		exit: map[string]int{"lint": 2},
		errs: map[string]error{"missing-tool": errors.New(errors.ErrSpawn, "cannot start `missing-tool`")},
	}
	e := engine.New(modules(t, `
[src]
change = "*.go"
run = ["lint", "missing-tool", "go build ./..."]

[tests]
change = "*.go"
run = "go test ./..."
`), runner, newFakeSource())

	pass := e.Dispatch(context.Background(), write("/project/main.go"))
	assert.Equal(t, []string{"lint", "missing-tool", "go build ./...", "go test ./..."}, runner.commands())
	assert.Equal(t, 2, pass.Failures())
	assert.Equal(t, 2, pass.Results[0].ExitCode)
	assert.True(t, errors.IsErrorCode(pass.Results[1].Err, errors.ErrSpawn))
}

func TestDispatch_MatchWithoutCommands(t *testing.T) {
	runner := &recordingRunner{}
	e := engine.New(modules(t, "[docs]\nchange = \"*.md\"\n"), runner, newFakeSource())

	pass := e.Dispatch(context.Background(), write("readme.md"))
	assert.Equal(t, []string{"docs"}, pass.Modules)
	assert.Empty(t, runner.commands())
}

func TestDispatch_OnlyCreateAndWrite(t *testing.T) {
	mods := modules(t, "[src]\nchange = \"*.go\"\nrun = \"build\"\n")

	tests := []struct {
		kind watcher.Kind
		runs bool
	}{
		{watcher.KindCreate, true},
		{watcher.KindWrite, true},
		{watcher.KindRemove, false},
		{watcher.KindRename, false},
		{watcher.KindChmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			runner := &recordingRunner{}
			e := engine.New(mods, runner, newFakeSource())
			e.Dispatch(context.Background(), watcher.Event{Path: "main.go", Kind: tt.kind})
			if tt.runs {
				assert.Len(t, runner.commands(), 1)
			} else {
				assert.Empty(t, runner.commands())
			}
		})
	}
}

func TestDispatch_CanceledContextStopsPass(t *testing.T) {
	runner := &recordingRunner{}
	e := engine.New(modules(t, "[src]\nchange = \"*.go\"\nrun = [\"a\", \"b\"]\n"), runner, newFakeSource())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pass := e.Dispatch(ctx, write("main.go"))
	assert.Equal(t, []string{"src"}, pass.Modules)
	assert.Empty(t, runner.commands())
}

func TestRun_StopsWhenEventsClose(t *testing.T) {
	runner := &recordingRunner{}
	source := newFakeSource()
	e := engine.New(modules(t, "[src]\nchange = \"*.go\"\nrun = \"go build ./...\"\n"), runner, source)
	assert.Equal(t, engine.StateIdle, e.State())

	var passes []engine.Pass
	e.OnPass(func(p engine.Pass) { passes = append(passes, p) })

	source.events <- write("/project/src/main.go")
	source.events <- write("/project/docs/readme.md")
	source.events <- watcher.Event{Path: "/project/src/old.go", Kind: watcher.KindRemove}
	source.errs <- fmt.Errorf("queue overflow")
	close(source.events)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, engine.StateStopped, e.State())
	assert.Equal(t, []string{"go build ./..."}, runner.commands())
	require.Len(t, passes, 1)
	assert.Equal(t, "/project/src/main.go", passes[0].Path)
	assert.Equal(t, 1, source.closed)
}

func TestRun_StopsOnCancel(t *testing.T) {
	source := newFakeSource()
	e := engine.New(nil, &recordingRunner{}, source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.State() == engine.StateWatching }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	assert.Equal(t, engine.StateStopped, e.State())
}

func TestRun_SubscriptionFailure(t *testing.T) {
	source := newFakeSource()
	source.startErr = fmt.Errorf("too many open files")
	e := engine.New(nil, &recordingRunner{}, source)

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrWatch))
	assert.Equal(t, engine.StateFailed, e.State())
	assert.Equal(t, err, e.Err())

	err = e.Run(context.Background())
	require.Error(t, err, "a failed engine does not retry")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", engine.StateIdle.String())
	assert.Equal(t, "watching", engine.StateWatching.String())
	assert.Equal(t, "stopped", engine.StateStopped.String())
	assert.Equal(t, "failed", engine.StateFailed.String())
}
