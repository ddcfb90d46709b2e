// Package project ties a directory to its optional .prown.toml descriptor.
package project

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/prown/pkg/config"
	"github.com/arthur-debert/prown/pkg/descriptor"
	"github.com/arthur-debert/prown/pkg/engine"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/paths"
	"github.com/arthur-debert/prown/pkg/projects"
	"github.com/arthur-debert/prown/pkg/watcher"
)

// EnvProjectDir is set for every command prown runs.
const EnvProjectDir = "PROWN_PROJECT_DIR"

// Project is a directory with an optional descriptor.
type Project struct {
	dir        string
	descriptor *descriptor.Descriptor
}

// Open loads the project in dir. A project without a descriptor is valid;
// a descriptor that fails to parse is an error.
func Open(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot resolve %s", dir)
	}

	p := &Project{dir: abs}
	path := p.DescriptorPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot access %s", path)
	}

	d, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	p.descriptor = d
	return p, nil
}

// Init writes the default descriptor in dir and registers the project in
// list when list is not nil. An existing descriptor is kept; created is
// false in that case.
func Init(dir string, list *projects.List) (p *Project, created bool, err error) {
	logger := logging.GetLogger("project")

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrIO, "cannot resolve %s", dir)
	}

	path := filepath.Join(abs, paths.DescriptorFile)
	switch err := descriptor.Scaffold(path); {
	case err == nil:
		created = true
	case errors.IsErrorCode(err, errors.ErrAlreadyExists):
		logger.Info().Str("path", path).Msg("Descriptor already exists, leaving it untouched")
	default:
		return nil, false, err
	}

	p, err = Open(abs)
	if err != nil {
		return nil, created, err
	}

	if list != nil {
		if _, _, err := list.Add(abs); err != nil {
			return p, created, err
		}
		if err := list.Save(); err != nil {
			return p, created, err
		}
	}
	return p, created, nil
}

// Dir returns the absolute project directory.
func (p *Project) Dir() string {
	return p.dir
}

// Name returns the base name of the project directory.
func (p *Project) Name() string {
	return filepath.Base(p.dir)
}

// DescriptorPath returns where the descriptor is or would be.
func (p *Project) DescriptorPath() string {
	return filepath.Join(p.dir, paths.DescriptorFile)
}

// HasDescriptor reports whether the project has a descriptor.
func (p *Project) HasDescriptor() bool {
	return p.descriptor != nil
}

// Descriptor returns the parsed descriptor, or nil.
func (p *Project) Descriptor() *descriptor.Descriptor {
	return p.descriptor
}

// RequireDescriptor returns a MISSING_DESCRIPTOR error when the project has
// no descriptor.
func (p *Project) RequireDescriptor() error {
	if p.descriptor != nil {
		return nil
	}
	return errors.Newf(errors.ErrMissingDescriptor, "there is no %s in %s", paths.DescriptorFile, p.dir).
		WithDetail("project", p.dir).
		WithHint("run `prown init` in %s", p.dir)
}

// Executor returns an executor that runs commands inside the project
// directory. Timeout, Dir and the project environment are taken from the
// project and settings; output and dry-run come from opts.
func (p *Project) Executor(settings *config.Settings, opts executor.Options) *executor.Executor {
	opts.Timeout = settings.Exec.Timeout
	opts.Dir = p.dir
	opts.Env = append(opts.Env, EnvProjectDir+"="+p.dir)
	return executor.New(opts)
}

// Run executes a named command from the descriptor.
func (p *Project) Run(ctx context.Context, name string, runner executor.Runner) (int, error) {
	if err := p.RequireDescriptor(); err != nil {
		return -1, err
	}
	return p.descriptor.Run(ctx, name, runner)
}

// Watch blocks, dispatching changes below the project directory until ctx
// is canceled. onPass may be nil.
func (p *Project) Watch(ctx context.Context, settings *config.Settings, runner executor.Runner, onPass func(engine.Pass)) error {
	if err := p.RequireDescriptor(); err != nil {
		return err
	}

	source := watcher.New(p.dir, watcher.Options{
		Debounce: settings.Watch.Debounce,
		Capacity: settings.Watch.QueueCapacity,
		Ignore:   settings.Watch.Ignore,
	})
	e := engine.New(p.descriptor.Modules(), runner, source)
	if onPass != nil {
		e.OnPass(onPass)
	}

	logger := logging.GetLogger("project")
	logger.Info().
		Str("project", p.Name()).
		Str("dir", p.dir).
		Msg("Starting watch")
	return e.Run(ctx)
}
