package module

import (
	stderrors "errors"

	"github.com/arthur-debert/prown/pkg/errors"
)

// Module is a named group of change patterns and an ordered run list.
type Module struct {
	name     string
	patterns []Pattern
	run      []string
}

// New creates an empty module.
func New(name string) *Module {
	return &Module{name: name}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// AddChange compiles and appends change patterns.
// The first invalid glob aborts and nothing from this call is kept.
func (m *Module) AddChange(globs ...string) error {
	compiled := make([]Pattern, 0, len(globs))
	for _, glob := range globs {
		p, err := NewPattern(glob)
		if err != nil {
			var prownErr *errors.PrownError
			if stderrors.As(err, &prownErr) {
				prownErr.Message = prownErr.Message + " in module `" + m.name + "`"
				prownErr.WithDetail("module", m.name)
			}
			return err
		}
		compiled = append(compiled, p)
	}
	m.patterns = append(m.patterns, compiled...)
	return nil
}

// SetRun replaces the run list.
func (m *Module) SetRun(commands []string) {
	m.run = append([]string(nil), commands...)
}

// Patterns returns the compiled change patterns in declaration order.
func (m *Module) Patterns() []Pattern {
	return append([]Pattern(nil), m.patterns...)
}

// RunCommands returns the raw commands in declaration order.
func (m *Module) RunCommands() []string {
	return append([]string(nil), m.run...)
}

// Matches reports whether any change pattern matches path.
// A module without patterns never matches.
func (m *Module) Matches(path string) bool {
	for _, p := range m.patterns {
		if p.Matches(path) {
			return true
		}
	}
	return false
}
