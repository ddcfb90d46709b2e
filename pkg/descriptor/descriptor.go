package descriptor

import (
	"os"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/module"
)

// Descriptor is a parsed project descriptor. It is not modified after
// parsing.
type Descriptor struct {
	path     string
	modules  []*module.Module
	commands map[string]string
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Descriptor, error) {
	logger := logging.GetLogger("descriptor")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrMissingDescriptor, "no descriptor at %s", path).
				WithDetail("path", path).
				WithHint("run `prown init` to create one")
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot read %s", path).
			WithDetail("path", path)
	}

	d, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("modules", len(d.modules)).
		Int("commands", len(d.commands)).
		Msg("Descriptor loaded")
	return d, nil
}

// Path returns the file the descriptor was read from.
func (d *Descriptor) Path() string {
	return d.path
}

// Modules returns the modules in document order.
func (d *Descriptor) Modules() []*module.Module {
	out := make([]*module.Module, len(d.modules))
	copy(out, d.modules)
	return out
}

// Module looks a module up by name. When several modules share a name the
// last one in the document is returned.
func (d *Descriptor) Module(name string) (*module.Module, bool) {
	for i := len(d.modules) - 1; i >= 0; i-- {
		if d.modules[i].Name() == name {
			return d.modules[i], true
		}
	}
	return nil, false
}
