// Package projects keeps the list of registered prown projects.
//
// The list lives in $XDG_CONFIG_HOME/prown/projects.toml:
//
//	[[project]]
//	name = "api"
//	path = "/home/me/src/api"
package projects

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	toml "github.com/pelletier/go-toml/v2"
)

// Entry is one registered project.
type Entry struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type document struct {
	Projects []Entry `toml:"project"`
}

// List is the registered project list backed by a file.
type List struct {
	path    string
	entries []Entry
}

// Load reads the list at path. A missing file yields an empty list.
func Load(path string) (*List, error) {
	l := &List{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot read project list %s", path).
			WithDetail("path", path)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformed, "cannot parse project list %s", path).
			WithDetail("path", path).
			WithHint("fix or delete %s", path)
	}
	l.entries = doc.Projects

	logger := logging.GetLogger("projects")
	logger.Debug().Str("path", path).Int("projects", len(l.entries)).Msg("Loaded project list")
	return l, nil
}

// Path returns the file backing the list.
func (l *List) Path() string {
	return l.path
}

// Entries returns the registered projects in registration order.
func (l *List) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Add registers dir under its canonical absolute path. It reports false
// when the directory is already registered.
func (l *List) Add(dir string) (Entry, bool, error) {
	canonical, err := Canonical(dir)
	if err != nil {
		return Entry{}, false, err
	}

	for _, e := range l.entries {
		if e.Path == canonical {
			return e, false, nil
		}
	}

	entry := Entry{Name: filepath.Base(canonical), Path: canonical}
	l.entries = append(l.entries, entry)
	logger := logging.GetLogger("projects")
	logger.Info().Str("name", entry.Name).Str("path", entry.Path).Msg("Registered project")
	return entry, true, nil
}

// Remove unregisters every entry whose name or path equals key.
func (l *List) Remove(key string) bool {
	kept := l.entries[:0]
	removed := false
	for _, e := range l.entries {
		if e.Name == key || e.Path == key {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	return removed
}

// Find returns the first project registered under name.
func (l *List) Find(name string) (Entry, error) {
	for _, e := range l.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, errors.Newf(errors.ErrProjectNotFound, "no project named `%s`", name).
		WithDetail("name", name).
		WithHint("run `prown list` to see registered projects")
}

// Save writes the list, creating the parent directory when needed.
func (l *List) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot create %s", filepath.Dir(l.path))
	}

	data, err := toml.Marshal(document{Projects: l.entries})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode project list")
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot write %s", tmp)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "cannot replace %s", l.path)
	}
	return nil
}

// Canonical returns the absolute, symlink-free form of dir.
func Canonical(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "cannot resolve %s", dir)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "cannot resolve %s", dir).
			WithDetail("path", dir)
	}
	return resolved, nil
}
