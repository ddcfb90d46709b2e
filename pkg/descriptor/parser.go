package descriptor

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/module"
)

const (
	sectionCommands = "commands"
	sectionCommand  = "command"

	keyChange  = "change"
	keyChanges = "changes"
	keyRun     = "run"
)

// Parse builds a descriptor from a TOML document. path is only used in
// error messages and by Path.
func Parse(data []byte, path string) (*Descriptor, error) {
	var doc map[string]interface{}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformed, "%s is not a valid TOML document", path).
			WithDetail("path", path)
	}

	sections, keys := documentOrder(md)

	d := &Descriptor{
		path:     path,
		commands: make(map[string]string),
	}

	for _, name := range sections {
		table, ok := doc[name].(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrNotATable, "`%s` in %s is not a table", name, path).
				WithDetail("section", name).
				WithDetail("path", path).
				WithHint("replace it with [%s]", name)
		}

		if isCommandSection(name) {
			if len(d.commands) > 0 {
				continue
			}
			if err := parseCommands(d.commands, name, table, keys[name], path); err != nil {
				return nil, err
			}
			continue
		}

		m, err := parseModule(name, table, keys[name], path)
		if err != nil {
			return nil, err
		}
		d.modules = append(d.modules, m)
	}

	return d, nil
}

func isCommandSection(name string) bool {
	return name == sectionCommands || name == sectionCommand
}

// documentOrder lists top-level sections and the keys of each section in the
// order they appear in the document.
func documentOrder(md toml.MetaData) ([]string, map[string][]string) {
	var sections []string
	keys := make(map[string][]string)
	seen := make(map[string]bool)

	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		section := key[0]
		if !seen[section] {
			seen[section] = true
			sections = append(sections, section)
		}
		if len(key) == 2 {
			keys[section] = appendUnique(keys[section], key[1])
		}
	}
	return sections, keys
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func parseCommands(into map[string]string, section string, table map[string]interface{}, order []string, path string) error {
	for _, name := range order {
		raw, ok := table[name].(string)
		if !ok {
			return errors.Newf(errors.ErrInvalidValue,
				"command `%s` in [%s] of %s must be a string, got %s", name, section, path, describeValue(table[name])).
				WithDetail("section", section).
				WithDetail("key", name).
				WithDetail("path", path).
				WithHint("write it as %s = \"<command>\"", name)
		}
		into[name] = raw
	}
	return nil
}

func parseModule(name string, table map[string]interface{}, order []string, path string) (*module.Module, error) {
	m := module.New(name)

	for _, key := range order {
		switch key {
		case keyChange, keyChanges:
			globs, err := stringList(table[key], name, key, path)
			if err != nil {
				return nil, err
			}
			if err := m.AddChange(globs...); err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidPattern, "bad pattern in %s", path).
					WithDetail("section", name).
					WithDetail("path", path)
			}
		case keyRun:
			commands, err := stringList(table[key], name, key, path)
			if err != nil {
				return nil, err
			}
			m.SetRun(commands)
		default:
			return nil, errors.Newf(errors.ErrUnsupportedDirective,
				"unsupported directive `%s` in module `%s` of %s", key, name, path).
				WithDetail("section", name).
				WithDetail("key", key).
				WithDetail("path", path).
				WithHint("a module only accepts change, changes and run")
		}
	}
	return m, nil
}

// stringList accepts a string or an array of strings. A single string is
// promoted to a one-element list.
func stringList(value interface{}, section, key, path string) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, invalidValue(section, key, path,
					fmt.Sprintf("element %d is %s", i, describeValue(item)))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalidValue(section, key, path, "got "+describeValue(value))
	}
}

func invalidValue(section, key, path, reason string) error {
	return errors.Newf(errors.ErrInvalidValue,
		"`%s` in module `%s` of %s must be a string or a list of strings, %s", key, section, path, reason).
		WithDetail("section", section).
		WithDetail("key", key).
		WithDetail("path", path).
		WithHint("write it as %s = \"...\" or %s = [\"...\", \"...\"]", key, key)
}

func describeValue(v interface{}) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int64, float64:
		return "a number"
	case []interface{}, []map[string]interface{}:
		return "an array"
	case map[string]interface{}:
		return "a table"
	default:
		return fmt.Sprintf("a %T", v)
	}
}
