package descriptor

// Summary is a serializable view of a descriptor.
type Summary struct {
	Path     string           `yaml:"path" json:"path"`
	Modules  []ModuleSummary  `yaml:"modules" json:"modules"`
	Commands []CommandSummary `yaml:"commands" json:"commands"`
}

// ModuleSummary describes one module.
type ModuleSummary struct {
	Name   string   `yaml:"name" json:"name"`
	Change []string `yaml:"change" json:"change"`
	Run    []string `yaml:"run" json:"run"`
}

// CommandSummary describes one registered command.
type CommandSummary struct {
	Name string `yaml:"name" json:"name"`
	Run  string `yaml:"run" json:"run"`
}

// Describe summarizes d. Modules keep document order and commands are sorted
// by name.
func Describe(d *Descriptor) Summary {
	s := Summary{
		Path:     d.path,
		Modules:  make([]ModuleSummary, 0, len(d.modules)),
		Commands: make([]CommandSummary, 0, len(d.commands)),
	}

	for _, m := range d.modules {
		patterns := m.Patterns()
		change := make([]string, 0, len(patterns))
		for _, p := range patterns {
			change = append(change, p.String())
		}
		s.Modules = append(s.Modules, ModuleSummary{
			Name:   m.Name(),
			Change: change,
			Run:    m.RunCommands(),
		})
	}

	for _, name := range d.Commands() {
		s.Commands = append(s.Commands, CommandSummary{Name: name, Run: d.commands[name]})
	}
	return s
}
