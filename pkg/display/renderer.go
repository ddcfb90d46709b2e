package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/prown/pkg/descriptor"
	"github.com/arthur-debert/prown/pkg/engine"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/projects"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Renderer writes results to an output in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer. FormatAuto is treated as FormatText;
// resolve it against the output file first.
func NewRenderer(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatText
	}
	setStyling(format == FormatTerminal)
	return &Renderer{w: w, format: format}
}

// Format returns the renderer's format.
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) structured(v interface{}) (bool, error) {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return true, errors.Wrap(err, errors.ErrIO, "cannot write JSON output")
		}
		return true, nil
	case FormatYAML:
		encoder := yaml.NewEncoder(r.w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return true, errors.Wrap(err, errors.ErrIO, "cannot write YAML output")
		}
		if err := encoder.Close(); err != nil {
			return true, errors.Wrap(err, errors.ErrIO, "cannot write YAML output")
		}
		return true, nil
	}
	return false, nil
}

func (r *Renderer) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return errors.Wrap(err, errors.ErrIO, "cannot write output")
	}
	return nil
}

// Describe renders a descriptor summary.
func (r *Renderer) Describe(s descriptor.Summary) error {
	if done, err := r.structured(s); done {
		return err
	}

	var out strings.Builder
	out.WriteString(TitleStyle.Sprint("Descriptor") + " " + PathStyle.Sprint(s.Path) + "\n\n")

	out.WriteString(TitleStyle.Sprint("Modules") + "\n")
	if len(s.Modules) == 0 {
		out.WriteString(indent(MutedStyle.Sprint("(none)"), 1) + "\n")
	}
	for _, m := range s.Modules {
		out.WriteString(indent(ModuleStyle.Sprint(m.Name), 1) + "\n")
		out.WriteString(indent("change: "+listOrNone(m.Change), 2) + "\n")
		out.WriteString(indent("run:    "+listOrNone(m.Run), 2) + "\n")
	}

	out.WriteString("\n" + TitleStyle.Sprint("Commands") + "\n")
	if len(s.Commands) == 0 {
		out.WriteString(indent(MutedStyle.Sprint("(none)"), 1) + "\n")
	} else {
		data := make(pterm.TableData, 0, len(s.Commands))
		for _, c := range s.Commands {
			data = append(data, []string{ModuleStyle.Sprint(c.Name), CommandStyle.Sprint(c.Run)})
		}
		table, err := pterm.DefaultTable.WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot render command table")
		}
		out.WriteString(indent(table, 1) + "\n")
	}
	return r.write(out.String())
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return MutedStyle.Sprint("(none)")
	}
	return strings.Join(items, ", ")
}

// ProjectRow is one line of the project listing.
type ProjectRow struct {
	Name          string   `json:"name" yaml:"name"`
	Path          string   `json:"path" yaml:"path"`
	HasDescriptor bool     `json:"has_descriptor" yaml:"has_descriptor"`
	Commands      []string `json:"commands" yaml:"commands"`
}

// RowFor builds a listing row for a registered project.
func RowFor(entry projects.Entry, d *descriptor.Descriptor) ProjectRow {
	row := ProjectRow{Name: entry.Name, Path: entry.Path, Commands: []string{}}
	if d != nil {
		row.HasDescriptor = true
		row.Commands = d.Commands()
	}
	return row
}

// Projects renders the registered project list.
func (r *Renderer) Projects(rows []ProjectRow) error {
	if done, err := r.structured(rows); done {
		return err
	}
	if len(rows) == 0 {
		return r.write("No registered projects. Run `prown init` in a project to add it.\n")
	}

	data := pterm.TableData{{"Name", "Path", "Commands"}}
	for _, row := range rows {
		commands := strings.Join(row.Commands, ", ")
		if !row.HasDescriptor {
			commands = MutedStyle.Sprint("(no descriptor)")
		}
		data = append(data, []string{ModuleStyle.Sprint(row.Name), PathStyle.Sprint(row.Path), commands})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot render project table")
	}
	return r.write(table + "\n")
}

// RunResult is the outcome of `prown run` in one project.
type RunResult struct {
	Project  string `json:"project" yaml:"project"`
	Command  string `json:"command" yaml:"command"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run renders run results.
func (r *Renderer) Run(results []RunResult) error {
	if done, err := r.structured(results); done {
		return err
	}

	var out strings.Builder
	for _, res := range results {
		switch {
		case res.Error != "":
			fmt.Fprintf(&out, "%s %s %s: %s\n", ErrorStyle.Sprint(ErrorIndicator),
				ModuleStyle.Sprint(res.Project), res.Command, res.Error)
		case res.ExitCode != 0:
			fmt.Fprintf(&out, "%s %s %s exited with %d\n", ErrorStyle.Sprint(ErrorIndicator),
				ModuleStyle.Sprint(res.Project), res.Command, res.ExitCode)
		default:
			fmt.Fprintf(&out, "%s %s %s\n", SuccessStyle.Sprint(SuccessIndicator),
				ModuleStyle.Sprint(res.Project), res.Command)
		}
	}
	return r.write(out.String())
}

// Pass renders one dispatch pass of the watch loop. Passes that matched no
// module are not shown.
func (r *Renderer) Pass(project string, pass engine.Pass) error {
	if len(pass.Modules) == 0 {
		return nil
	}
	if r.format == FormatJSON || r.format == FormatYAML {
		_, err := r.structured(passView(project, pass))
		return err
	}

	var out strings.Builder
	indicator := SuccessStyle.Sprint(SuccessIndicator)
	if pass.Failures() > 0 {
		indicator = ErrorStyle.Sprint(ErrorIndicator)
	}
	fmt.Fprintf(&out, "%s %s %s %s\n", indicator, ModuleStyle.Sprint(project),
		PathStyle.Sprint(pass.Path), MutedStyle.Sprint("["+strings.Join(pass.Modules, ", ")+"]"))

	for _, res := range pass.Results {
		line := res.Command
		switch {
		case res.Err != nil:
			line = fmt.Sprintf("%s %s: %s", ErrorStyle.Sprint(ErrorIndicator), line, errors.UserMessage(res.Err))
		case res.ExitCode != 0:
			line = fmt.Sprintf("%s %s %s", ErrorStyle.Sprint(ErrorIndicator), line, MutedStyle.Sprintf("(exit %d)", res.ExitCode))
		default:
			line = fmt.Sprintf("%s %s", MutedStyle.Sprint(NeutralIndicator), line)
		}
		out.WriteString(indent(line, 1) + "\n")
	}
	return r.write(out.String())
}

type passOutcome struct {
	Module   string `json:"module" yaml:"module"`
	Command  string `json:"command" yaml:"command"`
	ExitCode int    `json:"exit_code" yaml:"exit_code"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type passRecord struct {
	Project string        `json:"project" yaml:"project"`
	Path    string        `json:"path" yaml:"path"`
	Kind    string        `json:"kind" yaml:"kind"`
	Modules []string      `json:"modules" yaml:"modules"`
	Results []passOutcome `json:"results" yaml:"results"`
}

func passView(project string, pass engine.Pass) passRecord {
	rec := passRecord{
		Project: project,
		Path:    pass.Path,
		Kind:    pass.Kind.String(),
		Modules: pass.Modules,
		Results: make([]passOutcome, 0, len(pass.Results)),
	}
	for _, res := range pass.Results {
		o := passOutcome{Module: res.Module, Command: res.Command, ExitCode: res.ExitCode}
		if res.Err != nil {
			o.Error = errors.UserMessage(res.Err)
		}
		rec.Results = append(rec.Results, o)
	}
	return rec
}
