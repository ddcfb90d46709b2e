package descriptor

import (
	"context"
	"sort"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/arthur-debert/prown/pkg/logging"
)

// Commands returns the names of the registered commands, sorted.
func (d *Descriptor) Commands() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Command returns the raw command string registered under name.
func (d *Descriptor) Command(name string) (string, bool) {
	raw, ok := d.commands[name]
	return raw, ok
}

// Run executes the named command and returns its exit code. A non-zero exit
// code is not an error.
func (d *Descriptor) Run(ctx context.Context, name string, runner executor.Runner) (int, error) {
	logger := logging.GetLogger("descriptor")

	raw, ok := d.commands[name]
	if !ok {
		return -1, errors.Newf(errors.ErrMissingCommand, "there is no `%s` command in %s", name, d.path).
			WithDetail("command", name).
			WithDetail("path", d.path).
			WithHint("add `%s = \"<command>\"` under [commands] in %s", name, d.path)
	}

	logger.Info().Str("command", name).Str("raw", raw).Msg("Running command")
	result, err := runner.Run(ctx, raw)
	if err != nil {
		return result.ExitCode, err
	}
	return result.ExitCode, nil
}
