// Package shell emits the shell functions that let `prown goto` change the
// current directory of an interactive shell.
package shell

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/prown/pkg/errors"
)

// FunctionName is the name of the shell function the snippets define.
const FunctionName = "pcd"

var snippets = map[string]string{
	"bash": posixSnippet,
	"zsh":  posixSnippet,
	"fish": fishSnippet,
}

const posixSnippet = `# prown shell integration
%[1]s() {
    local dir
    dir="$(%[2]s goto "$1")" || return
    cd "$dir"
}
`

const fishSnippet = `# prown shell integration
function %[1]s
    set -l dir (%[2]s goto $argv[1]); or return
    cd $dir
end
`

// Shells returns the supported shell names.
func Shells() []string {
	names := make([]string, 0, len(snippets))
	for name := range snippets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snippet returns the integration code for shell. program is the command used
// to call prown from the function body.
func Snippet(shell, program string) (string, error) {
	tmpl, ok := snippets[shell]
	if !ok {
		return "", errors.Newf(errors.ErrInvalidInput, "unsupported shell %q", shell).
			WithDetail("shell", shell).
			WithHint("use one of %s", strings.Join(Shells(), ", "))
	}
	return fmt.Sprintf(tmpl, FunctionName, program), nil
}
