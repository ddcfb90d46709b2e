package display

import (
	"strings"

	"github.com/pterm/pterm"
)

// Indicators
const (
	SuccessIndicator = "✓"
	ErrorIndicator   = "✗"
	NeutralIndicator = "•"
)

var (
	TitleStyle   = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	ModuleStyle  = pterm.NewStyle(pterm.Bold)
	PathStyle    = pterm.NewStyle(pterm.FgBlue)
	CommandStyle = pterm.NewStyle(pterm.FgDefault)
	MutedStyle   = pterm.NewStyle(pterm.FgGray)
	SuccessStyle = pterm.NewStyle(pterm.FgGreen)
	ErrorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
)

// setStyling turns pterm styling on or off for the whole process.
func setStyling(enabled bool) {
	if enabled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}
}

// indent prefixes every line of s with level*2 spaces.
func indent(s string, level int) string {
	prefix := strings.Repeat("  ", level)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
