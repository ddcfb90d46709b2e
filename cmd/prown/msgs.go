package prown

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Watch a project and run commands when files change"
	MsgInitShort       = "Create a .prown.toml descriptor and register the project"
	MsgWatchShort      = "Run module commands when matching files change"
	MsgRunShort        = "Run a named command from the descriptor"
	MsgListShort       = "List registered projects"
	MsgGotoShort       = "Print the directory of a registered project"
	MsgForgetShort     = "Remove a project from the registered list"
	MsgShellInitShort  = "Print the pcd shell function for changing into a project"
	MsgDescribeShort   = "Show the modules and commands of the descriptor"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Status messages
	MsgDescriptorCreated = "Created %s\n"
	MsgDescriptorExists  = "%s already exists, left untouched\n"
	MsgProjectRegistered = "Registered project %s\n"
	MsgProjectForgotten  = "Forgot project %s\n"
	MsgNothingToWatch    = "No registered project has a descriptor."
	MsgWatching          = "Watching %s (Ctrl-C to stop)\n"
	MsgVersionFormat     = "prown version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrInitPaths    = "failed to initialize paths"
	MsgErrLoadSettings = "failed to load settings"
	MsgErrNoCommand    = "no command specified"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat   = "Output format: auto, term, text, json or yaml"
	MsgFlagConfig   = "Settings file (default $XDG_CONFIG_HOME/prown/config.toml)"
	MsgFlagAll      = "Apply to every registered project"
	MsgFlagDebounce = "Override watch.debounce for this session"
	MsgFlagTimeout  = "Override exec.timeout for this session"
	MsgFlagDryRun   = "Print commands instead of running them"

	// Debug messages
	MsgFallbackWarning = "No .prown.toml found above the current directory, using %s"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/init-example.txt
	msgInitExampleRaw string
	MsgInitExample    = strings.TrimRight(msgInitExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/watch-example.txt
	msgWatchExampleRaw string
	MsgWatchExample    = strings.TrimRight(msgWatchExampleRaw, "\n")

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/run-example.txt
	msgRunExampleRaw string
	MsgRunExample    = strings.TrimRight(msgRunExampleRaw, "\n")

	//go:embed msgs/describe-long.txt
	msgDescribeLongRaw string
	MsgDescribeLong    = strings.TrimSpace(msgDescribeLongRaw)

	//go:embed msgs/goto-long.txt
	msgGotoLongRaw string
	MsgGotoLong    = strings.TrimSpace(msgGotoLongRaw)

	//go:embed msgs/shell-init-long.txt
	msgShellInitLongRaw string
	MsgShellInitLong    = strings.TrimSpace(msgShellInitLongRaw)

	//go:embed msgs/shell-init-example.txt
	msgShellInitExampleRaw string
	MsgShellInitExample    = strings.TrimRight(msgShellInitExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
