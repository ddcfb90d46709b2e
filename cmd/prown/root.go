package prown

import (
	"fmt"
	"os"

	"github.com/arthur-debert/prown/internal/version"
	"github.com/arthur-debert/prown/pkg/config"
	"github.com/arthur-debert/prown/pkg/display"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/paths"
	"github.com/arthur-debert/prown/pkg/projects"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ExitCodeError asks main to exit with Code without printing anything.
// It carries the exit status of a command run by `prown run`.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// rootOptions holds the global flags.
type rootOptions struct {
	verbosity  int
	format     string
	configFile string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "prown",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newGotoCmd(opts))
	rootCmd.AddCommand(newForgetCmd(opts))
	rootCmd.AddCommand(newShellInitCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	installTopics(rootCmd)
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// initPaths resolves the project root from the working directory
func initPaths() (paths.Paths, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, MsgErrInitPaths)
	}
	if p.UsedFallback() {
		log.Debug().Str("root", p.ProjectRoot()).Msgf(MsgFallbackWarning, p.ProjectRoot())
	}
	return p, nil
}

func (o *rootOptions) settings(overrides map[string]interface{}) (*config.Settings, error) {
	s, err := config.LoadWithOverrides(o.configFile, overrides)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrConfigLoad) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrConfigLoad, MsgErrLoadSettings)
	}
	return s, nil
}

// renderer builds a renderer for the command's output, resolving the auto
// format against the terminal.
func (o *rootOptions) renderer(cmd *cobra.Command) (*display.Renderer, error) {
	format, err := display.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		format = format.Resolve(f)
	}
	return display.NewRenderer(cmd.OutOrStdout(), format), nil
}

func loadProjects(p paths.Paths) (*projects.List, error) {
	return projects.Load(p.ProjectsFilePath())
}

// projectNamesCompletion provides shell completion for registered project names
func projectNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	p, err := initPaths()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	list, err := loadProjects(p)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, e := range list.Entries() {
		names = append(names, e.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// commandNamesCompletion completes the command names of the current descriptor
func commandNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	proj, err := openCurrentProject()
	if err != nil || !proj.HasDescriptor() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return proj.Descriptor().Commands(), cobra.ShellCompDirectiveNoFileComp
}
