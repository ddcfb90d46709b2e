package prown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/arthur-debert/prown/internal/version"
	"github.com/arthur-debert/prown/pkg/config"
	"github.com/arthur-debert/prown/pkg/descriptor"
	"github.com/arthur-debert/prown/pkg/display"
	"github.com/arthur-debert/prown/pkg/engine"
	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/executor"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/project"
	"github.com/arthur-debert/prown/pkg/projects"
	"github.com/arthur-debert/prown/pkg/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"golang.org/x/sync/errgroup"
)

func openCurrentProject() (*project.Project, error) {
	p, err := initPaths()
	if err != nil {
		return nil, err
	}
	return project.Open(p.ProjectRoot())
}

// execFlags are the flags shared by commands that run project commands.
type execFlags struct {
	all     bool
	dryRun  bool
	timeout time.Duration
}

func (f *execFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.all, "all", false, MsgFlagAll)
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, MsgFlagTimeout)
}

func (f *execFlags) overrides(cmd *cobra.Command) map[string]interface{} {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("timeout") {
		overrides["exec.timeout"] = f.timeout.String()
	}
	return overrides
}

// registeredProjects opens every registered project that has a descriptor.
// Projects that are gone or fail to parse are skipped with a warning.
func registeredProjects() ([]*project.Project, error) {
	p, err := initPaths()
	if err != nil {
		return nil, err
	}
	list, err := loadProjects(p)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("cmd")
	var out []*project.Project
	for _, entry := range list.Entries() {
		proj, err := project.Open(entry.Path)
		if err != nil {
			logger.Warn().Err(err).Str("project", entry.Name).Msg("Skipping project")
			continue
		}
		if !proj.HasDescriptor() {
			logger.Debug().Str("project", entry.Name).Msg("Skipping project without descriptor")
			continue
		}
		out = append(out, proj)
	}
	return out, nil
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "init [path]",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Example: MsgInitExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			p, err := initPaths()
			if err != nil {
				return err
			}
			list, err := loadProjects(p)
			if err != nil {
				return err
			}

			proj, created, err := project.Init(dir, list)
			if proj == nil {
				return err
			}

			out := cmd.OutOrStdout()
			if created {
				_, _ = fmt.Fprintf(out, MsgDescriptorCreated, proj.DescriptorPath())
			} else {
				_, _ = fmt.Fprintf(out, MsgDescriptorExists, proj.DescriptorPath())
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, MsgProjectRegistered, proj.Name())
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		flags    execFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		Example: MsgWatchExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.overrides(cmd)
			if cmd.Flags().Changed("debounce") {
				overrides["watch.debounce"] = debounce.String()
			}
			settings, err := opts.settings(overrides)
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}

			var targets []*project.Project
			if flags.all {
				if targets, err = registeredProjects(); err != nil {
					return err
				}
				if len(targets) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), MsgNothingToWatch)
					return nil
				}
			} else {
				proj, err := openCurrentProject()
				if err != nil {
					return err
				}
				if err := proj.RequireDescriptor(); err != nil {
					return err
				}
				targets = []*project.Project{proj}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Passes from different projects are rendered one at a time.
			var mu sync.Mutex
			g, ctx := errgroup.WithContext(ctx)
			for _, proj := range targets {
				proj := proj // per-iteration copy (go 1.21 loop semantics)
				ex := proj.Executor(settings, executor.Options{
					Stdout: cmd.OutOrStdout(),
					Stderr: cmd.ErrOrStderr(),
					DryRun: flags.dryRun,
				})
				onPass := func(pass engine.Pass) {
					mu.Lock()
					defer mu.Unlock()
					if err := renderer.Pass(proj.Name(), pass); err != nil {
						log.Warn().Err(err).Msg("Cannot render pass")
					}
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgWatching, proj.Dir())
				g.Go(func() error {
					return proj.Watch(ctx, settings, ex, onPass)
				})
			}
			return g.Wait()
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, MsgFlagDebounce)
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var flags execFlags

	cmd := &cobra.Command{
		Use:               "run <command>",
		Short:             MsgRunShort,
		Long:              MsgRunLong,
		Example:           MsgRunExample,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: commandNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			settings, err := opts.settings(flags.overrides(cmd))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			execOpts := executor.Options{
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
				DryRun: flags.dryRun,
			}

			if !flags.all {
				proj, err := openCurrentProject()
				if err != nil {
					return err
				}
				code, err := proj.Run(ctx, name, proj.Executor(settings, execOpts))
				if err != nil {
					return err
				}
				if code != 0 {
					return &ExitCodeError{Code: code}
				}
				return nil
			}

			return runEverywhere(ctx, opts, cmd, name, settings, execOpts)
		},
	}

	flags.register(cmd)
	return cmd
}

func runEverywhere(ctx context.Context, opts *rootOptions, cmd *cobra.Command, name string, settings *config.Settings, execOpts executor.Options) error {
	renderer, err := opts.renderer(cmd)
	if err != nil {
		return err
	}
	targets, err := registeredProjects()
	if err != nil {
		return err
	}

	var results []display.RunResult
	failed := false
	for _, proj := range targets {
		if _, ok := proj.Descriptor().Command(name); !ok {
			continue
		}
		res := display.RunResult{Project: proj.Name(), Command: name}
		code, err := proj.Run(ctx, name, proj.Executor(settings, execOpts))
		res.ExitCode = code
		if err != nil {
			res.Error = errors.UserMessage(err)
		}
		if err != nil || code != 0 {
			failed = true
		}
		results = append(results, res)
		if ctx.Err() != nil {
			break
		}
	}

	if len(results) == 0 {
		return errors.Newf(errors.ErrMissingCommand, "no registered project defines `%s`", name).
			WithDetail("command", name).
			WithHint("run `prown list` to see registered projects and their commands")
	}
	if err := renderer.Run(results); err != nil {
		return err
	}
	if failed {
		return &ExitCodeError{Code: 1}
	}
	return nil
}

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "describe",
		Short:   MsgDescribeShort,
		Long:    MsgDescribeLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			proj, err := openCurrentProject()
			if err != nil {
				return err
			}
			if err := proj.RequireDescriptor(); err != nil {
				return err
			}
			return renderer.Describe(descriptor.Describe(proj.Descriptor()))
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			p, err := initPaths()
			if err != nil {
				return err
			}
			list, err := loadProjects(p)
			if err != nil {
				return err
			}

			rows := make([]display.ProjectRow, 0, len(list.Entries()))
			for _, entry := range list.Entries() {
				proj, err := project.Open(entry.Path)
				if err != nil {
					log.Warn().Err(err).Str("project", entry.Name).Msg("Cannot open project")
					rows = append(rows, display.RowFor(entry, nil))
					continue
				}
				rows = append(rows, display.RowFor(entry, proj.Descriptor()))
			}
			return renderer.Projects(rows)
		},
	}
}

func newGotoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "goto <project>",
		Short:             MsgGotoShort,
		Long:              MsgGotoLong,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: projectNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := initPaths()
			if err != nil {
				return err
			}
			list, err := loadProjects(p)
			if err != nil {
				return err
			}
			entry, err := list.Find(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), entry.Path)
			return nil
		},
	}
}

func newForgetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "forget <project>",
		Short:             MsgForgetShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: projectNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := initPaths()
			if err != nil {
				return err
			}
			list, err := loadProjects(p)
			if err != nil {
				return err
			}

			key := args[0]
			removed := list.Remove(key)
			if !removed {
				// Accept a directory as well as a name.
				if canonical, err := projects.Canonical(key); err == nil {
					removed = list.Remove(canonical)
				}
			}
			if !removed {
				_, err := list.Find(key)
				return err
			}
			if err := list.Save(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgProjectForgotten, key)
			return nil
		},
	}
}

func newShellInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "shell-init <shell>",
		Short:     MsgShellInitShort,
		Long:      MsgShellInitLong,
		Example:   MsgShellInitExample,
		GroupID:   "misc",
		ValidArgs: shell.Shells(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := shell.Snippet(args[0], cmd.Root().Name())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), snippet)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "PROWN",
				Section: "1",
				Source:  "prown " + version.Version,
				Manual:  "prown manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
