// Package cli implements the change-tag-push command line.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/editor"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/errors"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/progress"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/version"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/workflow"
)

// environment is the process boundary of a command run.
type environment struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	getwd  func() (string, error)
	// editor overrides the configured editor when set.
	editor editor.Editor
	caps   func() progress.TerminalCapabilities
}

func processEnvironment() *environment {
	return &environment{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
		getwd:  os.Getwd,
		caps:   progress.DetectTerminalCapabilities,
	}
}

// releaseFlags holds the flags of the root command.
type releaseFlags struct {
	allowDirty bool
	since      string
	existing   bool
	date       string
	noPush     bool
	yes        bool
	dryRun     bool
	debug      bool
	configPath string
	file       string
	remote     string
	dir        string
}

var rootCmd = newRootCmd(processEnvironment())

func newRootCmd(env *environment) *cobra.Command {
	flags := &releaseFlags{}

	cmd := &cobra.Command{
		Use:   "change-tag-push <version|major|minor|patch|trial|current|next>",
		Short: "Update the changelog, tag the release, and push",
		Long: `Update the changelog from git history, tag the release, and push it.

change-tag-push collects the commits made since the changelog was last
committed, adds them to the section of the requested release, opens the
file in your editor, shows the diff, and after confirmation commits the
changelog, creates an annotated tag, and pushes both.

The version argument is either an explicit version (v1.2.3 or v1.2.3.4),
a bump relative to the latest release (major, minor, patch, trial), the
latest release itself (current), or the unreleased section (next).

Configuration precedence (highest to lowest):
  1. Command line flags
  2. Environment variables (CTP_*)
  3. Project config (.change-tag-push.yml or .change-tag-push.json)
  4. User config (~/.config/change-tag-push/config.yml)
  5. Built-in defaults`,
		Example: `  # Release the next minor version
  change-tag-push minor

  # Collect changes under the unreleased section
  change-tag-push next

  # Add late changes to the latest release, without pushing
  change-tag-push current --no-push

  # Preview a release without touching anything
  change-tag-push patch --dry-run

  # Release an explicit version, dated from a template
  change-tag-push v2.0.0 --date "%Y-%m-%d %H:%M"`,
		Args:          releaseArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version.Get().Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context(), env, flags, args[0])
		},
	}
	cmd.SetIn(env.in)
	cmd.SetOut(env.out)
	cmd.SetErr(env.errOut)
	cmd.SetVersionTemplate(version.Get().String())
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.NewArgumentErrorWithUsage(err.Error(), errors.Usage, "See: change-tag-push --help")
	})

	f := cmd.Flags()
	f.BoolVar(&flags.allowDirty, "allow-dirty", false, "Allow uncommitted changes in the working tree")
	f.StringVar(&flags.since, "since", "", "Collect changes since this commit or tag (default: last changelog commit)")
	f.BoolVar(&flags.existing, "existing", false, "Require the release to already be in the changelog")
	f.StringVar(&flags.date, "date", "", `Release date: "today", a literal, or a strftime template`)
	f.BoolVar(&flags.noPush, "no-push", false, "Commit and tag but do not push")
	f.BoolVarP(&flags.yes, "yes", "y", false, "Answer yes to every confirmation")
	f.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show the changelog changes without writing anything")
	f.StringVarP(&flags.file, "file", "f", "", "Changelog file (default: changelog_file from config)")
	f.StringVar(&flags.remote, "remote", "", "Remote to push to (default: remote from config)")

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.StringVarP(&flags.configPath, "config", "c", "", "Project config file (default: .change-tag-push.yml)")
	pf.StringVarP(&flags.dir, "chdir", "C", "", "Run as if started in this directory")

	cmd.AddCommand(newConfigCmd(env, flags))
	return cmd
}

func releaseArgs(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return errors.MissingVersionArgument()
	case len(args) > 1:
		return errors.NewArgumentErrorWithUsage(
			fmt.Sprintf("expected one version argument, got %d", len(args)),
			errors.Usage,
			"Pass a single version or keyword",
		)
	}
	return nil
}

// Execute runs the root command and reports any error on stderr.
// Use ExitCode to turn the returned error into a process exit code.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// A second interrupt terminates the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	err := rootCmd.ExecuteContext(ctx)
	reportError(rootCmd.ErrOrStderr(), err)
	return err
}

// reportError prints err for the operator. A declined confirmation or an
// interrupt is not an error and prints a plain line.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if workflow.IsAborted(err) {
		fmt.Fprintln(w, "Aborted.")
		return
	}
	if stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Interrupted.")
		return
	}
	errors.FprintError(w, errors.FromError(err))
}

// newLogger builds the process logger: production settings at warn level,
// development settings at debug level with --debug.
func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (f *releaseFlags) workingDir(env *environment) (string, error) {
	if f.dir != "" {
		return f.dir, nil
	}
	return env.getwd()
}
