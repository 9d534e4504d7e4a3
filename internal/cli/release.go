package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/config"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/editor"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/git"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/lifecycle"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/progress"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/prompt"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/release"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/workflow"
)

// session is an opened repository with its effective configuration.
type session struct {
	repo   *git.Repository
	cfg    *config.Configuration
	logger *zap.Logger
	// path is the changelog on disk; relPath is the same file relative to the repository root.
	path    string
	relPath string
}

// openSession finds the repository around the working directory, loads the
// configuration from its root, and applies flag overrides.
func openSession(env *environment, flags *releaseFlags) (*session, error) {
	logger, err := newLogger(flags.debug)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		git.SetDebugLogger(logger.Sugar().Debugf)
	}

	dir, err := flags.workingDir(env)
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	repo, err := git.Open(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectDir:        repo.Root(),
		ProjectConfigPath: flags.configPath,
		WarningWriter:     env.errOut,
	})
	if err != nil {
		return nil, err
	}
	if flags.remote != "" {
		cfg.Remote = flags.remote
	}
	method, err := git.ParsePushMethod(cfg.PushMethod)
	if err != nil {
		return nil, err
	}
	repo.Configure(git.WithRemote(cfg.Remote), git.WithPushMethod(method))

	path := cfg.ChangelogPath(repo.Root())
	if flags.file != "" {
		path = flags.file
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
	}
	relPath, err := repo.RelPath(path)
	if err != nil {
		return nil, err
	}

	logger.Debug("session opened",
		zap.String("root", repo.Root()),
		zap.String("changelog", relPath),
		zap.String("remote", cfg.Remote),
		zap.String("push_method", cfg.PushMethod))
	return &session{repo: repo, cfg: cfg, logger: logger, path: path, relPath: relPath}, nil
}

func runRelease(ctx context.Context, env *environment, flags *releaseFlags, specifier string) error {
	// Reject a bad argument before touching the repository.
	if _, err := release.ClassifySpecifier(specifier); err != nil {
		return err
	}

	s, err := openSession(env, flags)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	caps := env.caps()
	driver := &workflow.Driver{
		Repo: s.repo,
		Reconciler: release.New(
			changes.NewHistorySource(s.repo, s.relPath, s.logger),
			release.WithClock(env.now),
			release.WithDateFormat(s.cfg.DateFormat),
			release.WithLogger(s.logger),
		),
		Editor:    s.editor(env),
		Confirmer: s.confirmer(env, flags),
		Reporter:  progress.NewReporter(env.out, caps),
		Format:    s.cfg.ChangelogFormat(),
		Out:       env.out,
		Color:     caps.SupportsColor,
		Logger:    s.logger,
	}

	opts := workflow.Options{
		Specifier:         specifier,
		Path:              s.path,
		RepoPath:          s.relPath,
		Since:             flags.since,
		Date:              release.ParseDateDirective(flags.date),
		RequireExisting:   flags.existing,
		Formatter:         s.cfg.Formatter(),
		AllowDirty:        flags.allowDirty || s.cfg.AllowDirty,
		NoPush:            flags.noPush,
		DryRun:            flags.dryRun,
		Preamble:          s.cfg.PreambleFor(filepath.Base(s.repo.Root())),
		CommitMessage:     s.cfg.CommitMessage,
		TagMessage:        s.cfg.TagMessage,
		NextCommitMessage: s.cfg.NextCommitMessage,
		Remote:            s.cfg.Remote,
	}

	var out *workflow.Outcome
	err = lifecycle.Run(lifecycle.LogHandler{Logger: s.logger}, "release "+specifier, func() error {
		var runErr error
		out, runErr = driver.Run(ctx, opts)
		return runErr
	})
	if err != nil {
		return err
	}

	if out.DryRun {
		fmt.Fprintln(env.out)
		return changelog.FormatSection(out.Section, env.out, changelog.FormatOptions{
			Plain:       !caps.SupportsColor,
			MaxWidth:    caps.Width,
			Placeholder: s.cfg.Placeholder,
		})
	}
	printSummary(env, out, s.cfg.Remote, caps.SupportsColor)
	return nil
}

func (s *session) editor(env *environment) editor.Editor {
	if env.editor != nil {
		return env.editor
	}
	cmd := editor.New(editor.Resolve(s.cfg.Editor))
	cmd.Stdin, cmd.Stdout, cmd.Stderr = env.in, env.out, env.errOut
	return cmd
}

func (s *session) confirmer(env *environment, flags *releaseFlags) prompt.Confirmer {
	if flags.yes || s.cfg.SkipConfirmations {
		return prompt.AssumeYes{Out: env.out}
	}
	return prompt.NewTerminal(env.in, env.out)
}

func printSummary(env *environment, out *workflow.Outcome, remote string, useColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	if useColor {
		green.EnableColor()
	} else {
		green.DisableColor()
	}

	what := out.Label
	switch {
	case out.AlreadyTagged:
		what = "changelog for " + out.Tag
	case out.Tag != "":
		what = "release " + out.Tag
	}
	if out.Pushed {
		fmt.Fprintf(env.out, "\n%s %s pushed to %s\n", green.Sprint("Done:"), what, remote)
		return
	}
	fmt.Fprintf(env.out, "\n%s %s committed locally (not pushed)\n", green.Sprint("Done:"), what)
}
