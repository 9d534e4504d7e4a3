// Package workflow drives a release from the command line: it checks the
// working tree, reconciles the changelog, hands the file to the operator's
// editor, shows the diff, and after confirmation commits, tags, and pushes.
// Every core error is terminal; nothing is rolled back once the file is written.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/editor"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/progress"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/prompt"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/release"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

// Repository is the slice of repository capability the driver uses.
type Repository interface {
	StatusIsClean(ctx context.Context) (bool, error)
	DirtyFiles(ctx context.Context) ([]string, error)
	CurrentBranch() (string, error)
	RefExists(ctx context.Context, name string) (bool, error)
	Commit(ctx context.Context, message, path string) (string, error)
	TagAnnotated(ctx context.Context, name, message string) error
	Push(ctx context.Context, withTags bool) error
	ReadHead(ctx context.Context, path string) ([]byte, bool, error)
}

// Default message templates.
const (
	DefaultCommitMessage     = "Update changelog for {version}"
	DefaultTagMessage        = "Tagging version {version}"
	DefaultNextCommitMessage = "Update changelog for unreleased changes"
)

// Options are the inputs of one run.
type Options struct {
	// Specifier is the version, bump keyword, "current", or "next".
	Specifier string
	// Path is the changelog file on disk.
	Path string
	// RepoPath is Path relative to the repository root.
	RepoPath string

	Since           string
	Date            release.DateDirective
	RequireExisting bool
	Formatter       changes.Formatter

	AllowDirty bool
	NoPush     bool
	// DryRun reconciles and prints the diff without touching the file or repository.
	DryRun bool

	// Preamble is used when the changelog file does not exist yet.
	Preamble string
	// Message templates; {version} expands to the target label.
	CommitMessage     string
	TagMessage        string
	NextCommitMessage string
	// Remote names the push target in prompts.
	Remote string
}

// Outcome summarises a finished run.
type Outcome struct {
	Target    changelog.ReleaseVersion
	Section   *changelog.Section // reconciled target section, before editing
	Label     string
	Tag       string
	CommitID  string
	Pushed    bool
	Added     int
	DryRun    bool
	Unchanged bool
	// AlreadyTagged is set when late changes go to a release whose tag exists;
	// the changelog is committed and the tag left alone.
	AlreadyTagged bool
}

// Driver sequences one release. All fields except Logger and Reporter are required.
type Driver struct {
	Repo       Repository
	Reconciler *release.Reconciler
	Editor     editor.Editor
	Confirmer  prompt.Confirmer
	Reporter   *progress.Reporter
	Format     changelog.Format
	Out        io.Writer
	Color      bool
	Logger     *zap.Logger
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Driver) reporter() *progress.Reporter {
	if d.Reporter == nil {
		d.Reporter = progress.NewReporter(d.Out, progress.TerminalCapabilities{})
	}
	return d.Reporter
}

// Run performs the release. Declining a confirmation returns an error wrapping
// ErrUserAborted.
func (d *Driver) Run(ctx context.Context, opts Options) (*Outcome, error) {
	opts = opts.withDefaults()
	log := d.logger().With(zap.String("specifier", opts.Specifier), zap.String("path", opts.Path))

	branch, err := d.preflight(ctx, opts)
	if err != nil {
		return nil, err
	}

	doc, existed, err := changelog.LoadOrNew(opts.Path, d.Format)
	if err != nil {
		return nil, err
	}
	if !existed {
		if !doc.SetPreamble(opts.Preamble) {
			log.Warn("preamble would read as changelog content, leaving it out", zap.String("preamble", opts.Preamble))
		}
		log.Debug("changelog does not exist yet, starting a new one")
	}
	before := ""
	if existed {
		before = doc.Serialize()
	}

	res, err := d.Reconciler.Reconcile(ctx, opts.Specifier, doc, release.Options{
		Since:           opts.Since,
		Date:            opts.Date,
		RequireExisting: opts.RequireExisting,
		Formatter:       opts.Formatter,
	})
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Target:  res.Target,
		Section: res.Section(),
		Label:   res.Target.Label(doc.Format().Placeholder),
		Added:   len(res.Added),
		DryRun:  opts.DryRun,
	}
	if !res.Target.IsPending() {
		out.Tag = res.Target.String()
		if err := d.checkTag(ctx, out, lateChanges(res)); err != nil {
			return nil, err
		}
	}
	log.Info("reconciled changelog", zap.String("target", out.Label), zap.Int("added", out.Added), zap.Bool("created", res.Created))

	if opts.DryRun {
		out.Unchanged = !writeDiff(d.Out, opts.Path, before, doc.Serialize(), d.Color)
		return out, nil
	}

	if err := doc.Save(opts.Path); err != nil {
		return nil, fmt.Errorf("writing %s: %w", opts.Path, err)
	}
	if err := d.Editor.Edit(ctx, opts.Path); err != nil {
		return nil, err
	}

	if err := d.showDiff(ctx, opts); err != nil {
		return nil, err
	}
	if err := d.verifyEdited(opts.Path, res.Target); err != nil {
		return nil, err
	}

	if err := d.confirm(commitQuestion(out)); err != nil {
		return nil, err
	}
	if err := d.commitAndTag(ctx, opts, out); err != nil {
		return nil, err
	}

	if opts.NoPush {
		d.reporter().Skip("Push", "--no-push")
		return out, nil
	}
	if err := d.confirm(fmt.Sprintf("Push %s to %s?", branch, opts.Remote)); err != nil {
		return nil, err
	}
	err = d.reporter().Step("Pushing to "+opts.Remote, func() error {
		return d.Repo.Push(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	out.Pushed = true
	return out, nil
}

func (o Options) withDefaults() Options {
	if o.CommitMessage == "" {
		o.CommitMessage = DefaultCommitMessage
	}
	if o.TagMessage == "" {
		o.TagMessage = DefaultTagMessage
	}
	if o.NextCommitMessage == "" {
		o.NextCommitMessage = DefaultNextCommitMessage
	}
	if o.Remote == "" {
		o.Remote = "origin"
	}
	if o.RepoPath == "" {
		o.RepoPath = o.Path
	}
	return o
}

// preflight checks the working tree and, when the run will push, returns the
// branch to push.
func (d *Driver) preflight(ctx context.Context, opts Options) (string, error) {
	if !opts.AllowDirty {
		clean, err := d.Repo.StatusIsClean(ctx)
		if err != nil {
			return "", err
		}
		if !clean {
			files, err := d.Repo.DirtyFiles(ctx)
			if err != nil {
				return "", err
			}
			if len(files) == 0 {
				return "", ErrDirtyWorkingTree
			}
			return "", fmt.Errorf("%w: %s", ErrDirtyWorkingTree, summarizePaths(files))
		}
	}

	if opts.DryRun || opts.NoPush {
		return "", nil
	}
	branch, err := d.Repo.CurrentBranch()
	if err != nil {
		return "", err
	}
	if branch == "" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

// summarizePaths lists up to five paths and counts the rest.
func summarizePaths(paths []string) string {
	const shown = 5
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	if len(sorted) <= shown {
		return strings.Join(sorted, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(sorted[:shown], ", "), len(sorted)-shown)
}

// lateChanges reports whether res adds changes to the existing latest release
// rather than cutting a new one.
func lateChanges(res *release.Result) bool {
	return res.Specifier.Kind == semver.SpecCurrent && !res.Created
}

// checkTag fails when the release tag exists, unless the run only adds late
// changes to that release.
func (d *Driver) checkTag(ctx context.Context, out *Outcome, late bool) error {
	exists, err := d.Repo.RefExists(ctx, out.Tag)
	if err != nil {
		return err
	}
	switch {
	case exists && late:
		out.AlreadyTagged = true
	case exists:
		return fmt.Errorf("%w: %s", ErrTagAlreadyExists, out.Tag)
	}
	return nil
}

// showDiff prints the file against its committed version.
func (d *Driver) showDiff(ctx context.Context, opts Options) error {
	committed, _, err := d.Repo.ReadHead(ctx, opts.RepoPath)
	if err != nil {
		return err
	}
	current, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.Path, err)
	}
	writeDiff(d.Out, opts.RepoPath, string(committed), string(current), d.Color)
	return nil
}

// verifyEdited re-reads the file and checks the target section survived editing.
func (d *Driver) verifyEdited(path string, target changelog.ReleaseVersion) error {
	doc, err := changelog.Load(path, d.Format)
	if err != nil {
		return err
	}
	if doc.FindSection(target) == nil {
		return fmt.Errorf("%w: %s no longer has a %s section", ErrChangelogEntryMissingAfterEdit,
			path, target.Label(doc.Format().Placeholder))
	}
	return nil
}

func (d *Driver) confirm(question string) error {
	ok, err := d.Confirmer.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		return &AbortError{Step: question}
	}
	return nil
}

func (d *Driver) commitAndTag(ctx context.Context, opts Options, out *Outcome) error {
	message := expand(opts.CommitMessage, out.Label)
	if out.Target.IsPending() {
		message = expand(opts.NextCommitMessage, out.Label)
	}

	err := d.reporter().Step("Committing "+opts.RepoPath, func() error {
		id, err := d.Repo.Commit(ctx, message, opts.RepoPath)
		out.CommitID = id
		return err
	})
	if err != nil {
		return err
	}

	if out.Tag == "" {
		d.reporter().Skip("Tag", "unreleased changes are not tagged")
		return nil
	}
	if out.AlreadyTagged {
		d.reporter().Skip("Tag", out.Tag+" already exists")
		return nil
	}
	return d.reporter().Step("Tagging "+out.Tag, func() error {
		return d.Repo.TagAnnotated(ctx, out.Tag, expand(opts.TagMessage, out.Tag))
	})
}

func commitQuestion(out *Outcome) string {
	if out.Tag == "" || out.AlreadyTagged {
		return fmt.Sprintf("Commit changelog for %s?", out.Label)
	}
	return fmt.Sprintf("Commit changelog and tag %s?", out.Tag)
}

// expand substitutes {version} in tmpl.
func expand(tmpl, version string) string {
	return strings.ReplaceAll(tmpl, "{version}", version)
}

// IsAborted reports whether err is a declined confirmation.
func IsAborted(err error) bool {
	return errors.Is(err, ErrUserAborted)
}
