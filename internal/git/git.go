// Package git provides the repository operations the release workflow needs:
// cleanliness checks, history queries, commit, annotated tag, and push. It uses
// the go-git library for everything it supports and falls back to the git CLI
// only for pushing when configured to.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// ErrNotRepository is returned by Open when no repository contains the path.
var ErrNotRepository = git.ErrRepositoryNotExists

// ErrRepositoryCommandFailed is matched by every CommandError.
var ErrRepositoryCommandFailed = errors.New("repository command failed")

// CommandError describes a failed repository operation. ExitCode and Output are
// set when the operation ran the git binary; ExitCode is -1 otherwise.
type CommandError struct {
	Op       string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git %s failed", e.Op)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, "\n%s", out)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRepositoryCommandFailed) true for any CommandError.
func (e *CommandError) Is(target error) bool {
	return target == ErrRepositoryCommandFailed
}

func opError(op string, err error) error {
	return &CommandError{Op: op, ExitCode: -1, Err: err}
}

// PushMethod selects how Push talks to the remote.
type PushMethod string

const (
	// PushGoGit pushes in-process with go-git.
	PushGoGit PushMethod = "go-git"
	// PushCLI runs "git push" so the user's credential helpers and hooks apply.
	PushCLI PushMethod = "cli"
)

// ParsePushMethod validates a configured push method.
func ParsePushMethod(s string) (PushMethod, error) {
	switch m := PushMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PushGoGit, PushCLI:
		return m, nil
	case "":
		return PushGoGit, nil
	default:
		return "", fmt.Errorf("unknown push method %q (expected %q or %q)", s, PushGoGit, PushCLI)
	}
}

// Repository is an opened working copy.
type Repository struct {
	repo       *git.Repository
	root       string
	remote     string
	pushMethod PushMethod
}

// Option configures a Repository.
type Option func(*Repository)

// WithRemote sets the remote used by Push. Defaults to "origin".
func WithRemote(name string) Option {
	return func(r *Repository) { r.remote = name }
}

// WithPushMethod selects the push implementation.
func WithPushMethod(m PushMethod) Option {
	return func(r *Repository) { r.pushMethod = m }
}

// Open opens the repository containing path (or the working directory when
// path is empty), searching parent directories for .git.
func Open(path string, opts ...Option) (*Repository, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	r := &Repository{
		repo:       repo,
		root:       worktree.Filesystem.Root(),
		remote:     "origin",
		pushMethod: PushGoGit,
	}
	r.Configure(opts...)
	logDebug("[git] repository root %s, remote %s, push via %s", r.root, r.remote, r.pushMethod)
	return r, nil
}

// openRepo opens a git repository at the specified path or current working directory.
// DetectDotGit lets it start from any subdirectory of the working copy.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Configure applies options to an open repository.
func (r *Repository) Configure(opts ...Option) {
	for _, opt := range opts {
		opt(r)
	}
}

// Root returns the absolute path of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// Remote returns the configured push remote.
func (r *Repository) Remote() string {
	return r.remote
}

// RelPath converts path (absolute or relative to the working directory) to a
// slash-separated path relative to the repository root.
func (r *Repository) RelPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if rel, ok := relInside(r.root, abs); ok {
		return rel, nil
	}

	// Retry with symlinks resolved on both sides (e.g. /tmp -> /private/tmp).
	root, rootErr := filepath.EvalSymlinks(r.root)
	dir, dirErr := filepath.EvalSymlinks(filepath.Dir(abs))
	if rootErr == nil && dirErr == nil {
		if rel, ok := relInside(root, filepath.Join(dir, filepath.Base(abs))); ok {
			return rel, nil
		}
	}
	return "", fmt.Errorf("%s is outside the repository at %s", path, r.root)
}

func relInside(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// StatusIsClean reports whether the working tree has no staged, modified, or
// untracked files.
func (r *Repository) StatusIsClean(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, opError("status", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, opError("status", err)
	}
	clean := status.IsClean()
	logDebug("[git] StatusIsClean: %v", clean)
	return clean, nil
}

// DirtyFiles lists paths with uncommitted changes, sorted.
func (r *Repository) DirtyFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, opError("status", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, opError("status", err)
	}
	var files []string
	for path, s := range status {
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// RefExists reports whether a tag with the given name exists.
func (r *Repository) RefExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, opError("show-ref", err)
	}
	return true, nil
}

// CurrentBranch returns the checked-out branch name, or "" in detached HEAD state.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", opError("rev-parse", fmt.Errorf("getting HEAD reference: %w", err))
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}
