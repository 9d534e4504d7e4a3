package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	fallbackName  = "change-tag-push"
	fallbackEmail = "change-tag-push@localhost"
)

// signature builds the author/tagger identity from the environment, then the
// merged local and global git config, then a fixed fallback.
func (r *Repository) signature() *object.Signature {
	name := firstNonEmpty(os.Getenv("GIT_AUTHOR_NAME"), os.Getenv("GIT_COMMITTER_NAME"))
	email := firstNonEmpty(os.Getenv("GIT_AUTHOR_EMAIL"), os.Getenv("GIT_COMMITTER_EMAIL"))

	if name == "" || email == "" {
		if cfg, err := r.repo.ConfigScoped(config.GlobalScope); err == nil {
			name = firstNonEmpty(name, cfg.User.Name)
			email = firstNonEmpty(email, cfg.User.Email)
		} else {
			logDebug("[git] reading user config: %v", err)
		}
	}

	return &object.Signature{
		Name:  firstNonEmpty(name, fallbackName),
		Email: firstNonEmpty(email, fallbackEmail),
		When:  time.Now(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Add stages path (relative to the repository root).
func (r *Repository) Add(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return opError("add", err)
	}
	if _, err := worktree.Add(path); err != nil {
		return opError("add", fmt.Errorf("staging %s: %w", path, err))
	}
	logDebug("[git] Add: %s", path)
	return nil
}

// Commit stages path and commits the index with message, returning the new
// commit id. Anything else already staged is committed too.
func (r *Repository) Commit(ctx context.Context, message, path string) (string, error) {
	if err := r.Add(ctx, path); err != nil {
		return "", err
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", opError("commit", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{Author: r.signature()})
	if err != nil {
		return "", opError("commit", err)
	}
	logDebug("[git] Commit: %s %q", hash, message)
	return hash.String(), nil
}

// TagAnnotated creates an annotated tag on HEAD.
func (r *Repository) TagAnnotated(ctx context.Context, name, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	head, ok, err := r.head()
	if err != nil {
		return opError("tag", err)
	}
	if !ok {
		return opError("tag", errors.New("repository has no commits"))
	}

	_, err = r.repo.CreateTag(name, head, &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		return opError("tag", fmt.Errorf("creating tag %s: %w", name, err))
	}
	logDebug("[git] TagAnnotated: %s at %s", name, head)
	return nil
}
