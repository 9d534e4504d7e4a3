package git

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
)

// shortRefLen matches git's default abbreviation.
const shortRefLen = 7

// errStopIter ends a commit walk early.
var errStopIter = errors.New("stop iteration")

// head returns the HEAD commit hash. ok is false in a repository without commits.
func (r *Repository) head() (plumbing.Hash, bool, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, err
	}
	return ref.Hash(), true, nil
}

// resolveCommit resolves a revision (hash, abbreviated hash, branch, or tag) to
// a commit hash, peeling annotated tags.
func (r *Repository) resolveCommit(rev string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving %q: %w", rev, err)
	}
	if _, err := r.repo.CommitObject(*hash); err == nil {
		return *hash, nil
	}
	tag, err := r.repo.TagObject(*hash)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%q does not name a commit", rev)
	}
	commit, err := tag.Commit()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("peeling tag %q: %w", rev, err)
	}
	return commit.Hash, nil
}

// ancestors returns every commit reachable from hash, including hash.
func (r *Repository) ancestors(ctx context.Context, hash plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = struct{}{}
		return nil
	})
	return seen, err
}

// LogSince returns commits reachable from HEAD but not from since, newest
// first. An empty since returns the whole history.
func (r *Repository) LogSince(ctx context.Context, since string) ([]changes.Record, error) {
	head, ok, err := r.head()
	if err != nil {
		return nil, opError("log", err)
	}
	if !ok {
		return nil, nil
	}

	var exclude map[plumbing.Hash]struct{}
	if since != "" {
		base, err := r.resolveCommit(since)
		if err != nil {
			return nil, opError("log", err)
		}
		if exclude, err = r.ancestors(ctx, base); err != nil {
			return nil, opError("log", err)
		}
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, opError("log", err)
	}
	defer iter.Close()

	var records []changes.Record
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, skip := exclude[c.Hash]; skip {
			return nil
		}
		records = append(records, toRecord(c))
		return nil
	})
	if err != nil {
		return nil, opError("log", err)
	}

	logDebug("[git] LogSince(%q): %d commits", since, len(records))
	return records, nil
}

// LogLast returns at most n of the newest commits touching path (relative to the
// repository root), newest first.
func (r *Repository) LogLast(ctx context.Context, path string, n int) ([]changes.Record, error) {
	head, ok, err := r.head()
	if err != nil {
		return nil, opError("log", err)
	}
	if !ok || n <= 0 {
		return nil, nil
	}

	file := path
	iter, err := r.repo.Log(&git.LogOptions{From: head, Order: git.LogOrderCommitterTime, FileName: &file})
	if err != nil {
		return nil, opError("log", err)
	}
	defer iter.Close()

	var records []changes.Record
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		records = append(records, toRecord(c))
		if len(records) >= n {
			return errStopIter
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIter) {
		return nil, opError("log", err)
	}

	logDebug("[git] LogLast(%q, %d): %d commits", path, n, len(records))
	return records, nil
}

// ReadHead returns the content of path as committed at HEAD. ok is false when
// the file is not in HEAD or the repository has no commits.
func (r *Repository) ReadHead(ctx context.Context, path string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	head, ok, err := r.head()
	if err != nil {
		return nil, false, opError("show", err)
	}
	if !ok {
		return nil, false, nil
	}

	commit, err := r.repo.CommitObject(head)
	if err != nil {
		return nil, false, opError("show", err)
	}
	file, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, opError("show", err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, false, opError("show", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, opError("show", err)
	}
	return data, true, nil
}

func toRecord(c *object.Commit) changes.Record {
	ref := c.Hash.String()
	return changes.Record{
		ShortRef: changes.ShortRef(ref, shortRefLen),
		Ref:      ref,
		Subject:  changes.Subject(c.Message),
	}
}
