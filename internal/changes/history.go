package changes

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// History is the slice of repository capability a HistorySource needs.
type History interface {
	LogSince(ctx context.Context, since string) ([]Record, error)
	LogLast(ctx context.Context, path string, n int) ([]Record, error)
}

// HistorySource reads commits since the last commit that touched the
// changelog file, unless an explicit reference is given.
type HistorySource struct {
	repo   History
	path   string
	logger *zap.Logger
}

// NewHistorySource builds a source for the changelog at path (relative to the repository root).
func NewHistorySource(repo History, path string, logger *zap.Logger) *HistorySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistorySource{repo: repo, path: path, logger: logger}
}

// LastChangelogRef returns the full id of the last commit touching the
// changelog file, or "" when the file has never been committed.
func (s *HistorySource) LastChangelogRef(ctx context.Context) (string, error) {
	records, err := s.repo.LogLast(ctx, s.path, 1)
	if err != nil {
		return "", fmt.Errorf("finding last commit of %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].Ref, nil
}

// LogSince returns commits since the given reference. An empty since falls
// back to the last commit of the changelog file; the repository is re-read on
// every call so edits made since the previous run are picked up.
func (s *HistorySource) LogSince(ctx context.Context, since string) ([]Record, error) {
	if since == "" {
		ref, err := s.LastChangelogRef(ctx)
		if err != nil {
			return nil, err
		}
		since = ref
		s.logger.Debug("using last changelog commit as reference",
			zap.String("path", s.path), zap.String("ref", since))
	}

	records, err := s.repo.LogSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("reading log since %q: %w", since, err)
	}
	s.logger.Debug("collected change records", zap.String("since", since), zap.Int("count", len(records)))
	return records, nil
}

// Static is a fixed Source, useful for tests and dry runs.
type Static []Record

// LogSince returns the records regardless of since.
func (s Static) LogSince(context.Context, string) ([]Record, error) {
	return append([]Record(nil), s...), nil
}
