package workflow

import (
	"context"
)

// MockRepository is an in-memory Repository that records every mutation.
type MockRepository struct {
	Clean    bool
	Dirty    []string
	Branch   string
	Tags     map[string]bool
	Head     map[string][]byte
	CommitID string

	StatusErr error
	CommitErr error
	TagErr    error
	PushErr   error

	// Call tracking
	RefChecks []string
	Commits   []CommitCall
	Tagged    []TagCall
	Pushes    []bool
}

// CommitCall records a call to Commit.
type CommitCall struct {
	Message string
	Path    string
}

// TagCall records a call to TagAnnotated.
type TagCall struct {
	Name    string
	Message string
}

// NewMockRepository creates a clean repository on main with no tags.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		Clean:    true,
		Branch:   "main",
		Tags:     map[string]bool{},
		Head:     map[string][]byte{},
		CommitID: "0123456789abcdef",
	}
}

func (m *MockRepository) StatusIsClean(context.Context) (bool, error) {
	return m.Clean, m.StatusErr
}

func (m *MockRepository) DirtyFiles(context.Context) ([]string, error) {
	return m.Dirty, m.StatusErr
}

func (m *MockRepository) CurrentBranch() (string, error) {
	return m.Branch, nil
}

func (m *MockRepository) RefExists(_ context.Context, name string) (bool, error) {
	m.RefChecks = append(m.RefChecks, name)
	return m.Tags[name], nil
}

func (m *MockRepository) Commit(_ context.Context, message, path string) (string, error) {
	if m.CommitErr != nil {
		return "", m.CommitErr
	}
	m.Commits = append(m.Commits, CommitCall{Message: message, Path: path})
	return m.CommitID, nil
}

func (m *MockRepository) TagAnnotated(_ context.Context, name, message string) error {
	if m.TagErr != nil {
		return m.TagErr
	}
	m.Tagged = append(m.Tagged, TagCall{Name: name, Message: message})
	m.Tags[name] = true
	return nil
}

func (m *MockRepository) Push(_ context.Context, withTags bool) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	m.Pushes = append(m.Pushes, withTags)
	return nil
}

func (m *MockRepository) ReadHead(_ context.Context, path string) ([]byte, bool, error) {
	data, ok := m.Head[path]
	return data, ok, nil
}
