package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrDirtyWorkingTree is returned when the repository has uncommitted changes
	// and dirty trees were not allowed.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	// ErrTagAlreadyExists is returned when the release tag is already present.
	ErrTagAlreadyExists = errors.New("tag already exists")
	// ErrChangelogEntryMissingAfterEdit is returned when the edited file no longer
	// contains the target section.
	ErrChangelogEntryMissingAfterEdit = errors.New("changelog entry missing after edit")
	// ErrDetachedHead is returned when a run that pushes starts without a branch checked out.
	ErrDetachedHead = errors.New("HEAD is detached, there is no branch to push")
	// ErrUserAborted is returned when the operator declines a confirmation.
	ErrUserAborted = errors.New("aborted by user")
)

// AbortError records which confirmation was declined.
type AbortError struct {
	Step string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted at %s", e.Step)
}

// Unwrap returns ErrUserAborted for errors.Is compatibility.
func (e *AbortError) Unwrap() error {
	return ErrUserAborted
}
