package cli

import (
	"context"
	stderrors "errors"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/errors"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/workflow"
)

// Exit codes for the change-tag-push CLI
const (
	// ExitSuccess indicates the release (or dry run) completed
	ExitSuccess = 0

	// ExitFailure indicates a failed step
	ExitFailure = 1

	// ExitAborted indicates the operator declined a confirmation or interrupted the run
	ExitAborted = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case workflow.IsAborted(err), stderrors.Is(err, context.Canceled):
		return ExitAborted
	case errors.FromError(err).Category == errors.Argument:
		return ExitInvalidArguments
	default:
		return ExitFailure
	}
}
