package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/config"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/git"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/release"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/workflow"
)

// Usage is the command synopsis shown with argument errors.
const Usage = "change-tag-push <version|major|minor|patch|trial|current|next>"

// Common error messages for the change-tag-push CLI.
// These templates ensure consistent, actionable error messages.

// MissingVersionArgument creates an error for a missing version argument.
func MissingVersionArgument() *CLIError {
	return NewArgumentErrorWithUsage(
		"a version or keyword is required",
		Usage,
		"Pass an explicit version such as v1.2.3",
		"Or a keyword: "+keywords(),
	)
}

// InvalidSpecifier creates an error for an argument that is neither a version nor a keyword.
func InvalidSpecifier(err error) *CLIError {
	e := NewArgumentErrorWithUsage(
		err.Error(),
		Usage,
		"Versions look like v1.2.3 or v1.2.3.4 (no leading zeros)",
		"Keywords: "+keywords(),
	)
	e.Cause = err
	return e
}

// VersionNotMonotonic creates an error for a version older than the latest release.
func VersionNotMonotonic(err error) *CLIError {
	e := NewArgumentError(
		err.Error(),
		"Choose a version greater than the latest release",
		"Use 'current' to add changes to the latest release",
	)
	e.Cause = err
	return e
}

// UnknownReleaseTarget creates an error for --existing naming a missing section.
func UnknownReleaseTarget(err error) *CLIError {
	e := NewArgumentError(
		err.Error(),
		"Drop --existing to create a new release section",
	)
	e.Cause = err
	return e
}

// ImmutableHistoricalDate creates an error for redating an older release.
func ImmutableHistoricalDate(err error) *CLIError {
	e := NewArgumentError(
		err.Error(),
		"Omit --date when adding changes to an older release",
		"Edit the date by hand if it really is wrong",
	)
	e.Cause = err
	return e
}

// MalformedChangelog creates an error for a changelog that cannot be parsed.
func MalformedChangelog(err error) *CLIError {
	e := NewChangelogError(
		err.Error(),
		"Fix the reported line in the changelog",
		"Every change line must be indented under a version header",
	)
	e.Cause = err

	var parseErr *changelog.ParseError
	if errors.As(err, &parseErr) && parseErr.Line > 0 {
		e.Message = fmt.Sprintf("%s: %s", changelog.ErrMalformedChangelog, parseErr.Message)
		e.Details = []string{fmt.Sprintf("line %d | %s", parseErr.Line, parseErr.Text)}
	}
	return e
}

// EntryMissingAfterEdit creates an error for a section removed in the editor.
func EntryMissingAfterEdit(err error) *CLIError {
	e := NewChangelogError(
		err.Error(),
		"Keep the release header line when editing",
		"Restore the file with: git checkout -- <changelog>",
	)
	e.Cause = err
	return e
}

// DirtyWorkingTree creates an error for uncommitted changes.
func DirtyWorkingTree(err error) *CLIError {
	e := NewPrerequisiteError(
		err.Error(),
		"Commit or stash your changes first",
		"Or pass --allow-dirty to release anyway",
	)
	e.Cause = err
	return e
}

// DetachedHead creates an error for a push without a checked-out branch.
func DetachedHead(err error) *CLIError {
	e := NewPrerequisiteError(
		err.Error(),
		"Check out the branch to release with: git switch <branch>",
		"Or pass --no-push to commit and tag only",
	)
	e.Cause = err
	return e
}

// TagExists creates an error for a release tag that is already present.
func TagExists(err error) *CLIError {
	e := NewPrerequisiteError(
		err.Error(),
		"Pick the next version, e.g. 'change-tag-push patch'",
		"Or delete the tag if it was created by mistake: git tag -d <tag>",
	)
	e.Cause = err
	return e
}

// NotARepository creates an error for running outside a git repository.
func NotARepository(err error) *CLIError {
	e := NewPrerequisiteError(
		"not inside a git repository",
		"Run change-tag-push from a repository checkout",
		"Or create one with: git init",
	)
	e.Cause = err
	return e
}

// RepositoryCommandFailed creates an error for a failed git operation.
func RepositoryCommandFailed(err error) *CLIError {
	e := NewRuntimeError(
		err.Error(),
		"Read the git output for the cause",
		"Verify access to the remote with: git push --dry-run",
	)
	e.Cause = err

	var cmdErr *git.CommandError
	if errors.As(err, &cmdErr) {
		e.Message = fmt.Sprintf("git %s failed", cmdErr.Op)
		if cmdErr.Err != nil {
			e.Message += ": " + cmdErr.Err.Error()
		}
		if cmdErr.ExitCode >= 0 {
			e.Details = append(e.Details, fmt.Sprintf("exit status %d", cmdErr.ExitCode))
		}
		if out := strings.TrimSpace(cmdErr.Output); out != "" {
			for _, line := range strings.Split(out, "\n") {
				e.Details = append(e.Details, "| "+line)
			}
		}
	}
	return e
}

// InvalidConfig creates an error for a configuration file or value that failed validation.
func InvalidConfig(err error) *CLIError {
	e := NewConfigError(
		err.Error(),
		fmt.Sprintf("Check %s and ~/.config/change-tag-push/config.yml", config.ProjectConfigFile),
		"Show the effective configuration with: change-tag-push config show",
	)
	e.Cause = err
	return e
}

// FromError converts err into a CLIError. Errors that already carry a CLIError
// are returned as is; unknown errors become runtime errors without remediation.
func FromError(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var validationErr *config.ValidationError
	switch {
	case errors.Is(err, release.ErrInvalidVersionSpecifier),
		errors.Is(err, semver.ErrInvalidVersionFormat),
		errors.Is(err, semver.ErrInvalidBumpKeyword):
		return InvalidSpecifier(err)
	case errors.Is(err, release.ErrVersionNotMonotonic):
		return VersionNotMonotonic(err)
	case errors.Is(err, release.ErrUnknownReleaseTarget):
		return UnknownReleaseTarget(err)
	case errors.Is(err, release.ErrImmutableHistoricalDate):
		return ImmutableHistoricalDate(err)
	case errors.Is(err, changelog.ErrMalformedChangelog):
		return MalformedChangelog(err)
	case errors.Is(err, workflow.ErrChangelogEntryMissingAfterEdit):
		return EntryMissingAfterEdit(err)
	case errors.Is(err, workflow.ErrDirtyWorkingTree):
		return DirtyWorkingTree(err)
	case errors.Is(err, workflow.ErrDetachedHead):
		return DetachedHead(err)
	case errors.Is(err, workflow.ErrTagAlreadyExists):
		return TagExists(err)
	case errors.Is(err, git.ErrNotRepository):
		return NotARepository(err)
	case errors.Is(err, git.ErrRepositoryCommandFailed):
		return RepositoryCommandFailed(err)
	case errors.As(err, &validationErr):
		return InvalidConfig(err)
	default:
		return Wrap(err, Runtime)
	}
}

func keywords() string {
	return strings.Join(append(semver.BumpKeywords(), "next"), ", ")
}
