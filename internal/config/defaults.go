package config

import (
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/release"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# change-tag-push configuration
# Environment variables override this file: CTP_<KEY>, e.g. CTP_WRAP_COLUMNS=100

# Changelog settings
changelog_file: Changes               # Path relative to the repository root
wrap_columns: 132                     # Wrap change lines at this column (>= 20)
placeholder: "{{$NEXT}}"              # Header token of the unreleased section
date_format: "%Y-%m-%d"               # strftime layout used for --date today
change_format: ""                     # Change line template: {subject} {short} {ref}
preamble: "Revision history for {project}"  # Written to new changelog files

# Repository settings
remote: origin                        # Push target
push_method: go-git                   # go-git | cli
allow_dirty: false                    # Allow uncommitted changes
skip_confirmations: false             # Skip confirmation prompts (or CTP_YES=1)
editor: ""                            # Overrides $VISUAL and $EDITOR

# Messages ({version} expands to the release)
commit_message: "Update changelog for {version}"
tag_message: "Tagging version {version}"
next_commit_message: "Update changelog for unreleased changes"
`
}

// GetDefaults returns the default configuration values as a map
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"changelog_file":      "Changes",
		"wrap_columns":        changelog.DefaultWrapColumns,
		"placeholder":         changelog.DefaultPlaceholder,
		"date_format":         release.DefaultDateFormat,
		"remote":              "origin",
		"push_method":         "go-git",
		"allow_dirty":         false,
		"skip_confirmations":  false,
		"editor":              "",
		"change_format":       "",
		"commit_message":      "Update changelog for {version}",
		"tag_message":         "Tagging version {version}",
		"next_commit_message": "Update changelog for unreleased changes",
		"preamble":            "Revision history for {project}",
	}
}
