package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/config"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/git"
)

func newConfigCmd(env *environment, flags *releaseFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create change-tag-push configuration",
		Long: `Show or create change-tag-push configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (CTP_*)
  2. Project config (.change-tag-push.yml, or .change-tag-push.json)
  3. User config (~/.config/change-tag-push/config.yml)
  4. Built-in defaults`,
		Example: `  # Show the effective configuration and where each value comes from
  change-tag-push config show

  # Write a commented project config
  change-tag-push config init

  # Write a commented user config
  change-tag-push config init --user`,
		Args: cobra.NoArgs,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(env, flags)
		},
	}

	var user, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(env, flags, user, force)
		},
	}
	initCmd.Flags().BoolVar(&user, "user", false, "Create the user config instead of the project config")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

// projectDir returns the repository root around the working directory, or
// the working directory itself outside a repository.
func projectDir(env *environment, flags *releaseFlags) (string, error) {
	dir, err := flags.workingDir(env)
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	repo, err := git.Open(dir)
	if err != nil {
		return dir, nil
	}
	return repo.Root(), nil
}

func runConfigShow(env *environment, flags *releaseFlags) error {
	dir, err := projectDir(env, flags)
	if err != nil {
		return err
	}
	cfg, sources, err := config.LoadWithSources(config.LoadOptions{
		ProjectDir:        dir,
		ProjectConfigPath: flags.configPath,
		WarningWriter:     env.errOut,
	})
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(configValues(cfg))
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Fprint(env.out, string(data))

	dim := color.New(color.Faint)
	fmt.Fprintln(env.out)
	fmt.Fprintln(env.out, dim.Sprint("# sources"))
	keys := make([]string, 0, len(config.GetDefaults()))
	for key := range config.GetDefaults() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(env.out, "%s\n", dim.Sprintf("# %-20s %s", key, sources[key]))
	}
	return nil
}

// configValues lists the configuration under its file keys.
func configValues(cfg *config.Configuration) map[string]interface{} {
	return map[string]interface{}{
		"changelog_file":      cfg.ChangelogFile,
		"wrap_columns":        cfg.WrapColumns,
		"placeholder":         cfg.Placeholder,
		"date_format":         cfg.DateFormat,
		"remote":              cfg.Remote,
		"push_method":         cfg.PushMethod,
		"allow_dirty":         cfg.AllowDirty,
		"skip_confirmations":  cfg.SkipConfirmations,
		"editor":              cfg.Editor,
		"change_format":       cfg.ChangeFormat,
		"commit_message":      cfg.CommitMessage,
		"tag_message":         cfg.TagMessage,
		"next_commit_message": cfg.NextCommitMessage,
		"preamble":            cfg.Preamble,
	}
}

func runConfigInit(env *environment, flags *releaseFlags, user, force bool) error {
	var path string
	if user {
		p, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("locating user config: %w", err)
		}
		path = p
	} else {
		dir, err := projectDir(env, flags)
		if err != nil {
			return err
		}
		path = config.ProjectConfigPath(dir)
	}

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(env.out, "Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(env.out, "Created %s\n", path)
	return nil
}
