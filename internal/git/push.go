package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Push sends the current branch to the configured remote. With withTags,
// annotated tags pointing into the pushed history go along.
func (r *Repository) Push(ctx context.Context, withTags bool) error {
	if r.pushMethod == PushCLI {
		return r.pushCLI(ctx, withTags)
	}
	return r.pushGoGit(ctx, withTags)
}

func (r *Repository) pushGoGit(ctx context.Context, withTags bool) error {
	head, err := r.repo.Head()
	if err != nil {
		return opError("push", fmt.Errorf("getting HEAD reference: %w", err))
	}
	if !head.Name().IsBranch() {
		return opError("push", errors.New("HEAD is detached; check out a branch first"))
	}

	remote, err := r.repo.Remote(r.remote)
	if err != nil {
		return opError("push", fmt.Errorf("remote %q: %w", r.remote, err))
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return opError("push", fmt.Errorf("remote %q has no URL", r.remote))
	}
	url := urls[0]

	if isSSHURL(url) && !isSSHAgentAvailable() {
		logDebug("[git] no SSH agent for %s, push will likely fail; consider push_method: cli", url)
	}

	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	logDebug("[git] pushing %s to %s (%s), follow tags: %v", refSpec, r.remote, url, withTags)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       getAuthForURL(url),
		FollowTags: withTags,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return opError("push", err)
	}
	return nil
}

// pushCLI shells out so the user's credential helpers and hooks apply.
func (r *Repository) pushCLI(ctx context.Context, withTags bool) error {
	args := pushArgs(r.remote, withTags)
	_, err := r.run(ctx, args...)
	return err
}

func pushArgs(remote string, withTags bool) []string {
	args := []string{"push"}
	if withTags {
		args = append(args, "--follow-tags")
	}
	return append(args, remote, "HEAD")
}

// run executes git in the repository root, returning combined output.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logDebug("[git] running git %s", strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}

	cmdErr := &CommandError{Op: args[0], ExitCode: -1, Output: out.String(), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return out.String(), cmdErr
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		if username != "" {
			password = "" // a GitHub token works as the username with an empty password
		}
	}

	if username != "" {
		return &http.BasicAuth{
			Username: username,
			Password: password,
		}
	}

	return nil
}

// isSSHURL detects git@ (SCP-style), ssh://, and git+ssh:// remotes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
