package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// commandVCS implements VCS with the git binary for mutating operations and
// go-git for repository inspection. go-git cannot express worktree addition,
// mirror clones, or verbatim user-supplied clone options, so those go
// through the binary.
type commandVCS struct{}

// NewCommandVCS returns the production VCS implementation.
func NewCommandVCS() VCS {
	return commandVCS{}
}

// IsRepository reports whether path holds a repository go-git can open.
func (commandVCS) IsRepository(path string) bool {
	_, openError := gogit.PlainOpen(path)
	return openError == nil
}

// Clone clones url into path with the provided extra options.
func (commandVCS) Clone(ctx context.Context, url string, path string, options []string) error {
	arguments := append([]string{"clone"}, options...)
	arguments = append(arguments, url, path)
	_, runError := runGit(ctx, "", arguments...)
	return runError
}

// Pull updates the repository at path from its default remote.
func (commandVCS) Pull(ctx context.Context, path string) error {
	_, runError := runGit(ctx, path, "pull")
	return runError
}

// Fetch fetches the default remote of the repository at path.
func (commandVCS) Fetch(ctx context.Context, path string) error {
	_, runError := runGit(ctx, path, "fetch")
	return runError
}

// UpdateSubmodules recursively initializes and updates submodules.
func (commandVCS) UpdateSubmodules(ctx context.Context, path string) error {
	_, runError := runGit(ctx, path, "submodule", "update", "--init", "--recursive")
	return runError
}

// ListRemoteTrackingBranches returns short remote-tracking reference names
// such as "origin/main".
func (commandVCS) ListRemoteTrackingBranches(path string) ([]string, error) {
	repository, openError := gogit.PlainOpen(path)
	if openError != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, openError)
	}
	referenceIterator, referencesError := repository.References()
	if referencesError != nil {
		return nil, fmt.Errorf("list references of %s: %w", path, referencesError)
	}
	defer referenceIterator.Close()

	var branchNames []string
	iterationError := referenceIterator.ForEach(func(reference *plumbing.Reference) error {
		if reference.Name().IsRemote() {
			branchNames = append(branchNames, reference.Name().Short())
		}
		return nil
	})
	if iterationError != nil {
		return nil, fmt.Errorf("iterate references of %s: %w", path, iterationError)
	}
	return branchNames, nil
}

// AddWorktree creates a worktree checked out to branch at worktreePath.
func (commandVCS) AddWorktree(ctx context.Context, repositoryPath string, worktreePath string, branch string) error {
	_, runError := runGit(ctx, repositoryPath, "worktree", "add", worktreePath, branch)
	return runError
}

// CurrentHeadName returns the short name of the branch HEAD points at.
func (commandVCS) CurrentHeadName(path string) (string, error) {
	repository, openError := gogit.PlainOpen(path)
	if openError != nil {
		return "", fmt.Errorf("open repository %s: %w", path, openError)
	}
	head, headError := repository.Head()
	if headError != nil {
		return "", fmt.Errorf("resolve HEAD of %s: %w", path, headError)
	}
	return head.Name().Short(), nil
}

// runGit executes one git command, returning stdout and wrapping failures
// with the command line and captured stderr.
func runGit(ctx context.Context, workingDirectory string, arguments ...string) (string, error) {
	command := exec.CommandContext(ctx, "git", arguments...)
	command.Dir = workingDirectory
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if runError := command.Run(); runError != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(arguments, " "), runError, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
