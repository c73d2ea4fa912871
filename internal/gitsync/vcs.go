// Package gitsync materializes a filtered tree as local working copies. It
// derives one action per leaf, executes the actions on a bounded worker
// pool, and reconciles protected-branch worktrees after each successful
// clone or update.
package gitsync

import "context"

// VCS is the capability interface over the version control layer. Mutating
// operations accept a context so that a user interrupt aborts in-flight git
// commands.
type VCS interface {
	// IsRepository reports whether path holds a valid local repository.
	IsRepository(path string) bool
	// Clone clones url into path, passing the extra options through to the
	// clone invocation verbatim.
	Clone(ctx context.Context, url string, path string, options []string) error
	// Pull updates the repository at path from its default remote.
	Pull(ctx context.Context, path string) error
	// Fetch fetches the default remote of the repository at path.
	Fetch(ctx context.Context, path string) error
	// UpdateSubmodules recursively initializes and updates submodules.
	UpdateSubmodules(ctx context.Context, path string) error
	// ListRemoteTrackingBranches returns remote-tracking branch names in
	// short form, e.g. "origin/main".
	ListRemoteTrackingBranches(path string) ([]string, error)
	// AddWorktree creates a worktree of the repository at repositoryPath,
	// checked out to branch at worktreePath.
	AddWorktree(ctx context.Context, repositoryPath string, worktreePath string, branch string) error
	// CurrentHeadName returns the short name of the branch HEAD points at.
	CurrentHeadName(path string) (string, error)
}
