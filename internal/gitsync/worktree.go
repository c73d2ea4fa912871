package gitsync

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

const remoteTrackingPrefix = "origin/"

// reconcileProtectedBranchWorktrees mirrors every remote branch matching the
// node's protected-branch patterns into a sibling worktree next to the main
// working tree. Each worktree failure is logged and never aborts the others.
func (engine *Engine) reconcileProtectedBranchWorktrees(ctx context.Context, action Action) {
	patterns := action.Node.ProtectedBranches
	if len(patterns) == 0 {
		return
	}
	trackingBranches, listError := engine.vcs.ListRemoteTrackingBranches(action.Path)
	if listError != nil {
		engine.logger.Error("cannot list remote branches for worktree reconciliation",
			zap.String("path", action.Path),
			zap.Error(listError))
		return
	}
	headName, headError := engine.vcs.CurrentHeadName(action.Path)
	if headError != nil {
		engine.logger.Error("cannot resolve HEAD for worktree reconciliation",
			zap.String("path", action.Path),
			zap.Error(headError))
		return
	}

	for _, branch := range matchProtectedBranches(trackingBranches, patterns) {
		if ctx.Err() != nil {
			return
		}
		if branch == headName {
			continue
		}
		worktreePath := filepath.Join(action.Path, "..", strings.ReplaceAll(branch, "/", "-"))
		if _, statError := os.Stat(worktreePath); statError == nil {
			if pullError := engine.vcs.Pull(ctx, worktreePath); pullError != nil {
				engine.logger.Error("failed to update worktree",
					zap.String("worktree", worktreePath),
					zap.Error(pullError))
			}
			continue
		}
		if addError := engine.vcs.AddWorktree(ctx, action.Path, worktreePath, branch); addError != nil {
			engine.logger.Error("failed to add worktree",
				zap.String("branch", branch),
				zap.String("worktree", worktreePath),
				zap.Error(addError))
		}
	}
}

// matchProtectedBranches resolves the branch patterns against the
// remote-tracking branch names with the origin/ prefix stripped, preserving
// remote listing order and dropping duplicates.
func matchProtectedBranches(trackingBranches []string, patterns []string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, trackingBranch := range trackingBranches {
		if !strings.HasPrefix(trackingBranch, remoteTrackingPrefix) {
			continue
		}
		branchName := strings.TrimPrefix(trackingBranch, remoteTrackingPrefix)
		if _, alreadyMatched := seen[branchName]; alreadyMatched {
			continue
		}
		for _, pattern := range patterns {
			isMatch, matchError := doublestar.Match(pattern, branchName)
			if matchError != nil {
				continue
			}
			if isMatch {
				matched = append(matched, branchName)
				seen[branchName] = struct{}{}
				break
			}
		}
	}
	return matched
}
