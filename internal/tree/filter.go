package tree

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter prunes the tree in place against the include and exclude glob
// patterns. A node is kept when its RootPath matches at least one include
// pattern (or the include list is empty) and matches no exclude pattern.
//
// The walk is depth-first post-order: a non-leaf child is recursed into
// first, and only re-tested directly if the recursion pruned all of its
// children and turned it into a leaf. The root itself is never filtered.
//
// The glob dialect is doublestar's: `*` stops at path-segment boundaries
// while `**` crosses them, so "team/*" matches "team/api" but not
// "team/api/sub" and "team/**" matches both.
func Filter(root *Node, includePatterns []string, excludePatterns []string) error {
	if validationError := validatePatterns(includePatterns); validationError != nil {
		return validationError
	}
	if validationError := validatePatterns(excludePatterns); validationError != nil {
		return validationError
	}
	filterChildren(root, includePatterns, excludePatterns)
	return nil
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

func filterChildren(parent *Node, includePatterns []string, excludePatterns []string) {
	// Iterate over a snapshot: detaching mutates parent.children.
	children := append([]*Node(nil), parent.children...)
	for _, child := range children {
		if !child.IsLeaf() {
			filterChildren(child, includePatterns, excludePatterns)
			// An emptied group is re-tested as if it were a leaf.
			if child.IsLeaf() && !keeps(child, includePatterns, excludePatterns) {
				child.Detach()
			}
			continue
		}
		if !keeps(child, includePatterns, excludePatterns) {
			child.Detach()
		}
	}
}

func keeps(node *Node, includePatterns []string, excludePatterns []string) bool {
	return isIncluded(node, includePatterns) && !isExcluded(node, excludePatterns)
}

func isIncluded(node *Node, includePatterns []string) bool {
	if len(includePatterns) == 0 {
		return true
	}
	return matchesAny(node.RootPath, includePatterns)
}

func isExcluded(node *Node, excludePatterns []string) bool {
	return matchesAny(node.RootPath, excludePatterns)
}

func matchesAny(rootPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, matchError := doublestar.Match(pattern, rootPath)
		if matchError != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
