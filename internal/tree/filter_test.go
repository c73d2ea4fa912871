package tree

import (
	"reflect"
	"testing"
)

// collectRootPaths returns the RootPath of every descendant in depth-first
// order, giving tests a comparable snapshot of tree structure.
func collectRootPaths(parent *Node) []string {
	var paths []string
	for _, child := range parent.Children() {
		paths = append(paths, child.RootPath)
		paths = append(paths, collectRootPaths(child)...)
	}
	return paths
}

// TestFilterKeepsOnlyIncludedSubtree covers the specification scenario:
// group G has subgroup S with project P1 and directly owns project P2;
// include G/S/* keeps root → G → S → P1 only. G itself survives only
// because S remains a non-empty child.
func TestFilterKeepsOnlyIncludedSubtree(testingHandle *testing.T) {
	root := NewRoot("")
	groupG := root.AddChild(ChildSpec{Kind: KindGroup, Name: "G"})
	subgroupS := groupG.AddChild(ChildSpec{Kind: KindSubgroup, Name: "S"})
	subgroupS.AddChild(ChildSpec{Kind: KindProject, Name: "P1", DefaultBranch: ""})
	groupG.AddChild(ChildSpec{Kind: KindProject, Name: "P2"})

	if filterError := Filter(root, []string{"G/S/*"}, nil); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}

	expectedPaths := []string{"G", "G/S", "G/S/P1"}
	if !reflect.DeepEqual(collectRootPaths(root), expectedPaths) {
		testingHandle.Fatalf("unexpected tree after filtering: %v", collectRootPaths(root))
	}
}

// TestFilterRetestsEmptiedGroupAsLeaf verifies post-order re-evaluation: a
// group whose only project was excluded becomes a leaf and is then itself
// tested against the include patterns, which it fails.
func TestFilterRetestsEmptiedGroupAsLeaf(testingHandle *testing.T) {
	root := NewRoot("")
	team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})
	team.AddChild(ChildSpec{Kind: KindProject, Name: "api"})

	if filterError := Filter(root, []string{"team/*"}, []string{"team/api"}); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}

	if len(root.Children()) != 0 {
		testingHandle.Fatalf("emptied group was not re-tested and dropped: %v", collectRootPaths(root))
	}
}

// TestFilterKeepsEmptiedGroupThatStillMatches verifies that an emptied group
// passing the keep rule stays in the tree as an empty leaf.
func TestFilterKeepsEmptiedGroupThatStillMatches(testingHandle *testing.T) {
	root := NewRoot("")
	team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})
	team.AddChild(ChildSpec{Kind: KindProject, Name: "api"})

	if filterError := Filter(root, nil, []string{"team/api"}); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}

	if !reflect.DeepEqual(collectRootPaths(root), []string{"team"}) {
		testingHandle.Fatalf("emptied group should remain with empty include list: %v", collectRootPaths(root))
	}
	if !team.IsLeaf() {
		testingHandle.Fatalf("emptied group must have become a leaf")
	}
}

// TestFilterIsIdempotent verifies that filtering an already filtered tree
// changes nothing.
func TestFilterIsIdempotent(testingHandle *testing.T) {
	root := NewRoot("")
	groupG := root.AddChild(ChildSpec{Kind: KindGroup, Name: "G"})
	subgroupS := groupG.AddChild(ChildSpec{Kind: KindSubgroup, Name: "S"})
	subgroupS.AddChild(ChildSpec{Kind: KindProject, Name: "P1"})
	groupG.AddChild(ChildSpec{Kind: KindProject, Name: "P2"})

	includePatterns := []string{"G/S/**"}
	excludePatterns := []string{"**/secret"}
	if filterError := Filter(root, includePatterns, excludePatterns); filterError != nil {
		testingHandle.Fatalf("first Filter failed: %v", filterError)
	}
	firstPass := collectRootPaths(root)

	if filterError := Filter(root, includePatterns, excludePatterns); filterError != nil {
		testingHandle.Fatalf("second Filter failed: %v", filterError)
	}
	if !reflect.DeepEqual(collectRootPaths(root), firstPass) {
		testingHandle.Fatalf("filter is not idempotent: %v != %v", collectRootPaths(root), firstPass)
	}
}

// TestFilterGlobDialectBoundary pins down the glob dialect: a single star
// stops at path-segment boundaries while a double star crosses them.
func TestFilterGlobDialectBoundary(testingHandle *testing.T) {
	buildTree := func() *Node {
		root := NewRoot("")
		team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})
		api := team.AddChild(ChildSpec{Kind: KindSubgroup, Name: "api"})
		api.AddChild(ChildSpec{Kind: KindProject, Name: "sub"})
		return root
	}

	singleStarTree := buildTree()
	if filterError := Filter(singleStarTree, []string{"team/*"}, nil); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}
	// team/* matches team/api but not team/api/sub, so the project is
	// pruned and team/api survives as an emptied subgroup that matches.
	if !reflect.DeepEqual(collectRootPaths(singleStarTree), []string{"team", "team/api"}) {
		testingHandle.Fatalf("unexpected single-star result: %v", collectRootPaths(singleStarTree))
	}

	doubleStarTree := buildTree()
	if filterError := Filter(doubleStarTree, []string{"team/**"}, nil); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}
	if !reflect.DeepEqual(collectRootPaths(doubleStarTree), []string{"team", "team/api", "team/api/sub"}) {
		testingHandle.Fatalf("unexpected double-star result: %v", collectRootPaths(doubleStarTree))
	}
}

// TestFilterRejectsInvalidPattern verifies that malformed patterns surface
// as errors instead of silently matching nothing.
func TestFilterRejectsInvalidPattern(testingHandle *testing.T) {
	root := NewRoot("")
	root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})

	if filterError := Filter(root, []string{"team/["}, nil); filterError == nil {
		testingHandle.Fatalf("expected an error for an invalid include pattern")
	}
	if filterError := Filter(root, nil, []string{"team/["}); filterError == nil {
		testingHandle.Fatalf("expected an error for an invalid exclude pattern")
	}
}

// TestFilterNeverRemovesRoot verifies the root survives even when every
// child is pruned.
func TestFilterNeverRemovesRoot(testingHandle *testing.T) {
	root := NewRoot("https://gitlab.example.com")
	root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})

	if filterError := Filter(root, []string{"nothing/matches/this"}, nil); filterError != nil {
		testingHandle.Fatalf("Filter failed: %v", filterError)
	}
	if !root.IsLeaf() {
		testingHandle.Fatalf("expected a childless root, got %v", collectRootPaths(root))
	}
	if root.URL != "https://gitlab.example.com" {
		testingHandle.Fatalf("root node was modified by filtering")
	}
}
