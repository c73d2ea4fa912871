package tree

import "testing"

// buildSampleTree creates root → team → (api, backend → server).
func buildSampleTree() (*Node, *Node, *Node, *Node, *Node) {
	root := NewRoot("https://gitlab.example.com")
	team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team", URL: "https://gitlab.example.com/team"})
	api := team.AddChild(ChildSpec{Kind: KindProject, Name: "api", URL: "git@gitlab.example.com:team/api.git"})
	backend := team.AddChild(ChildSpec{Kind: KindSubgroup, Name: "backend", URL: "https://gitlab.example.com/team/backend"})
	server := backend.AddChild(ChildSpec{Kind: KindProject, Name: "server", URL: "git@gitlab.example.com:team/backend/server.git"})
	return root, team, api, backend, server
}

// TestRootPathDerivation verifies that every node's RootPath is its parent's
// RootPath joined with its own name.
func TestRootPathDerivation(testingHandle *testing.T) {
	root, team, api, backend, server := buildSampleTree()

	if root.RootPath != "" {
		testingHandle.Fatalf("expected empty root path, got %q", root.RootPath)
	}
	expectations := map[*Node]string{
		team:    "team",
		api:     "team/api",
		backend: "team/backend",
		server:  "team/backend/server",
	}
	for node, expectedPath := range expectations {
		if node.RootPath != expectedPath {
			testingHandle.Fatalf("unexpected root path for %s: got %q want %q", node.Name, node.RootPath, expectedPath)
		}
		if node.Parent().RootPath != "" && node.RootPath != node.Parent().RootPath+"/"+node.Name {
			testingHandle.Fatalf("root path invariant violated for %s: %q", node.Name, node.RootPath)
		}
	}
}

// TestDefaultBranchFoldsIntoRootPath verifies the branch naming strategy
// appends the resolved default branch as a trailing path segment.
func TestDefaultBranchFoldsIntoRootPath(testingHandle *testing.T) {
	root := NewRoot("https://gitlab.example.com")
	team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})
	project := team.AddChild(ChildSpec{Kind: KindProject, Name: "api", DefaultBranch: "main"})

	if project.RootPath != "team/api/main" {
		testingHandle.Fatalf("unexpected root path with branch suffix: %q", project.RootPath)
	}
	if project.DefaultBranch != "main" {
		testingHandle.Fatalf("default branch not recorded: %q", project.DefaultBranch)
	}
}

// TestDetachPreservesSiblingOrder verifies that removing a middle child
// keeps the remaining children in attachment order and clears the parent
// link.
func TestDetachPreservesSiblingOrder(testingHandle *testing.T) {
	root := NewRoot("")
	first := root.AddChild(ChildSpec{Kind: KindGroup, Name: "first"})
	second := root.AddChild(ChildSpec{Kind: KindGroup, Name: "second"})
	third := root.AddChild(ChildSpec{Kind: KindGroup, Name: "third"})

	second.Detach()

	children := root.Children()
	if len(children) != 2 || children[0] != first || children[1] != third {
		testingHandle.Fatalf("unexpected children after detach: %v", childNames(root))
	}
	if second.Parent() != nil {
		testingHandle.Fatalf("detached node still references its parent")
	}
	// Detaching again must be a no-op.
	second.Detach()
	if len(root.Children()) != 2 {
		testingHandle.Fatalf("double detach corrupted the sibling list")
	}
}

// TestReattachRecomputesSubtreePaths verifies that moving a subtree under a
// new parent rederives RootPath for the node and all of its descendants.
func TestReattachRecomputesSubtreePaths(testingHandle *testing.T) {
	root, _, _, backend, server := buildSampleTree()
	otherGroup := root.AddChild(ChildSpec{Kind: KindGroup, Name: "platform"})

	backend.Reattach(otherGroup)

	if backend.RootPath != "platform/backend" {
		testingHandle.Fatalf("reattached node kept a stale root path: %q", backend.RootPath)
	}
	if server.RootPath != "platform/backend/server" {
		testingHandle.Fatalf("descendant root path not recomputed: %q", server.RootPath)
	}
}

// TestLeavesIncludesEmptyGroups verifies that a group without children is a
// leaf even though it is not a project.
func TestLeavesIncludesEmptyGroups(testingHandle *testing.T) {
	root := NewRoot("")
	emptyGroup := root.AddChild(ChildSpec{Kind: KindGroup, Name: "empty"})
	team := root.AddChild(ChildSpec{Kind: KindGroup, Name: "team"})
	project := team.AddChild(ChildSpec{Kind: KindProject, Name: "api"})

	if !emptyGroup.IsLeaf() {
		testingHandle.Fatalf("empty group must be a leaf")
	}
	leaves := root.Leaves()
	if len(leaves) != 2 || leaves[0] != emptyGroup || leaves[1] != project {
		testingHandle.Fatalf("unexpected leaves: %d", len(leaves))
	}
	if root.DescendantCount() != 3 {
		testingHandle.Fatalf("unexpected descendant count: %d", root.DescendantCount())
	}
}

func childNames(parent *Node) []string {
	var names []string
	for _, child := range parent.Children() {
		names = append(names, child.Name)
	}
	return names
}
