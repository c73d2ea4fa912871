// Package tree defines the group/subgroup/project hierarchy discovered from
// a GitLab server, the glob-based filter engine that prunes it, and the
// render/export/import surfaces built on top of it.
package tree

// Kind identifies the variant of a node in the discovered hierarchy.
type Kind string

// Node kinds used across the project.
const (
	KindRoot     Kind = "root"
	KindGroup    Kind = "group"
	KindSubgroup Kind = "subgroup"
	KindProject  Kind = "project"
)

const pathSeparator = "/"

// Node is one entry in the discovered hierarchy. Parent and child links are
// kept consistent by Attach and Detach; RootPath is derived from the live
// ancestor chain at attach time and never stored externally.
type Node struct {
	Name              string
	Kind              Kind
	URL               string
	RootPath          string
	DefaultBranch     string
	ProtectedBranches []string

	parent   *Node
	children []*Node
}

// ChildSpec describes a node to create beneath a parent. DefaultBranch, when
// set, becomes a trailing RootPath segment in addition to being recorded on
// the node.
type ChildSpec struct {
	Kind              Kind
	Name              string
	URL               string
	DefaultBranch     string
	ProtectedBranches []string
}

// NewRoot returns a synthetic root node for the given server URL. The root
// carries an empty name and an empty RootPath so that its children derive
// paths consisting of their own names only.
func NewRoot(serverURL string) *Node {
	return &Node{Kind: KindRoot, URL: serverURL}
}

// AddChild creates the described node, attaches it as the last child of the
// receiver, and computes its RootPath from the live ancestor chain.
func (node *Node) AddChild(specification ChildSpec) *Node {
	child := &Node{
		Name:              specification.Name,
		Kind:              specification.Kind,
		URL:               specification.URL,
		DefaultBranch:     specification.DefaultBranch,
		ProtectedBranches: specification.ProtectedBranches,
	}
	child.attachTo(node)
	return child
}

// Reattach detaches the receiver from its current parent, attaches it under
// the new parent, and recomputes RootPath for the receiver and its subtree.
func (node *Node) Reattach(newParent *Node) {
	node.Detach()
	node.attachTo(newParent)
}

// Detach removes the receiver from its parent while preserving the order of
// the remaining siblings. Detaching an already detached node is a no-op.
func (node *Node) Detach() {
	if node.parent == nil {
		return
	}
	siblings := node.parent.children
	for siblingIndex, sibling := range siblings {
		if sibling == node {
			node.parent.children = append(siblings[:siblingIndex], siblings[siblingIndex+1:]...)
			break
		}
	}
	node.parent = nil
}

func (node *Node) attachTo(parent *Node) {
	node.parent = parent
	parent.children = append(parent.children, node)
	node.recomputeRootPath()
}

// recomputeRootPath rederives RootPath for the node and every descendant.
func (node *Node) recomputeRootPath() {
	path := node.Name
	if node.parent != nil && node.parent.RootPath != "" {
		path = node.parent.RootPath + pathSeparator + node.Name
	}
	if node.DefaultBranch != "" {
		path = path + pathSeparator + node.DefaultBranch
	}
	node.RootPath = path
	for _, child := range node.children {
		child.recomputeRootPath()
	}
}

// Parent returns the node's parent, or nil for a detached node or the root.
func (node *Node) Parent() *Node {
	return node.parent
}

// Children returns the node's children in attachment order. The returned
// slice is shared with the node and must not be mutated by callers.
func (node *Node) Children() []*Node {
	return node.children
}

// IsLeaf reports whether the node has no children. An empty group is a leaf
// even though it is not a project.
func (node *Node) IsLeaf() bool {
	return len(node.children) == 0
}

// IsRoot reports whether the node is the synthetic root.
func (node *Node) IsRoot() bool {
	return node.Kind == KindRoot
}

// Leaves returns every leaf descendant of the node in depth-first order.
func (node *Node) Leaves() []*Node {
	var leaves []*Node
	for _, child := range node.children {
		if child.IsLeaf() {
			leaves = append(leaves, child)
			continue
		}
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// DescendantCount returns the number of descendants of the node.
func (node *Node) DescendantCount() int {
	count := len(node.children)
	for _, child := range node.children {
		count += child.DescendantCount()
	}
	return count
}
