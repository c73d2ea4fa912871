package tree

import (
	"fmt"
	"io"
)

const (
	renderBranchConnector = "├── "
	renderLastConnector   = "└── "
	renderBranchPrefix    = "│   "
	renderLastPrefix      = "    "
)

// RenderNative writes the tree in the native indented format: the root line
// carries the server URL and every other line carries the node name and its
// RootPath.
func RenderNative(writer io.Writer, root *Node) error {
	if _, writeError := fmt.Fprintf(writer, "root [%s]\n", root.URL); writeError != nil {
		return writeError
	}
	return renderChildren(writer, root, "")
}

func renderChildren(writer io.Writer, parent *Node, prefix string) error {
	lastChildIndex := len(parent.children) - 1
	for childIndex, child := range parent.children {
		connector := renderBranchConnector
		childPrefix := prefix + renderBranchPrefix
		if childIndex == lastChildIndex {
			connector = renderLastConnector
			childPrefix = prefix + renderLastPrefix
		}
		if _, writeError := fmt.Fprintf(writer, "%s%s%s [%s]\n", prefix, connector, child.Name, child.RootPath); writeError != nil {
			return writeError
		}
		if renderError := renderChildren(writer, child, childPrefix); renderError != nil {
			return renderError
		}
	}
	return nil
}
