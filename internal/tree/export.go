package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ExportedNode is the serialized form of a node. RootPath is deliberately
// omitted: it is recomputed from the ancestor chain on import.
type ExportedNode struct {
	Name     string          `yaml:"name" json:"name"`
	Kind     string          `yaml:"type" json:"type"`
	URL      string          `yaml:"url" json:"url"`
	Children []*ExportedNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// Export converts a tree into its serialized representation preserving child
// order.
func Export(root *Node) *ExportedNode {
	exported := &ExportedNode{
		Name: root.Name,
		Kind: string(root.Kind),
		URL:  root.URL,
	}
	for _, child := range root.children {
		exported.Children = append(exported.Children, Export(child))
	}
	return exported
}

// WriteYAML writes the YAML representation of the tree.
func WriteYAML(writer io.Writer, root *Node) error {
	encoder := yaml.NewEncoder(writer)
	defer encoder.Close()
	if encodeError := encoder.Encode(Export(root)); encodeError != nil {
		return fmt.Errorf("encode tree as yaml: %w", encodeError)
	}
	return nil
}

// WriteJSON writes the indented JSON representation of the tree.
func WriteJSON(writer io.Writer, root *Node) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if encodeError := encoder.Encode(Export(root)); encodeError != nil {
		return fmt.Errorf("encode tree as json: %w", encodeError)
	}
	return nil
}

// Import reconstructs a tree from its serialized representation. RootPath
// values are rederived while attaching, so import(export(T)) yields a tree
// equivalent to T in names, kinds, urls, and structure.
func Import(exported *ExportedNode) *Node {
	root := NewRoot(exported.URL)
	root.Name = exported.Name
	importChildren(root, exported.Children)
	return root
}

func importChildren(parent *Node, exportedChildren []*ExportedNode) {
	for _, exportedChild := range exportedChildren {
		child := parent.AddChild(ChildSpec{
			Kind: Kind(exportedChild.Kind),
			Name: exportedChild.Name,
			URL:  exportedChild.URL,
		})
		importChildren(child, exportedChild.Children)
	}
}

// ImportYAML reads a YAML tree representation.
func ImportYAML(reader io.Reader) (*Node, error) {
	var exported ExportedNode
	decoder := yaml.NewDecoder(reader)
	if decodeError := decoder.Decode(&exported); decodeError != nil {
		return nil, fmt.Errorf("decode yaml tree: %w", decodeError)
	}
	return Import(&exported), nil
}

// ImportYAMLFile reads a YAML tree representation from the named file.
func ImportYAMLFile(filePath string) (*Node, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return nil, fmt.Errorf("open tree file %s: %w", filePath, openError)
	}
	defer fileHandle.Close()
	importedTree, importError := ImportYAML(fileHandle)
	if importError != nil {
		return nil, fmt.Errorf("load tree from %s: %w", filePath, importError)
	}
	return importedTree, nil
}
