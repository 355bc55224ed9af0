package tags

import (
	"strings"
)

// Kind identifies what a tag node represents.
type Kind int

const (
	// Unknown is used for nodes whose kind couldn't be determined. They're
	// treated like variables when mirrored.
	Unknown Kind = iota

	// Folder is a pure container with no data.
	Folder

	// Structure is a composite tag (e.g. a UDT instance). It may be an
	// array, in which case ArrayDimensions is non-empty.
	Structure

	// Variable is a leaf tag carrying a value.
	Variable
)

func (k Kind) String() string {
	switch k {
	case Folder:
		return "folder"
	case Structure:
		return "structure"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognized names map to Unknown.
func ParseKind(name string) Kind {
	switch strings.ToLower(name) {
	case "folder":
		return Folder
	case "structure":
		return Structure
	case "variable":
		return Variable
	default:
		return Unknown
	}
}

// arrayDimensionsMarker is contained in the name of the synthetic children
// that describe the shape of array tags.
const arrayDimensionsMarker = "arraydimen"

// Node is a node in the tag tree. Nodes are read-only once they've been
// added to a Tree.
type Node struct {
	// ID is the stable identity of the node. It's the slash-separated path
	// from the root of the tree, and is set by NewTree.
	ID string

	Name            string
	Kind            Kind
	DataType        string
	ArrayDimensions []uint32
	Children        []*Node

	parent *Node
}

// Parent returns the node that contains n, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsArray returns whether the node has an array shape.
func (n *Node) IsArray() bool {
	return len(n.ArrayDimensions) != 0
}

// IsArrayDimensions returns whether the node only describes the shape of its
// parent array, rather than carrying data of its own.
func (n *Node) IsArrayDimensions() bool {
	return strings.Contains(strings.ToLower(n.Name), arrayDimensionsMarker)
}

// NewFolder creates a folder node.
func NewFolder(name string, children ...*Node) *Node {
	return &Node{Name: name, Kind: Folder, Children: children}
}

// NewStructure creates a structure node. A structure with dimensions is an
// array of structures.
func NewStructure(name string, dims []uint32, children ...*Node) *Node {
	return &Node{Name: name, Kind: Structure, ArrayDimensions: dims, Children: children}
}

// NewVariable creates a leaf node.
func NewVariable(name, dataType string, dims ...uint32) *Node {
	return &Node{Name: name, Kind: Variable, DataType: dataType, ArrayDimensions: dims}
}
