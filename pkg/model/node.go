package model

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/sidkik/tagmirror/pkg/errors"
)

// Kind identifies what a model node represents.
type Kind int

const (
	// Folder is a grouping node.
	Folder Kind = iota
	// Object is a node that mirrors a tag structure.
	Object
	// Variable is a value node. It's the only kind that carries a data type
	// and a dynamic link.
	Variable
)

func (k Kind) String() string {
	switch k {
	case Folder:
		return "folder"
	case Object:
		return "object"
	case Variable:
		return "variable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LinkMode is the direction in which a dynamic link propagates values.
type LinkMode int

const (
	// Read propagates values from the link target to the owner.
	Read LinkMode = iota
	// Write propagates values from the owner to the link target.
	Write
	// ReadWrite propagates values in both directions.
	ReadWrite
)

func (m LinkMode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "readwrite"
	default:
		return fmt.Sprintf("LinkMode(%d)", int(m))
	}
}

// DynamicLink binds a variable to a tag so that its value follows the tag.
type DynamicLink struct {
	// Target is the path of the tag in the tag tree.
	Target string
	Mode   LinkMode
}

// Node is a node in the model. Nodes are owned by their parent.
type Node struct {
	ID   uuid.UUID
	Name string
	Kind Kind

	// Only set for variables.
	DataType        string
	ArrayDimensions []uint32
	Link            *DynamicLink

	parent   *Node
	children []*Node
}

// Parent returns the node that owns n, or nil if n is detached or the model
// root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children of n in the order they were added.
func (n *Node) Children() []*Node {
	return append([]*Node{}, n.children...)
}

// Get returns the direct child of n named `name`.
func (n *Node) Get(name string) (*Node, bool) {
	for _, child := range n.children {
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// Path returns the browse path of n from the model root.
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	return path.Join(n.parent.Path(), n.Name)
}

// Add makes `child` a child of n. Names must be unique among siblings and
// can't contain slashes.
func (n *Node) Add(child *Node) error {
	if n.Kind == Variable {
		return errors.New(fmt.Sprintf("variable %q can't have children", n.Path()))
	}

	if child.parent != nil {
		return errors.New(fmt.Sprintf("%q is already owned by %q",
			child.Name, child.parent.Path()))
	}

	if err := validateName(child.Name); err != nil {
		return err
	}

	if _, ok := n.Get(child.Name); ok {
		return errors.New(fmt.Sprintf("%q already has a child named %q",
			n.Path(), child.Name))
	}

	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Clear removes all children of n.
func (n *Node) Clear() {
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
}

// walk calls fn on n and its descendants in depth-first pre-order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.walk(fn)
	}
}

func validateName(name string) error {
	if name == "" {
		return errors.New("node name can't be empty")
	}

	if name == "." || name == ".." {
		return errors.New(fmt.Sprintf("invalid node name %q", name))
	}

	if strings.Contains(name, "/") {
		return errors.New(fmt.Sprintf("invalid node name %q: "+
			"names can't contain '/'", name))
	}
	return nil
}
