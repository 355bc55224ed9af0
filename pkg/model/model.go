package model

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/sidkik/tagmirror/pkg/errors"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// Mocked out for unit testing.
var newID = uuid.New

// Model is the runtime information model that tags get mirrored into. It
// also knows about the tag tree so that dynamic links can be resolved.
type Model struct {
	root *Node
	tags *tags.Tree
}

// New returns an empty model.
func New() *Model {
	return &Model{root: &Node{ID: newID(), Kind: Folder}}
}

// Root returns the root folder of the model.
func (m *Model) Root() *Node {
	return m.root
}

// SetTags sets the tag tree that dynamic link targets are resolved in.
func (m *Model) SetTags(tree *tags.Tree) {
	m.tags = tree
}

// Tags returns the tag tree that dynamic links are resolved in. It may be nil.
func (m *Model) Tags() *tags.Tree {
	return m.tags
}

// Get returns the node at the given browse path, e.g. "/Model/Station1".
func (m *Model) Get(nodePath string) (*Node, bool) {
	curr := m.root
	for _, name := range strings.Split(path.Clean("/"+nodePath), "/") {
		if name == "" {
			continue
		}

		child, ok := curr.Get(name)
		if !ok {
			return nil, false
		}
		curr = child
	}
	return curr, true
}

// MakeFolder creates a detached folder.
func (m *Model) MakeFolder(name string) *Node {
	return &Node{ID: newID(), Name: name, Kind: Folder}
}

// MakeObject creates a detached object.
func (m *Model) MakeObject(name string) *Node {
	return &Node{ID: newID(), Name: name, Kind: Object}
}

// MakeVariable creates a detached variable.
func (m *Model) MakeVariable(name, dataType string, dims []uint32) *Node {
	return &Node{
		ID:              newID(),
		Name:            name,
		Kind:            Variable,
		DataType:        dataType,
		ArrayDimensions: append([]uint32(nil), dims...),
	}
}

// LookupChild returns the child of `parent` with the given name.
func (m *Model) LookupChild(parent *Node, name string) (*Node, bool) {
	return parent.Get(name)
}

// Add attaches `node` under `parent`.
func (m *Model) Add(parent, node *Node) error {
	return parent.Add(node)
}

// ClearChildren deletes every node below `folder`.
func (m *Model) ClearChildren(folder *Node) {
	folder.Clear()
}

// SetDataType changes the data type of a variable.
func (m *Model) SetDataType(variable *Node, dataType string) error {
	if variable.Kind != Variable {
		return errors.New(fmt.Sprintf("%q is a %s, not a variable",
			variable.Path(), variable.Kind))
	}
	variable.DataType = dataType
	return nil
}

// SetDynamicLink links `variable` to `target`, replacing any existing link.
func (m *Model) SetDynamicLink(variable *Node, target *tags.Node, mode LinkMode) error {
	if variable.Kind != Variable {
		return errors.New(fmt.Sprintf("%q is a %s, not a variable",
			variable.Path(), variable.Kind))
	}
	variable.Link = &DynamicLink{Target: target.ID, Mode: mode}
	return nil
}

// ResolveLink returns the tag that `link` points at. It returns false if
// no tag tree is loaded, or the tag doesn't exist in it.
func (m *Model) ResolveLink(link DynamicLink) (*tags.Node, bool) {
	if m.tags == nil {
		return nil, false
	}
	return m.tags.Get(link.Target)
}

// FindDynamicLinks returns every variable under `root` (inclusive) that has
// a dynamic link, in depth-first order.
func (m *Model) FindDynamicLinks(root *Node) []*Node {
	var linked []*Node
	root.walk(func(n *Node) {
		if n.Link != nil {
			linked = append(linked, n)
		}
	})
	return linked
}
