package tags

import (
	"path"
	"strings"
)

// Tree is an indexed tag tree.
type Tree struct {
	Root *Node

	byID map[string]*Node
}

// nameEscaper escapes the characters that would otherwise let a name be
// confused with a path, e.g. a tag named `Flow/Rate` with the tag `Rate` in
// the folder `Flow`.
var nameEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// EscapeName returns the path segment for a node named `name`. The names `.`
// and `..` are escaped as well so that they can't be cleaned out of a path.
func EscapeName(name string) string {
	switch name {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return nameEscaper.Replace(name)
}

// NewTree indexes the tree rooted at `root`. It assigns every node its ID
// and parent, so the nodes must not be shared with another Tree.
// IDs are built from the escaped node names. If two siblings share a name,
// lookups by path return the later one.
func NewTree(root *Node) *Tree {
	tree := &Tree{Root: root, byID: map[string]*Node{}}
	tree.index(root, nil, "/")
	return tree
}

func (t *Tree) index(n, parent *Node, id string) {
	n.ID = id
	n.parent = parent
	t.byID[id] = n
	for _, child := range n.Children {
		t.index(child, n, path.Join(id, EscapeName(child.Name)))
	}
}

// Get returns the node at `nodePath`. The root is at "/", and its children
// are at "/<name>", with each name escaped by EscapeName. Paths are always
// absolute; a missing leading slash is tolerated.
func (t *Tree) Get(nodePath string) (*Node, bool) {
	if !strings.HasPrefix(nodePath, "/") {
		nodePath = "/" + nodePath
	}
	n, ok := t.byID[path.Clean(nodePath)]
	return n, ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.byID)
}
