package sync

import (
	"strings"

	"github.com/sidkik/tagmirror/pkg/model"
)

// browseName returns the name of the model node generated for a tag named
// `name`. Model node names can't contain slashes, so they're replaced with
// underscores.
func browseName(prefix, name string) string {
	return prefix + strings.Replace(name, "/", "_", -1)
}

// arrayPrefix returns the prefix for the members of the array named `name`.
func arrayPrefix(prefix, name string) string {
	return browseName(prefix, name) + "_"
}

// getChild returns the child of `parent` named `name` if it's of the given
// kind. A child of a different kind is treated as missing.
func getChild(m Model, parent *model.Node, name string, kind model.Kind) (*model.Node, bool) {
	child, ok := m.LookupChild(parent, name)
	if !ok || child.Kind != kind {
		return nil, false
	}
	return child, true
}
