package sync

import (
	"github.com/sirupsen/logrus"

	"github.com/sidkik/tagmirror/pkg/model"
)

// UnresolvedLink is a model variable whose dynamic link target doesn't exist.
type UnresolvedLink struct {
	Node   *model.Node
	Target string
}

// CheckDynamicLinks warns about every dynamic link under `root` that doesn't
// resolve to a tag, and returns them. It never modifies the model.
func CheckDynamicLinks(m Model, log *logrus.Logger, root *model.Node) []UnresolvedLink {
	var unresolved []UnresolvedLink
	for _, owner := range m.FindDynamicLinks(root) {
		if _, ok := m.ResolveLink(*owner.Link); ok {
			continue
		}

		unresolved = append(unresolved, UnresolvedLink{
			Node:   owner,
			Target: owner.Link.Target,
		})
		log.WithFields(logrus.Fields{
			"node":   owner.Path(),
			"target": owner.Link.Target,
		}).Warn("Node has an unresolved dynamic link. You may need to either: " +
			"manually reimport the missing tag(s), " +
			"manually delete the unresolved model variable(s), " +
			"or set DeleteExistingTags to true " +
			"(which may lead to unresolved dynamic links somewhere else)")
	}
	return unresolved
}
