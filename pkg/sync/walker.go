package sync

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/tagmirror/pkg/errors"
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// Stats counts the changes made to the model by a Walker.
type Stats struct {
	Created int
	Updated int

	// Cleared is the number of existing folders whose contents were
	// deleted.
	Cleared int

	// Skipped is the number of array dimension nodes that were ignored.
	Skipped int

	// Excluded is the number of tags that matched an exclude pattern. Their
	// descendants aren't counted.
	Excluded int
}

// Walker generates model nodes from tags. A Walker isn't safe for concurrent
// use.
type Walker struct {
	model   Model
	log     *logrus.Logger
	exclude []string
	stats   Stats
}

// walkContext holds the settings that stay the same for an entire
// generation.
type walkContext struct {
	// startingNode is generated directly into the target folder, rather than
	// as a folder of its own.
	startingNode       *tags.Node
	deleteExistingTags bool
}

// NewWalker returns a Walker that generates nodes into `m`. Tags whose path
// matches one of the `exclude` glob patterns are skipped along with their
// descendants. The patterns are matched against tag paths without the
// leading slash, e.g. `**/Diagnostics`.
func NewWalker(m Model, log *logrus.Logger, exclude ...string) *Walker {
	return &Walker{model: m, log: log, exclude: exclude}
}

// Stats returns the changes made so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// GenerateNodes mirrors `startingNode` into `targetFolder`. Nodes created or
// updated before an error is encountered are left in place.
func (w *Walker) GenerateNodes(startingNode *tags.Node, targetFolder *model.Node,
	deleteExistingTags bool) error {

	ctx := walkContext{
		startingNode:       startingNode,
		deleteExistingTags: deleteExistingTags,
	}
	return w.createModelTag(ctx, startingNode, targetFolder, "")
}

// createModelTag dispatches `fieldNode` to the generator for its kind.
// `prefix` is prepended to the names of the generated nodes, and is only
// non-empty within arrays of structures.
func (w *Walker) createModelTag(ctx walkContext, fieldNode *tags.Node,
	parent *model.Node, prefix string) error {

	switch fieldNode.Kind {
	case tags.Structure:
		if fieldNode.IsArray() {
			return w.createOrUpdateObjectArray(ctx, fieldNode, parent, prefix)
		}
		return w.createOrUpdateObject(ctx, fieldNode, parent, prefix)
	case tags.Folder:
		folder := parent
		if fieldNode.ID != ctx.startingNode.ID {
			var err error
			folder, err = w.createOrUpdateFolder(ctx, fieldNode, parent)
			if err != nil {
				return err
			}
		}
		return w.createChildren(ctx, fieldNode, folder, prefix)
	default:
		return w.createOrUpdateVariable(fieldNode, parent, prefix)
	}
}

// createChildren generates every child of `fieldNode` except the array
// dimension nodes and the excluded tags.
func (w *Walker) createChildren(ctx walkContext, fieldNode *tags.Node,
	parent *model.Node, prefix string) error {

	for _, child := range fieldNode.Children {
		if child.IsArrayDimensions() {
			w.skip(child)
			continue
		}

		excluded, err := w.isExcluded(child)
		if err != nil {
			return err
		}
		if excluded {
			continue
		}

		if err := w.createModelTag(ctx, child, parent, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) skip(fieldNode *tags.Node) {
	w.stats.Skipped++
	w.log.WithField("tag", fieldNode.ID).Debug("Skipping array dimensions")
}

func (w *Walker) isExcluded(fieldNode *tags.Node) (bool, error) {
	tagPath := strings.TrimPrefix(fieldNode.ID, "/")
	for _, pattern := range w.exclude {
		match, err := doublestar.Match(pattern, tagPath)
		if err != nil {
			return false, errors.WithContext(err, fmt.Sprintf("match %q", pattern))
		}

		if match {
			w.stats.Excluded++
			w.log.WithFields(logrus.Fields{
				"tag":     fieldNode.ID,
				"pattern": pattern,
			}).Debug("Skipping excluded tag")
			return true, nil
		}
	}
	return false, nil
}
