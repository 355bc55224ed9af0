package sync

import (
	"github.com/sidkik/tagmirror/pkg/errors"
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// createOrUpdateFolder returns the folder for `fieldNode` within `parent`,
// creating it if necessary. If the folder already exists and
// DeleteExistingTags is set, its contents are deleted.
func (w *Walker) createOrUpdateFolder(ctx walkContext, fieldNode *tags.Node,
	parent *model.Node) (*model.Node, error) {

	name := browseName("", fieldNode.Name)
	existing, ok := getChild(w.model, parent, name, model.Folder)
	if !ok {
		folder := w.model.MakeFolder(name)
		if err := w.model.Add(parent, folder); err != nil {
			return nil, errors.WithContext(err, "add folder")
		}

		w.stats.Created++
		w.log.WithField("node", folder.Path()).Info("Creating folder")
		return folder, nil
	}

	if ctx.deleteExistingTags {
		w.log.WithField("node", existing.Path()).Info(
			"Deleting folder contents (DeleteExistingTags is set to true)")
		w.model.ClearChildren(existing)
		w.stats.Cleared++
	} else {
		w.log.WithField("node", existing.Path()).Info(
			"Folder already exists, skipping creation or deletion of its contents " +
				"(DeleteExistingTags is set to false)")
	}
	return existing, nil
}

// createOrUpdateObjectArray generates the members of an array of structures
// directly into `parent`. The members are prefixed with the array's name
// rather than an index, so members with the same name overwrite each other.
func (w *Walker) createOrUpdateObjectArray(ctx walkContext, fieldNode *tags.Node,
	parent *model.Node, prefix string) error {

	return w.createChildren(ctx, fieldNode, parent, arrayPrefix(prefix, fieldNode.Name))
}

// createOrUpdateObject generates the object for the structure `fieldNode`,
// and then its members. Existing objects are reused without deleting their
// contents.
func (w *Walker) createOrUpdateObject(ctx walkContext, fieldNode *tags.Node,
	parent *model.Node, prefix string) error {

	name := browseName(prefix, fieldNode.Name)
	object, ok := getChild(w.model, parent, name, model.Object)
	if !ok {
		object = w.model.MakeObject(name)
		if err := w.model.Add(parent, object); err != nil {
			return errors.WithContext(err, "add object")
		}

		w.stats.Created++
		w.log.WithField("node", object.Path()).Info("Creating object")
	} else {
		w.stats.Updated++
		w.log.WithField("node", object.Path()).Info("Updating object")
	}

	// The prefix only applies to the object itself. Its members are named
	// relative to it.
	return w.createChildren(ctx, fieldNode, object, "")
}

// createOrUpdateVariable generates the variable for `fieldNode` and links it
// to the tag. The link is always recreated, even if the variable already
// existed.
func (w *Walker) createOrUpdateVariable(fieldNode *tags.Node, parent *model.Node,
	prefix string) error {

	if fieldNode.IsArrayDimensions() {
		w.skip(fieldNode)
		return nil
	}

	name := browseName(prefix, fieldNode.Name)
	variable, ok := getChild(w.model, parent, name, model.Variable)
	if !ok {
		variable = w.model.MakeVariable(name, fieldNode.DataType, fieldNode.ArrayDimensions)
		if err := w.model.Add(parent, variable); err != nil {
			return errors.WithContext(err, "add variable")
		}

		w.stats.Created++
		w.log.WithField("node", variable.Path()).Info("Creating variable")
	} else {
		w.stats.Updated++
		w.log.WithField("node", variable.Path()).Info("Updating variable")
	}

	// Only the data type is updated. The array dimensions of existing
	// variables are kept as is.
	if variable.DataType != fieldNode.DataType {
		if err := w.model.SetDataType(variable, fieldNode.DataType); err != nil {
			return errors.WithContext(err, "set data type")
		}
	}

	if err := w.model.SetDynamicLink(variable, fieldNode, model.ReadWrite); err != nil {
		return errors.WithContext(err, "set dynamic link")
	}
	return nil
}
