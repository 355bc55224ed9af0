package sync

import (
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// Model is the subset of the information model that tag generation needs.
// It's implemented by *model.Model.
type Model interface {
	LookupChild(parent *model.Node, name string) (*model.Node, bool)

	MakeFolder(name string) *model.Node
	MakeObject(name string) *model.Node
	MakeVariable(name, dataType string, dims []uint32) *model.Node

	Add(parent, node *model.Node) error
	ClearChildren(folder *model.Node)

	SetDataType(variable *model.Node, dataType string) error
	SetDynamicLink(variable *model.Node, target *tags.Node, mode model.LinkMode) error

	ResolveLink(link model.DynamicLink) (*tags.Node, bool)
	FindDynamicLinks(root *model.Node) []*model.Node
}

var _ Model = &model.Model{}
