package tags

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/sidkik/tagmirror/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// SupportedFormatVersions is the range of tag export formats that this
// version of tagmirror understands.
const SupportedFormatVersions = ">= 1.0, < 2.0"

// exportFile is the on-disk representation of an imported tag tree.
type exportFile struct {
	FormatVersion string     `json:"formatVersion"`
	Root          exportNode `json:"root"`
}

type exportNode struct {
	Name            string       `json:"name"`
	Kind            string       `json:"kind"`
	DataType        string       `json:"dataType,omitempty"`
	ArrayDimensions []uint32     `json:"arrayDimensions,omitempty"`
	Children        []exportNode `json:"children,omitempty"`
}

// Load reads the tag export at `path`.
func Load(path string) (*Tree, error) {
	exportBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: path}
		}
		return nil, errors.WithContext(err, "read file")
	}

	tree, err := Parse(exportBytes)
	if err != nil {
		return nil, errors.WithContext(err, "parse tag export")
	}
	return tree, nil
}

// Parse decodes a YAML tag export.
func Parse(exportBytes []byte) (*Tree, error) {
	var export exportFile
	if err := yaml.Unmarshal(exportBytes, &export); err != nil {
		return nil, errors.WithContext(err, "unmarshal")
	}

	if export.FormatVersion == "" {
		return nil, errors.MissingFieldError{Field: "formatVersion"}
	}

	if err := checkFormatVersion(export.FormatVersion); err != nil {
		return nil, err
	}

	if export.Root.Name == "" {
		return nil, errors.MissingFieldError{Field: "root.name"}
	}

	if err := export.Root.validateNames(export.Root.Name); err != nil {
		return nil, err
	}
	return NewTree(export.Root.toNode()), nil
}

// validateNames rejects children whose names can't identify them within
// their parent.
func (n exportNode) validateNames(nodePath string) error {
	for _, child := range n.Children {
		switch child.Name {
		case "", ".", "..":
			return errors.New(fmt.Sprintf("invalid tag name %q in %q", child.Name, nodePath))
		}

		if err := child.validateNames(nodePath + "/" + child.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkFormatVersion(formatVersion string) error {
	version, err := goversion.NewVersion(formatVersion)
	if err != nil {
		return errors.WithContext(err, "parse format version")
	}

	// The constraint is a constant, so this can only fail if it's malformed.
	supported, err := goversion.NewConstraint(SupportedFormatVersions)
	if err != nil {
		return errors.WithContext(err, "parse supported versions")
	}

	if !supported.Check(version) {
		return errors.NewFriendlyError("The tag export uses format version %s, "+
			"but this version of tagmirror only supports %q.\n"+
			"Please re-export the tags with a compatible exporter.",
			formatVersion, SupportedFormatVersions)
	}
	return nil
}

func (n exportNode) toNode() *Node {
	node := &Node{
		Name:            n.Name,
		Kind:            ParseKind(n.Kind),
		DataType:        n.DataType,
		ArrayDimensions: n.ArrayDimensions,
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, child.toNode())
	}
	return node
}
