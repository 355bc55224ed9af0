package model

import (
	"os"

	"github.com/ghodss/yaml"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sidkik/tagmirror/pkg/errors"
)

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// snapshotNode is the on-disk representation of a model node.
type snapshotNode struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name,omitempty"`
	Kind            string         `json:"kind"`
	DataType        string         `json:"dataType,omitempty"`
	ArrayDimensions []uint32       `json:"arrayDimensions,omitempty"`
	Link            *snapshotLink  `json:"link,omitempty"`
	Children        []snapshotNode `json:"children,omitempty"`
}

type snapshotLink struct {
	Target string `json:"target"`
	Mode   string `json:"mode"`
}

var kindNames = map[string]Kind{
	Folder.String():   Folder,
	Object.String():   Object,
	Variable.String(): Variable,
}

var linkModeNames = map[string]LinkMode{
	Read.String():      Read,
	Write.String():     Write,
	ReadWrite.String(): ReadWrite,
}

// Marshal encodes the model as YAML. The tag tree isn't included.
func (m *Model) Marshal() ([]byte, error) {
	return yaml.Marshal(toSnapshot(m.root))
}

// Unmarshal decodes a model previously encoded with Marshal.
func Unmarshal(snapshotBytes []byte) (*Model, error) {
	var root snapshotNode
	if err := yaml.Unmarshal(snapshotBytes, &root); err != nil {
		return nil, errors.WithContext(err, "unmarshal")
	}

	rootNode, err := fromSnapshot(root)
	if err != nil {
		return nil, err
	}

	if rootNode.Kind != Folder {
		return nil, errors.New("model root must be a folder")
	}
	return &Model{root: rootNode}, nil
}

// Load reads the model snapshot at `path`. If the file doesn't exist, an
// empty model is returned so that the first run can start from scratch.
func Load(path string) (*Model, error) {
	snapshotBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.WithContext(err, "read file")
	}

	m, err := Unmarshal(snapshotBytes)
	if err != nil {
		return nil, errors.WithContext(err, "parse model snapshot")
	}
	return m, nil
}

// Save writes the model snapshot to `path`.
func Save(path string, m *Model) error {
	snapshotBytes, err := m.Marshal()
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, snapshotBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

func toSnapshot(n *Node) snapshotNode {
	snapshot := snapshotNode{
		ID:              n.ID,
		Name:            n.Name,
		Kind:            n.Kind.String(),
		DataType:        n.DataType,
		ArrayDimensions: n.ArrayDimensions,
	}
	if n.Link != nil {
		snapshot.Link = &snapshotLink{Target: n.Link.Target, Mode: n.Link.Mode.String()}
	}
	for _, child := range n.children {
		snapshot.Children = append(snapshot.Children, toSnapshot(child))
	}
	return snapshot
}

func fromSnapshot(snapshot snapshotNode) (*Node, error) {
	kind, ok := kindNames[snapshot.Kind]
	if !ok {
		return nil, errors.New("unknown node kind: " + snapshot.Kind)
	}

	n := &Node{
		ID:              snapshot.ID,
		Name:            snapshot.Name,
		Kind:            kind,
		DataType:        snapshot.DataType,
		ArrayDimensions: snapshot.ArrayDimensions,
	}
	if n.ID == uuid.Nil {
		n.ID = newID()
	}

	if snapshot.Link != nil {
		mode, ok := linkModeNames[snapshot.Link.Mode]
		if !ok {
			return nil, errors.New("unknown link mode: " + snapshot.Link.Mode)
		}
		n.Link = &DynamicLink{Target: snapshot.Link.Target, Mode: mode}
	}

	for _, childSnapshot := range snapshot.Children {
		child, err := fromSnapshot(childSnapshot)
		if err != nil {
			return nil, err
		}

		if err := n.Add(child); err != nil {
			return nil, errors.WithContext(err, "add child")
		}
	}
	return n, nil
}
