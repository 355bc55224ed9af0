package sync

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/sync/mocks"
	"github.com/sidkik/tagmirror/pkg/tags"
)

func plcTags() *tags.Tree {
	return tags.NewTree(tags.NewFolder("PLC",
		tags.NewFolder("Station1",
			tags.NewVariable("Speed", "Float"),
			tags.NewStructure("Pump", nil,
				tags.NewVariable("Pressure", "Float"),
				tags.NewVariable("Flow/Rate", "Float"),
			),
			tags.NewStructure("Motors", []uint32{2},
				tags.NewVariable("ArrayDimensions", "UInt32", 1),
				tags.NewVariable("Running", "Boolean"),
				tags.NewStructure("Setpoint", nil,
					tags.NewVariable("Value", "Int32"),
				),
			),
		),
	))
}

var plcModel = []string{
	"/Model/Station1 folder",
	"/Model/Station1/Speed variable Float -> /Station1/Speed (readwrite)",
	"/Model/Station1/Pump object",
	"/Model/Station1/Pump/Pressure variable Float -> /Station1/Pump/Pressure (readwrite)",
	"/Model/Station1/Pump/Flow_Rate variable Float -> /Station1/Pump/Flow%2FRate (readwrite)",
	"/Model/Station1/Motors_Running variable Boolean -> /Station1/Motors/Running (readwrite)",
	"/Model/Station1/Motors_Setpoint object",
	"/Model/Station1/Motors_Setpoint/Value variable Int32 -> /Station1/Motors/Setpoint/Value (readwrite)",
}

func newTestModel(t *testing.T, tree *tags.Tree) (*model.Model, *model.Node) {
	m := model.New()
	m.SetTags(tree)

	target := m.MakeFolder("Model")
	require.NoError(t, m.Add(m.Root(), target))
	return m, target
}

func generate(t *testing.T, m *model.Model, target *model.Node, startPath string,
	deleteExisting bool) Stats {

	log, _ := logrusTest.NewNullLogger()
	start, ok := m.Tags().Get(startPath)
	require.True(t, ok)

	walker := NewWalker(m, log)
	require.NoError(t, walker.GenerateNodes(start, target, deleteExisting))
	return walker.Stats()
}

// describe renders every node below `root` as a line, in depth-first order.
func describe(root *model.Node) []string {
	var lines []string
	var walk func(*model.Node)
	walk = func(n *model.Node) {
		for _, child := range n.Children() {
			line := child.Path() + " " + child.Kind.String()
			if child.Kind == model.Variable {
				line += " " + child.DataType
				if len(child.ArrayDimensions) != 0 {
					line += fmt.Sprint(child.ArrayDimensions)
				}
			}
			if child.Link != nil {
				line += fmt.Sprintf(" -> %s (%s)", child.Link.Target, child.Link.Mode)
			}
			lines = append(lines, line)
			walk(child)
		}
	}
	walk(root)
	return lines
}

func TestGenerateNodes(t *testing.T) {
	m, target := newTestModel(t, plcTags())

	stats := generate(t, m, target, "/", false)
	assert.Equal(t, plcModel, describe(target))
	assert.Equal(t, Stats{Created: 8, Skipped: 1}, stats)
}

func TestGenerateNodesStartingNodeNotCreated(t *testing.T) {
	m, target := newTestModel(t, plcTags())

	generate(t, m, target, "/Station1", false)

	var exp []string
	for _, line := range plcModel[1:] {
		exp = append(exp, strings.Replace(line, "/Model/Station1/", "/Model/", 1))
	}
	assert.Equal(t, exp, describe(target))

	_, ok := m.Get("/Model/Station1")
	assert.False(t, ok)
}

func TestGenerateNodesStartingAtVariable(t *testing.T) {
	m, target := newTestModel(t, plcTags())

	generate(t, m, target, "/Station1/Speed", false)
	assert.Equal(t, []string{
		"/Model/Speed variable Float -> /Station1/Speed (readwrite)",
	}, describe(target))
}

func TestGenerateNodesIdempotent(t *testing.T) {
	m, target := newTestModel(t, plcTags())
	generate(t, m, target, "/", false)

	ids := map[string]string{}
	for _, n := range m.FindDynamicLinks(target) {
		ids[n.Path()] = n.ID.String()
	}

	stats := generate(t, m, target, "/", false)
	assert.Equal(t, plcModel, describe(target))
	assert.Equal(t, Stats{Updated: 7, Skipped: 1}, stats)

	for _, n := range m.FindDynamicLinks(target) {
		assert.Equal(t, ids[n.Path()], n.ID.String(), n.Path())
	}
}

func TestGenerateNodesDeleteExistingTags(t *testing.T) {
	m, target := newTestModel(t, plcTags())
	generate(t, m, target, "/", false)

	station, ok := m.Get("/Model/Station1")
	require.True(t, ok)
	require.NoError(t, m.Add(station, m.MakeVariable("Manual", "String", nil)))
	require.NoError(t, m.Add(target, m.MakeVariable("Unrelated", "String", nil)))

	// The manually added variable is kept if DeleteExistingTags is false.
	stats := generate(t, m, target, "/", false)
	assert.Zero(t, stats.Cleared)
	_, ok = m.Get("/Model/Station1/Manual")
	assert.True(t, ok)

	// The folder is wiped and rebuilt if DeleteExistingTags is true. The
	// target folder itself is never wiped.
	stats = generate(t, m, target, "/", true)
	assert.Equal(t, Stats{Created: 7, Cleared: 1, Skipped: 1}, stats)
	_, ok = m.Get("/Model/Station1/Manual")
	assert.False(t, ok)
	_, ok = m.Get("/Model/Unrelated")
	assert.True(t, ok)

	exp := append([]string{}, plcModel...)
	exp = append(exp, "/Model/Unrelated variable String")
	assert.Equal(t, exp, describe(target))
}

func TestGenerateNodesObjectsNeverWiped(t *testing.T) {
	m, target := newTestModel(t, plcTags())
	generate(t, m, target, "/", false)

	pump, ok := m.Get("/Model/Station1/Pump")
	require.True(t, ok)
	require.NoError(t, m.Add(pump, m.MakeVariable("Manual", "String", nil)))

	// Starting at the station means the station folder is the target, and
	// the pump object is only ever updated.
	station, ok := m.Get("/Model/Station1")
	require.True(t, ok)
	generate(t, m, station, "/Station1", true)

	_, ok = m.Get("/Model/Station1/Pump/Manual")
	assert.True(t, ok)
}

func TestGenerateNodesNameCollisions(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewStructure("Motors", []uint32{2},
			tags.NewVariable("ArrayDimensions", "UInt32", 1),
			tags.NewVariable("Speed", "Float"),
		),
		tags.NewVariable("Motors_Speed", "Double"),
		tags.NewVariable("Flow/Rate", "Float"),
		tags.NewVariable("Flow_Rate", "Int32"),
	))
	m, target := newTestModel(t, tree)

	stats := generate(t, m, target, "/", false)
	assert.Equal(t, []string{
		"/Model/Motors_Speed variable Double -> /Motors_Speed (readwrite)",
		"/Model/Flow_Rate variable Int32 -> /Flow_Rate (readwrite)",
	}, describe(target))
	assert.Equal(t, Stats{Created: 2, Updated: 2, Skipped: 1}, stats)
}

func TestGenerateNodesSlashedNames(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewVariable("Flow/Rate", "Float"),
		tags.NewFolder("Flow",
			tags.NewVariable("Rate", "Int32"),
		),
	))
	m, target := newTestModel(t, tree)

	generate(t, m, target, "/", false)
	assert.Equal(t, []string{
		"/Model/Flow_Rate variable Float -> /Flow%2FRate (readwrite)",
		"/Model/Flow folder",
		"/Model/Flow/Rate variable Int32 -> /Flow/Rate (readwrite)",
	}, describe(target))

	// Each variable is linked to the tag it was generated from.
	for _, variable := range m.FindDynamicLinks(target) {
		tag, ok := m.ResolveLink(*variable.Link)
		require.True(t, ok, variable.Path())
		assert.Equal(t, variable.DataType, tag.DataType, variable.Path())
	}
	log, _ := logrusTest.NewNullLogger()
	assert.Empty(t, CheckDynamicLinks(m, log, target))
}

func TestGenerateNodesDotNames(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewFolder("..",
			tags.NewVariable("X", "Int32"),
		),
	))
	m, target := newTestModel(t, tree)
	log, _ := logrusTest.NewNullLogger()
	start, ok := m.Tags().Get("/")
	require.True(t, ok)

	// The folder isn't mistaken for the starting node, so the model rejects
	// its name rather than generating its contents into the target.
	err := NewWalker(m, log).GenerateNodes(start, target, false)
	assert.EqualError(t, err, `add folder: invalid node name ".."`)
	assert.Empty(t, describe(target))
}

func TestGenerateNodesArrayPrefixes(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewStructure("Line", []uint32{2},
			tags.NewVariable("ArrayDimensions", "UInt32", 1),
			tags.NewStructure("Axes", []uint32{3},
				tags.NewVariable("arraydimensions", "UInt32", 1),
				tags.NewVariable("Position", "Double"),
			),
			tags.NewStructure("Drive", nil,
				tags.NewVariable("Current", "Float"),
				tags.NewStructure("Fans", []uint32{4},
					tags.NewVariable("Rpm", "UInt16"),
				),
			),
		),
		tags.NewStructure("Cell", nil,
			tags.NewStructure("Robots", []uint32{2},
				tags.NewVariable("Busy", "Boolean"),
			),
		),
	))
	m, target := newTestModel(t, tree)

	generate(t, m, target, "/", false)
	assert.Equal(t, []string{
		"/Model/Line_Axes_Position variable Double -> /Line/Axes/Position (readwrite)",
		"/Model/Line_Drive object",
		"/Model/Line_Drive/Current variable Float -> /Line/Drive/Current (readwrite)",
		"/Model/Line_Drive/Fans_Rpm variable UInt16 -> /Line/Drive/Fans/Rpm (readwrite)",
		"/Model/Cell object",
		"/Model/Cell/Robots_Busy variable Boolean -> /Cell/Robots/Busy (readwrite)",
	}, describe(target))
}

func TestGenerateNodesSkipsArrayDimensions(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewVariable("ArrayDimensions", "UInt32", 1),
		tags.NewFolder("Area",
			tags.NewVariable("MyArrayDimensions", "UInt32", 1),
			tags.NewStructure("ARRAYDIMENSIONS", nil,
				tags.NewVariable("Hidden", "Int32"),
			),
			tags.NewStructure("Valve", nil,
				tags.NewVariable("ArrayDimensions", "UInt32", 1),
				tags.NewVariable("Open", "Boolean"),
			),
		),
	))
	m, target := newTestModel(t, tree)

	stats := generate(t, m, target, "/", false)
	assert.Equal(t, []string{
		"/Model/Area folder",
		"/Model/Area/Valve object",
		"/Model/Area/Valve/Open variable Boolean -> /Area/Valve/Open (readwrite)",
	}, describe(target))
	assert.Equal(t, 4, stats.Skipped)

	// A starting node that is itself an array dimension node generates
	// nothing.
	marker, ok := tree.Get("/ArrayDimensions")
	require.True(t, ok)

	log, _ := logrusTest.NewNullLogger()
	empty := model.New()
	require.NoError(t, NewWalker(empty, log).GenerateNodes(marker, empty.Root(), false))
	assert.Empty(t, empty.Root().Children())
}

func TestGenerateNodesExclude(t *testing.T) {
	m, target := newTestModel(t, plcTags())
	log, _ := logrusTest.NewNullLogger()
	start, ok := m.Tags().Get("/")
	require.True(t, ok)

	walker := NewWalker(m, log, "**/Pump", "Station1/Motors/*")
	require.NoError(t, walker.GenerateNodes(start, target, false))

	assert.Equal(t, []string{
		"/Model/Station1 folder",
		"/Model/Station1/Speed variable Float -> /Station1/Speed (readwrite)",
	}, describe(target))

	// The array marker is skipped before the patterns are checked, and the
	// Pump's variables are never visited.
	assert.Equal(t, Stats{Created: 2, Skipped: 1, Excluded: 3}, walker.Stats())
}

func TestGenerateNodesUnknownKind(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		&tags.Node{Name: "Mystery", Kind: tags.Unknown, DataType: "String"},
	))
	m, target := newTestModel(t, tree)

	generate(t, m, target, "/", false)
	assert.Equal(t, []string{
		"/Model/Mystery variable String -> /Mystery (readwrite)",
	}, describe(target))
}

func TestGenerateNodesRefreshesBindings(t *testing.T) {
	m, target := newTestModel(t, plcTags())
	generate(t, m, target, "/", false)

	speed, ok := m.Get("/Model/Station1/Speed")
	require.True(t, ok)
	id := speed.ID

	retyped := plcTags()
	retypedSpeed, ok := retyped.Get("/Station1/Speed")
	require.True(t, ok)
	retypedSpeed.DataType = "Double"
	retypedSpeed.ArrayDimensions = []uint32{4}
	m.SetTags(retyped)

	generate(t, m, target, "/", false)

	speed, ok = m.Get("/Model/Station1/Speed")
	require.True(t, ok)
	assert.Equal(t, id, speed.ID)
	assert.Equal(t, "Double", speed.DataType)
	assert.Equal(t, &model.DynamicLink{Target: "/Station1/Speed", Mode: model.ReadWrite}, speed.Link)

	// The array dimensions of existing variables aren't updated.
	assert.Empty(t, speed.ArrayDimensions)

	tag, ok := m.ResolveLink(*speed.Link)
	assert.True(t, ok)
	assert.Equal(t, retypedSpeed, tag)
}

func TestGenerateNodesKindMismatch(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewVariable("Before", "Int32"),
		tags.NewVariable("Speed", "Float"),
		tags.NewVariable("After", "Int32"),
	))
	m, target := newTestModel(t, tree)
	require.NoError(t, m.Add(target, m.MakeObject("Speed")))

	log, _ := logrusTest.NewNullLogger()
	walker := NewWalker(m, log)
	err := walker.GenerateNodes(tree.Root, target, false)
	assert.EqualError(t, err, `add variable: "/Model" already has a child named "Speed"`)

	// Nodes generated before the failure are kept.
	assert.Equal(t, []string{
		"/Model/Speed object",
		"/Model/Before variable Int32 -> /Before (readwrite)",
	}, describe(target))
	assert.Equal(t, Stats{Created: 1}, walker.Stats())
}

func TestGenerateNodesCreationFailure(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewVariable("First", "Int32"),
		tags.NewVariable("Second", "Int32"),
		tags.NewVariable("Third", "Int32"),
	))
	first, _ := tree.Get("/First")

	m := model.New()
	target := m.MakeFolder("Model")
	firstVar := m.MakeVariable("First", "Int32", nil)
	secondVar := m.MakeVariable("Second", "Int32", nil)

	mockModel := &mocks.Model{}
	mockModel.On("LookupChild", target, "First").Return(nil, false).Once()
	mockModel.On("MakeVariable", "First", "Int32", mock.Anything).Return(firstVar).Once()
	mockModel.On("Add", target, firstVar).Return(nil).Once()
	mockModel.On("SetDynamicLink", firstVar, first, model.ReadWrite).Return(nil).Once()
	mockModel.On("LookupChild", target, "Second").Return(nil, false).Once()
	mockModel.On("MakeVariable", "Second", "Int32", mock.Anything).Return(secondVar).Once()
	mockModel.On("Add", target, secondVar).Return(assert.AnError).Once()

	log, _ := logrusTest.NewNullLogger()
	err := NewWalker(mockModel, log).GenerateNodes(tree.Root, target, false)
	assert.EqualError(t, err, "add variable: "+assert.AnError.Error())

	mockModel.AssertExpectations(t)
	mockModel.AssertNotCalled(t, "LookupChild", target, "Third")
	mockModel.AssertNotCalled(t, "ClearChildren", mock.Anything)
}

func TestGenerateNodesLogs(t *testing.T) {
	tree := tags.NewTree(tags.NewFolder("PLC",
		tags.NewFolder("Area",
			tags.NewVariable("Level", "Float"),
		),
	))
	m, target := newTestModel(t, tree)

	type logEntry struct {
		level   logrus.Level
		message string
		node    string
	}

	tests := []struct {
		name           string
		deleteExisting bool
		exp            []logEntry
	}{
		{
			name: "Create",
			exp: []logEntry{
				{logrus.InfoLevel, "Creating folder", "/Model/Area"},
				{logrus.InfoLevel, "Creating variable", "/Model/Area/Level"},
			},
		},
		{
			name: "Update",
			exp: []logEntry{
				{logrus.InfoLevel, "Folder already exists, skipping creation or deletion " +
					"of its contents (DeleteExistingTags is set to false)", "/Model/Area"},
				{logrus.InfoLevel, "Updating variable", "/Model/Area/Level"},
			},
		},
		{
			name:           "Delete",
			deleteExisting: true,
			exp: []logEntry{
				{logrus.InfoLevel, "Deleting folder contents " +
					"(DeleteExistingTags is set to true)", "/Model/Area"},
				{logrus.InfoLevel, "Creating variable", "/Model/Area/Level"},
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			log, hook := logrusTest.NewNullLogger()
			err := NewWalker(m, log).GenerateNodes(tree.Root, target, test.deleteExisting)
			require.NoError(t, err)

			var actual []logEntry
			for _, entry := range hook.AllEntries() {
				actual = append(actual, logEntry{
					level:   entry.Level,
					message: entry.Message,
					node:    entry.Data["node"].(string),
				})
			}
			assert.Equal(t, test.exp, actual)
		})
	}
}
