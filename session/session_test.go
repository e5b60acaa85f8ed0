package session

import (
	"strings"
	"testing"

	"github.com/frantoso/jasm-debugger/diagram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const machineX = `{
	"name": "X",
	"states": [
		{"id": "i", "name": "initial", "isInitial": true,
		 "transitions": [{"endPointId": "a"}]},
		{"id": "a", "name": "A", "transitions": [{"endPointId": "b"}]},
		{"id": "b", "name": "B", "transitions": [{"endPointId": "f", "isToFinal": true}]},
		{"id": "f", "name": "final", "isFinal": true}
	]
}`

func findVisual(t *testing.T, s *Session, id string) diagram.VisualState {
	t.Helper()
	_, node := s.diagram.FindNode(id)
	require.NotNil(t, node, "node %s", id)
	return node.Visual()
}

func TestSetMachineCreatesSession(t *testing.T) {
	m := NewManager(nil)

	s, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)
	assert.Equal(t, Key{ConnectionID: "conn-1", MachineName: "X"}, s.Key())
	assert.Len(t, s.diagram.Nodes(), 4)
	assert.Contains(t, m.Sessions(), s.Key())
}

func TestSetMachineRejectsBadPayload(t *testing.T) {
	m := NewManager(nil)

	_, err := m.SetMachine("conn-1", []byte(`{"name": "X", "states": []}`))
	require.Error(t, err)
	assert.Empty(t, m.Sessions(), "no partial session may be installed")
}

func TestSetMachineReplacesDiagramWholesale(t *testing.T) {
	m := NewManager(nil)

	s1, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)
	first := s1.diagram

	s2, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)
	assert.Same(t, s1, s2, "same key keeps the same session")
	assert.NotSame(t, first, s2.diagram, "diagram must be rebuilt")
}

func TestStateChangedHighlightsAndResets(t *testing.T) {
	m := NewManager(nil)
	s, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)

	_, err = m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateName": "initial", "oldStateId": "i",
		"newStateName": "A", "newStateId": "a"
	}`))
	require.NoError(t, err)
	assert.Equal(t, diagram.Highlighted, findVisual(t, s, "a"))

	_, err = m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateName": "A", "oldStateId": "a",
		"newStateName": "B", "newStateId": "b"
	}`))
	require.NoError(t, err)
	assert.Equal(t, diagram.Normal, findVisual(t, s, "a"))
	assert.Equal(t, diagram.Highlighted, findVisual(t, s, "b"))
}

func TestInitialTransitionResetsWholeChart(t *testing.T) {
	m := NewManager(nil)
	s, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)

	// Light up two nodes, then replay the machine from its entry point.
	_, a := s.diagram.FindNode("a")
	_, b := s.diagram.FindNode("b")
	a.Highlight()
	b.Highlight()

	_, err = m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateName": "InitialState", "oldStateId": "i",
		"newStateName": "A", "newStateId": "a"
	}`))
	require.NoError(t, err)

	assert.Equal(t, diagram.Normal, findVisual(t, s, "b"), "initial transition resets every node")
	assert.Equal(t, diagram.Highlighted, findVisual(t, s, "a"), "new state is highlighted after the reset")
}

func TestStateChangedWithoutSessionIsNoop(t *testing.T) {
	m := NewManager(nil)

	s, err := m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateId": "a", "newStateId": "b"
	}`))
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Empty(t, m.Sessions())
}

func TestStateChangedToleratesUnknownIDs(t *testing.T) {
	m := NewManager(nil)
	s, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)

	_, err = m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateName": "Internal", "oldStateId": "ghost-old",
		"newStateName": "AlsoInternal", "newStateId": "ghost-new"
	}`))
	require.NoError(t, err)

	for _, n := range s.diagram.Nodes() {
		assert.Equal(t, diagram.Normal, n.Visual())
	}
}

func TestStateChangedRejectsBadPayload(t *testing.T) {
	m := NewManager(nil)
	_, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)

	_, err = m.StateChanged("conn-1", []byte(`{broken`))
	assert.Error(t, err)
}

func TestSessionsAreIndependentPerConnection(t *testing.T) {
	m := NewManager(nil)

	s1, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)
	s2, err := m.SetMachine("conn-2", []byte(machineX))
	require.NoError(t, err)

	_, err = m.StateChanged("conn-1", []byte(`{
		"machineName": "X",
		"oldStateName": "A", "oldStateId": "a",
		"newStateName": "B", "newStateId": "b"
	}`))
	require.NoError(t, err)

	assert.Equal(t, diagram.Highlighted, findVisual(t, s1, "b"))
	assert.Equal(t, diagram.Normal, findVisual(t, s2, "b"))
}

func TestDropConnection(t *testing.T) {
	m := NewManager(nil)
	_, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)
	_, err = m.SetMachine("conn-2", []byte(machineX))
	require.NoError(t, err)

	m.DropConnection("conn-1")

	assert.Len(t, m.Sessions(), 1)
	assert.Nil(t, m.Session(Key{ConnectionID: "conn-1", MachineName: "X"}))
	assert.NotNil(t, m.Session(Key{ConnectionID: "conn-2", MachineName: "X"}))
}

func TestWriteDocument(t *testing.T) {
	m := NewManager(nil)
	s, err := m.SetMachine("conn-1", []byte(machineX))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, s.WriteDocument(&sb))
	assert.Contains(t, sb.String(), "<svg")
	assert.Contains(t, sb.String(), "viewBox=\"0 0 ")

	empty := &Session{key: Key{ConnectionID: "c", MachineName: "m"}}
	assert.Error(t, empty.WriteDocument(&strings.Builder{}))
}
