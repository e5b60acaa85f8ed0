package diagram

import (
	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/model"
)

// newNode maps the shape of a state description to the matching node
// variant. Pseudo-states win over everything; the history flags win over
// plain children because a history bubble only makes sense on a composite.
func newNode(state *model.StateInfo, location geometry.Point) Node {
	switch {
	case state.IsInitial:
		return newInitialState(state.ID, state.Name, location)
	case state.IsFinal:
		return newFinalState(state.ID, state.Name, location)
	case state.HasHistory && state.HasDeepHistory:
		return newHistoryDeepHistoryState(state.ID, state.Name, location)
	case state.HasHistory:
		return newHistoryState(state.ID, state.Name, location)
	case state.HasDeepHistory:
		return newDeepHistoryState(state.ID, state.Name, location)
	case state.HasChildren():
		return newCompositeState(state.ID, state.Name, location)
	default:
		return newPlainState(state.ID, state.Name, location)
	}
}
