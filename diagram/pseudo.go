package diagram

import (
	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/svg"
)

// pseudoAnchors is the tight four-anchor ring shared by the initial and
// final pseudo-states. The same set serves incoming and outgoing
// connections; the offsets point outward.
func pseudoAnchors() []geometry.AnchorPoint {
	return []geometry.AnchorPoint{
		{Point: geometry.Point{X: 0, Y: -pseudoAnchorRadius}, Offset: geometry.Point{X: 0, Y: -anchorNudge}},
		{Point: geometry.Point{X: pseudoAnchorRadius, Y: 0}, Offset: geometry.Point{X: anchorNudge, Y: 0}},
		{Point: geometry.Point{X: 0, Y: pseudoAnchorRadius}, Offset: geometry.Point{X: 0, Y: anchorNudge}},
		{Point: geometry.Point{X: -pseudoAnchorRadius, Y: 0}, Offset: geometry.Point{X: -anchorNudge, Y: 0}},
	}
}

// InitialState is the filled entry dot of a machine.
type InitialState struct {
	nodeBase
}

func newInitialState(id, name string, location geometry.Point) *InitialState {
	return &InitialState{nodeBase{id: id, name: name, location: location}}
}

func (n *InitialState) OutgoingAnchors() []geometry.AnchorPoint {
	return pseudoAnchors()
}

func (n *InitialState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	return pseudoAnchors()
}

func (n *InitialState) Render() svg.Element {
	return svg.NewGroup(
		&svg.Circle{CX: n.location.X, CY: n.location.Y, R: initialRadius, Style: pseudoStyleFor(n.visual)},
	)
}

// FinalState is the double-circle exit glyph of a machine. The outer ring is
// the primary visual element; the inner dot never changes.
type FinalState struct {
	nodeBase
}

func newFinalState(id, name string, location geometry.Point) *FinalState {
	return &FinalState{nodeBase{id: id, name: name, location: location}}
}

func (n *FinalState) OutgoingAnchors() []geometry.AnchorPoint {
	return pseudoAnchors()
}

func (n *FinalState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	return pseudoAnchors()
}

func (n *FinalState) Render() svg.Element {
	outer := svg.Style(0.5, "#000000", "#ffffff")
	if n.visual == Highlighted {
		outer = svg.Style(0.5, "#c81919", "#fdeaea")
	}
	return svg.NewGroup(
		&svg.Circle{CX: n.location.X, CY: n.location.Y, R: finalOuterRadius, Style: outer},
		&svg.Circle{CX: n.location.X, CY: n.location.Y, R: finalInnerRadius, Style: glyphStyle},
	)
}
