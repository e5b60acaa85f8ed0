package diagram

import (
	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/svg"
)

// PlainState is a leaf state without history or children: a fixed-size
// rounded rectangle with one anchor per edge.
type PlainState struct {
	nodeBase
}

func newPlainState(id, name string, location geometry.Point) *PlainState {
	return &PlainState{nodeBase{id: id, name: name, location: location}}
}

func (n *PlainState) OutgoingAnchors() []geometry.AnchorPoint {
	return rectOutgoingAnchors(anchorNudge)
}

func (n *PlainState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	return rectIncomingAnchors()
}

func (n *PlainState) Render() svg.Element {
	return svg.NewGroup(
		stateRect(n.location, n.visual),
		stateLabel(n.location, n.name),
	)
}

// compositeBase extends nodeBase with owned child diagrams, one per
// sub-chart of the composite state.
type compositeBase struct {
	nodeBase
	children []*Diagram
}

func (n *compositeBase) Children() []*Diagram { return n.children }
func (n *compositeBase) addChild(d *Diagram)  { n.children = append(n.children, d) }

// ellipsisGlyph is the decorative three-dot marker of composite states. It
// never changes with the visual state.
func ellipsisGlyph(location geometry.Point) svg.Element {
	y := location.Y + stateHeight/2 - 1.2
	g := svg.NewGroup()
	for _, dx := range []float64{-1.6, 0, 1.6} {
		g.Add(&svg.Circle{CX: location.X + dx, CY: y, R: 0.4, Style: glyphStyle})
	}
	return g
}

// CompositeState is a state owning nested machines but no history bubbles.
// Apart from the ellipsis glyph and its children it behaves as a plain state.
type CompositeState struct {
	compositeBase
}

func newCompositeState(id, name string, location geometry.Point) *CompositeState {
	return &CompositeState{compositeBase{nodeBase: nodeBase{id: id, name: name, location: location}}}
}

func (n *CompositeState) OutgoingAnchors() []geometry.AnchorPoint {
	return rectOutgoingAnchors(anchorNudge)
}

func (n *CompositeState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	return rectIncomingAnchors()
}

func (n *CompositeState) Render() svg.Element {
	return svg.NewGroup(
		stateRect(n.location, n.visual),
		stateLabel(n.location, n.name),
		ellipsisGlyph(n.location),
	)
}
