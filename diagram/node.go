// Package diagram lays out a machine description as a 2-D vector diagram and
// applies incremental highlight updates as state-change notices arrive.
//
// States are arranged on a circle whose radius grows with the state count,
// composite states recursively own child diagrams rendered in a panel row
// below the base chart, and connectors are routed through a per-variant
// anchor-point selection heuristic.
package diagram

import (
	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/svg"
)

// Layout constants. StateSpace is the angular spacing budget per normal
// state, Border the outer margin of the construction circle and
// SpecialNodeOffset the fixed corner placement of the initial node.
const (
	StateSpace        = 16.0
	Border            = 20.0
	SpecialNodeOffset = 8.0

	// MinDistance is the tolerance band around the shortest candidate
	// connection within which pairs still count as "shortest".
	MinDistance = 4.0
)

// Glyph metrics. All state variants draw a fixed-size rounded rectangle;
// pseudo-states draw small circles with a tight anchor ring.
const (
	stateWidth  = 14.0
	stateHeight = 8.0
	stateCorner = 2.0

	anchorNudge   = 1.0
	combinedNudge = 2.0

	pseudoAnchorRadius = 3.0
	initialRadius      = 2.0
	finalOuterRadius   = 2.6
	finalInnerRadius   = 1.4

	bubbleRadius = 2.0
)

const (
	nameStyle   = "font-size:4px;fill:#000000"
	bubbleText  = "font-size:2.5px;fill:#000000"
	glyphStyle  = "stroke-width:0px;stroke:none;fill:#000000"
	bubbleStyle = "stroke-width:0.5px;stroke:#000000;fill:#ffffff"
)

// VisualState is the mutable highlight flag of a node.
type VisualState int

const (
	// Normal is the default appearance of a node.
	Normal VisualState = iota
	// Highlighted marks the machine's active state.
	Highlighted
)

// styleFor maps a visual state to the style triple of a state rectangle.
func styleFor(v VisualState) string {
	if v == Highlighted {
		return svg.Style(1, "#c81919", "#fdeaea")
	}
	return svg.Style(1, "#000000", "#ffffff")
}

// pseudoStyleFor maps a visual state to the style triple of a filled
// pseudo-state glyph.
func pseudoStyleFor(v VisualState) string {
	if v == Highlighted {
		return svg.Style(1, "#c81919", "#c81919")
	}
	return svg.Style(1, "#000000", "#000000")
}

// Node is one rendered state of a diagram. The variant set is closed: plain,
// composite, history, deep-history, combined history/deep-history, initial
// and final. Implementations live in this package only.
type Node interface {
	ID() string
	Name() string
	Location() geometry.Point

	// OutgoingAnchors lists the candidate start anchors relative to the
	// node's center.
	OutgoingAnchors() []geometry.AnchorPoint

	// IncomingAnchors lists the candidate end anchors for a connection
	// carrying the given history flags, relative to the node's center.
	IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint

	// Highlight and Reset swap the node's primary visual element between
	// its highlighted and normal style. Both are idempotent.
	Highlight()
	Reset()
	Visual() VisualState

	// Render emits the node's vector primitives for its current visual
	// state.
	Render() svg.Element

	sealed()
}

// CompositeNode is implemented by the variants that own child diagrams.
type CompositeNode interface {
	Node
	Children() []*Diagram
	addChild(d *Diagram)
}

// nodeBase carries the identity, placement and highlight state shared by all
// variants.
type nodeBase struct {
	id       string
	name     string
	location geometry.Point
	visual   VisualState
}

func (n *nodeBase) ID() string               { return n.id }
func (n *nodeBase) Name() string             { return n.name }
func (n *nodeBase) Location() geometry.Point { return n.location }
func (n *nodeBase) Visual() VisualState      { return n.visual }
func (n *nodeBase) Highlight()               { n.visual = Highlighted }
func (n *nodeBase) Reset()                   { n.visual = Normal }
func (n *nodeBase) sealed()                  {}

// rectOutgoingAnchors returns the four edge anchors of a state rectangle
// with outward-pointing offsets of the given magnitude.
func rectOutgoingAnchors(nudge float64) []geometry.AnchorPoint {
	return []geometry.AnchorPoint{
		{Point: geometry.Point{X: 0, Y: -stateHeight / 2}, Offset: geometry.Point{X: 0, Y: -nudge}},
		{Point: geometry.Point{X: stateWidth / 2, Y: 0}, Offset: geometry.Point{X: nudge, Y: 0}},
		{Point: geometry.Point{X: 0, Y: stateHeight / 2}, Offset: geometry.Point{X: 0, Y: nudge}},
		{Point: geometry.Point{X: -stateWidth / 2, Y: 0}, Offset: geometry.Point{X: -nudge, Y: 0}},
	}
}

// rectIncomingAnchors returns the four edge anchors with inward-pointing
// offsets, so that an opposing outgoing/incoming pair trends colinear.
func rectIncomingAnchors() []geometry.AnchorPoint {
	return []geometry.AnchorPoint{
		{Point: geometry.Point{X: 0, Y: -stateHeight / 2}, Offset: geometry.Point{X: 0, Y: anchorNudge}},
		{Point: geometry.Point{X: stateWidth / 2, Y: 0}, Offset: geometry.Point{X: -anchorNudge, Y: 0}},
		{Point: geometry.Point{X: 0, Y: stateHeight / 2}, Offset: geometry.Point{X: 0, Y: -anchorNudge}},
		{Point: geometry.Point{X: -stateWidth / 2, Y: 0}, Offset: geometry.Point{X: anchorNudge, Y: 0}},
	}
}

// combinedIncomingAnchors is the incoming set of the combined
// history/deep-history variant when the connection targets neither bubble.
// The bottom offset is doubled to keep connectors clear of the bubbles.
func combinedIncomingAnchors() []geometry.AnchorPoint {
	anchors := rectIncomingAnchors()
	anchors[2].Offset = geometry.Point{X: 0, Y: -combinedNudge}
	return anchors
}

// stateRect renders the primary rounded rectangle of a state at the given
// location, styled for the given visual state.
func stateRect(location geometry.Point, v VisualState) *svg.Rect {
	return &svg.Rect{
		X:      location.X - stateWidth/2,
		Y:      location.Y - stateHeight/2,
		Width:  stateWidth,
		Height: stateHeight,
		Radius: stateCorner,
		Style:  styleFor(v),
	}
}

// stateLabel renders the centered name text of a state.
func stateLabel(location geometry.Point, name string) *svg.Text {
	return &svg.Text{X: location.X, Y: location.Y, Content: name, Centered: true, Style: nameStyle}
}
