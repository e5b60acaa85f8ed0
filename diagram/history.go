package diagram

import (
	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/svg"
)

// Bubble centers relative to the node, on the lower edge of the rectangle.
var (
	historyBubbleCenter = geometry.Point{X: -stateWidth / 4, Y: stateHeight / 2}
	deepBubbleCenter    = geometry.Point{X: stateWidth / 4, Y: stateHeight / 2}
)

// bubbleAnchor is the dedicated incoming anchor below a history bubble.
func bubbleAnchor(center geometry.Point) []geometry.AnchorPoint {
	return []geometry.AnchorPoint{{
		Point:  geometry.Point{X: center.X, Y: center.Y + bubbleRadius},
		Offset: geometry.Point{X: 0, Y: anchorNudge},
	}}
}

// bubbleGlyph renders a history bubble with its letter. Bubbles are
// decorative: they never change with the node's visual state.
func bubbleGlyph(location, center geometry.Point, letter string) []svg.Element {
	cx := location.X + center.X
	cy := location.Y + center.Y
	return []svg.Element{
		&svg.Circle{CX: cx, CY: cy, R: bubbleRadius, Style: bubbleStyle},
		&svg.Text{X: cx, Y: cy, Content: letter, Centered: true, Style: bubbleText},
	}
}

// HistoryState is a composite state with a history bubble. The bubble anchor
// is selected only for connections explicitly flagged as history
// transitions; everything else lands on the rectangle edges.
type HistoryState struct {
	compositeBase
}

func newHistoryState(id, name string, location geometry.Point) *HistoryState {
	return &HistoryState{compositeBase{nodeBase: nodeBase{id: id, name: name, location: location}}}
}

func (n *HistoryState) OutgoingAnchors() []geometry.AnchorPoint {
	return rectOutgoingAnchors(anchorNudge)
}

func (n *HistoryState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	if isHistory {
		return bubbleAnchor(historyBubbleCenter)
	}
	return rectIncomingAnchors()
}

func (n *HistoryState) Render() svg.Element {
	g := svg.NewGroup(
		stateRect(n.location, n.visual),
		stateLabel(n.location, n.name),
	)
	g.Add(bubbleGlyph(n.location, historyBubbleCenter, "H")...)
	return g
}

// DeepHistoryState is the deep-history counterpart of HistoryState with its
// own bubble glyph.
type DeepHistoryState struct {
	compositeBase
}

func newDeepHistoryState(id, name string, location geometry.Point) *DeepHistoryState {
	return &DeepHistoryState{compositeBase{nodeBase: nodeBase{id: id, name: name, location: location}}}
}

func (n *DeepHistoryState) OutgoingAnchors() []geometry.AnchorPoint {
	return rectOutgoingAnchors(anchorNudge)
}

func (n *DeepHistoryState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	if isDeepHistory {
		return bubbleAnchor(deepBubbleCenter)
	}
	return rectIncomingAnchors()
}

func (n *DeepHistoryState) Render() svg.Element {
	g := svg.NewGroup(
		stateRect(n.location, n.visual),
		stateLabel(n.location, n.name),
	)
	g.Add(bubbleGlyph(n.location, deepBubbleCenter, "H*")...)
	return g
}

// HistoryDeepHistoryState carries both bubbles. The history bubble is tested
// before the deep-history bubble, so a connection flagged with both targets
// the history bubble. Its edge anchors differ from the plain set to keep
// connectors visually separated from the two bubbles.
type HistoryDeepHistoryState struct {
	compositeBase
}

func newHistoryDeepHistoryState(id, name string, location geometry.Point) *HistoryDeepHistoryState {
	return &HistoryDeepHistoryState{compositeBase{nodeBase: nodeBase{id: id, name: name, location: location}}}
}

func (n *HistoryDeepHistoryState) OutgoingAnchors() []geometry.AnchorPoint {
	return rectOutgoingAnchors(combinedNudge)
}

func (n *HistoryDeepHistoryState) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	// History takes precedence over deep history when both are requested.
	if isHistory {
		return bubbleAnchor(historyBubbleCenter)
	}
	if isDeepHistory {
		return bubbleAnchor(deepBubbleCenter)
	}
	return combinedIncomingAnchors()
}

func (n *HistoryDeepHistoryState) Render() svg.Element {
	g := svg.NewGroup(
		stateRect(n.location, n.visual),
		stateLabel(n.location, n.name),
	)
	g.Add(bubbleGlyph(n.location, historyBubbleCenter, "H")...)
	g.Add(bubbleGlyph(n.location, deepBubbleCenter, "H*")...)
	return g
}
