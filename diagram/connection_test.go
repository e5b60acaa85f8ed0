package diagram

import (
	"math"
	"testing"

	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/svg"
)

// minCandidateDistance recomputes the globally minimal candidate distance
// the same way selectConnection enumerates candidates.
func minCandidateDistance(start, end Node, isHistory, isDeepHistory bool) float64 {
	best := math.Inf(1)
	for _, o := range start.OutgoingAnchors() {
		out := o.Translate(start.Location())
		for _, i := range end.IncomingAnchors(isHistory, isDeepHistory) {
			in := i.Translate(end.Location())
			if d := geometry.Distance(out.Offsetted(), in.Offsetted()); d < best {
				best = d
			}
		}
	}
	return best
}

func TestSelectConnectionDeterministic(t *testing.T) {
	a := newPlainState("a", "A", geometry.Point{X: 40, Y: 20})
	b := newPlainState("b", "B", geometry.Point{X: 40, Y: 60})
	center := geometry.Point{X: 40, Y: 40}

	first := selectConnection(a, b, false, false, center, 20)
	for i := 0; i < 10; i++ {
		got := selectConnection(a, b, false, false, center, 20)
		if got != first {
			t.Fatalf("selection not deterministic: %v vs %v", got, first)
		}
	}
}

func TestSelectConnectionPicksClosestEdges(t *testing.T) {
	// b sits directly below a, far outside any tolerance overlap: the
	// connector must run bottom edge to top edge.
	a := newPlainState("a", "A", geometry.Point{X: 40, Y: 20})
	b := newPlainState("b", "B", geometry.Point{X: 40, Y: 60})

	conn := selectConnection(a, b, false, false, geometry.Point{X: 200, Y: 200}, 1)

	if conn.Start != (geometry.Point{X: 40, Y: 20 + stateHeight/2}) {
		t.Errorf("start = %v, want bottom edge of a", conn.Start)
	}
	if conn.End != (geometry.Point{X: 40, Y: 60 - stateHeight/2}) {
		t.Errorf("end = %v, want top edge of b", conn.End)
	}
}

func TestSelectConnectionWithinToleranceOfMinimum(t *testing.T) {
	starts := []Node{
		newPlainState("a", "A", geometry.Point{X: 28, Y: 20}),
		newHistoryDeepHistoryState("h", "H", geometry.Point{X: 20, Y: 52}),
		newInitialState("i", "", geometry.Point{X: 8, Y: 8}),
	}
	ends := []Node{
		newPlainState("b", "B", geometry.Point{X: 52, Y: 44}),
		newFinalState("f", "", geometry.Point{X: 56, Y: 8}),
	}
	center := geometry.Point{X: 28, Y: 28}

	for _, s := range starts {
		for _, e := range ends {
			conn := selectConnection(s, e, false, false, center, 8)
			got := geometry.Distance(conn.Start, conn.End)
			minDist := minCandidateDistance(s, e, false, false)
			// The chosen pair's offset distance is within the band; the
			// final points differ from the offset points by at most the
			// two offsets.
			if got > minDist+MinDistance+2*combinedNudge {
				t.Errorf("%s->%s: distance %v exceeds minimum %v plus tolerance", s.ID(), e.ID(), got, minDist)
			}
		}
	}
}

// testNode pins the selection steps with hand-picked anchor sets.
type testNode struct {
	nodeBase
	out []geometry.AnchorPoint
	in  []geometry.AnchorPoint
}

func (n *testNode) OutgoingAnchors() []geometry.AnchorPoint { return n.out }
func (n *testNode) IncomingAnchors(isHistory, isDeepHistory bool) []geometry.AnchorPoint {
	return n.in
}
func (n *testNode) Render() svg.Element { return svg.NewGroup() }

func TestSelectConnectionOutsidePreference(t *testing.T) {
	center := geometry.Point{}
	inStart := geometry.AnchorPoint{Point: geometry.Point{X: 0, Y: 5}}   // inside r=10
	outStart := geometry.AnchorPoint{Point: geometry.Point{X: 0, Y: 11}} // outside
	inEnd := geometry.AnchorPoint{Point: geometry.Point{X: 4, Y: 5}}
	outEnd := geometry.AnchorPoint{Point: geometry.Point{X: 4, Y: 11}}

	node := func(out, in []geometry.AnchorPoint) *testNode {
		return &testNode{out: out, in: in}
	}

	// Both an inside-inside and an outside-outside pair sit in the
	// tolerance band at the same distance; both-outside wins even though
	// the inside pair enumerates first.
	conn := selectConnection(
		node([]geometry.AnchorPoint{inStart, outStart}, nil),
		node(nil, []geometry.AnchorPoint{inEnd, outEnd}),
		false, false, center, 10)
	if conn.Start != outStart.Point || conn.End != outEnd.Point {
		t.Errorf("both-outside pair should win, got %v", conn)
	}

	// Without an outside end anchor no pair has both endpoints outside;
	// the first pair with at least one endpoint outside wins.
	conn = selectConnection(
		node([]geometry.AnchorPoint{inStart, outStart}, nil),
		node(nil, []geometry.AnchorPoint{inEnd}),
		false, false, center, 10)
	if conn.Start != outStart.Point || conn.End != inEnd.Point {
		t.Errorf("one-outside pair should win, got %v", conn)
	}

	// With everything inside a huge circle the shortest pair wins.
	conn = selectConnection(
		node([]geometry.AnchorPoint{inStart, outStart}, nil),
		node(nil, []geometry.AnchorPoint{inEnd, outEnd}),
		false, false, center, 100)
	if conn.Start != inStart.Point || conn.End != inEnd.Point {
		t.Errorf("shortest pair should win inside the circle, got %v", conn)
	}
}

func TestHistoryBubblePrecedence(t *testing.T) {
	n := newHistoryDeepHistoryState("h", "H", geometry.Point{X: 0, Y: 0})

	// A connection flagged with both history kinds targets the history
	// bubble, not the deep-history bubble.
	both := n.IncomingAnchors(true, true)
	if len(both) != 1 {
		t.Fatalf("bubble anchor set size = %d, want 1", len(both))
	}
	if both[0].Point.X != historyBubbleCenter.X {
		t.Errorf("history bubble must win when both flags are set, got anchor at %v", both[0].Point)
	}

	deep := n.IncomingAnchors(false, true)
	if deep[0].Point.X != deepBubbleCenter.X {
		t.Errorf("deep-history connection should target the deep bubble, got %v", deep[0].Point)
	}

	plain := n.IncomingAnchors(false, false)
	if len(plain) != 4 {
		t.Errorf("plain connection should fall back to the edge anchors, got %d", len(plain))
	}
}

func TestCombinedVariantAnchorOffsetsDiffer(t *testing.T) {
	combined := newHistoryDeepHistoryState("h", "H", geometry.Point{})
	plain := newPlainState("p", "P", geometry.Point{})

	if combined.OutgoingAnchors()[0].Offset == plain.OutgoingAnchors()[0].Offset {
		t.Error("combined variant outgoing offsets must differ from the plain set")
	}

	ci := combined.IncomingAnchors(false, false)
	pi := plain.IncomingAnchors(false, false)
	diff := 0
	for i := range ci {
		if ci[i].Offset != pi[i].Offset {
			diff++
		}
	}
	if diff != 1 {
		t.Errorf("combined incoming set should differ from the plain set in exactly one offset, got %d", diff)
	}
}

func TestHistoryOnlyFallsBackToEdges(t *testing.T) {
	h := newHistoryState("h", "H", geometry.Point{})
	if len(h.IncomingAnchors(true, false)) != 1 {
		t.Error("history transition should target the bubble anchor")
	}
	if len(h.IncomingAnchors(false, true)) != 4 {
		t.Error("deep-history transition has no bubble on a history-only state")
	}

	d := newDeepHistoryState("d", "D", geometry.Point{})
	if len(d.IncomingAnchors(false, true)) != 1 {
		t.Error("deep-history transition should target the deep bubble anchor")
	}
	if len(d.IncomingAnchors(true, false)) != 4 {
		t.Error("history transition has no bubble on a deep-history-only state")
	}
}
