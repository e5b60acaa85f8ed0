package diagram

import (
	"sort"

	"github.com/frantoso/jasm-debugger/geometry"
)

// Connection is a resolved connector between two nodes: the chosen start and
// end anchor points in absolute coordinates, offsets already discarded.
type Connection struct {
	Start geometry.Point
	End   geometry.Point
}

type candidate struct {
	out  geometry.AnchorPoint
	in   geometry.AnchorPoint
	dist float64
}

// selectConnection picks the anchor pair for a transition from start to end.
//
// Every (outgoing, incoming) anchor pair is ranked by the distance between
// the offset-adjusted points, stably, then narrowed to the pairs within
// MinDistance of the minimum. From that band, pairs with at least one
// endpoint on or outside the construction circle are preferred, and among
// those pairs with both endpoints outside. The heuristic keeps short
// connectors between ring neighbours while pushing connectors that must
// cross the interior toward the outer edge.
func selectConnection(start, end Node, isHistory, isDeepHistory bool, center geometry.Point, radius float64) Connection {
	incoming := end.IncomingAnchors(isHistory, isDeepHistory)
	outgoing := start.OutgoingAnchors()

	candidates := make([]candidate, 0, len(outgoing)*len(incoming))
	for _, o := range outgoing {
		out := o.Translate(start.Location())
		for _, i := range incoming {
			in := i.Translate(end.Location())
			candidates = append(candidates, candidate{
				out:  out,
				in:   in,
				dist: geometry.Distance(out.Offsetted(), in.Offsetted()),
			})
		}
	}

	// Stable: ties keep start-anchor-major enumeration order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	shortest := candidates[:0:0]
	limit := candidates[0].dist + MinDistance
	for _, c := range candidates {
		if c.dist <= limit {
			shortest = append(shortest, c)
		}
	}

	chosen := shortest[0]
	oneOutside := shortest[:0:0]
	for _, c := range shortest {
		if geometry.IsOutside(c.out.Point, center, radius) || geometry.IsOutside(c.in.Point, center, radius) {
			oneOutside = append(oneOutside, c)
		}
	}
	if len(oneOutside) > 0 {
		chosen = oneOutside[0]
		for _, c := range oneOutside {
			if geometry.IsOutside(c.out.Point, center, radius) && geometry.IsOutside(c.in.Point, center, radius) {
				chosen = c
				break
			}
		}
	}

	return Connection{Start: chosen.out.Point, End: chosen.in.Point}
}
