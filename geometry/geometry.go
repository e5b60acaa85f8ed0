// Package geometry provides the 2-D primitives used by the diagram layout:
// points, anchor points and the distance/circle tests the connection
// selection heuristic is built on.
package geometry

import "math"

// Point is a position in diagram coordinates.
type Point struct {
	X float64
	Y float64
}

// Add returns the component-wise sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// AnchorPoint is a candidate connector attachment point. Point is relative to
// the owning node's center; Offset is a fixed per-variant nudge that only
// participates in distance comparisons between candidate anchors, never in
// the final connector placement.
type AnchorPoint struct {
	Point  Point
	Offset Point
}

// Translate returns the anchor moved by the given base point.
func (a AnchorPoint) Translate(base Point) AnchorPoint {
	return AnchorPoint{Point: a.Point.Add(base), Offset: a.Offset}
}

// Offsetted returns the anchor's point with its offset applied.
func (a AnchorPoint) Offsetted() Point {
	return a.Point.Add(a.Offset)
}

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsOutside reports whether p lies on or outside the circle with the given
// center and radius. The boundary counts as outside.
func IsOutside(p, center Point, radius float64) bool {
	return Distance(p, center) >= radius
}
