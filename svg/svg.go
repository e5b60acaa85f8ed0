// Package svg builds the vector documents emitted by the diagram layout.
//
// The package is a pure construction API: elements are plain values carrying a
// textual style descriptor, assembled into a tree and serialized once with
// WriteDocument. Nothing here is stateful, so documents can be re-emitted at
// any time from the current diagram state.
package svg

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MarkerID is the id of the single reusable arrowhead marker embedded in
// every document. Connector styles reference it via Arrow.
const MarkerID = "jasm-arrowhead"

// Element is a node of the vector document tree.
type Element interface {
	writeTo(b *strings.Builder)
}

// Group collects child elements and optionally translates them.
type Group struct {
	Transform string // e.g. "translate(10 20)", empty for none
	Children  []Element
}

// Rect is a rounded rectangle.
type Rect struct {
	X, Y          float64
	Width, Height float64
	Radius        float64
	Style         string
}

// Circle is a circle centered at (CX, CY).
type Circle struct {
	CX, CY float64
	R      float64
	Style  string
}

// Line is a straight connector segment.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
	Style  string
}

// Path is an arbitrary path with a raw data attribute.
type Path struct {
	D     string
	Style string
}

// Text is a text label. Centered text is anchored to its middle both
// horizontally and vertically; plain text uses the SVG default baseline.
type Text struct {
	X, Y     float64
	Content  string
	Centered bool
	Style    string
}

// NewGroup creates a group with the given children and no transform.
func NewGroup(children ...Element) *Group {
	return &Group{Children: children}
}

// NewTranslatedGroup creates a group whose children are shifted by (x, y).
func NewTranslatedGroup(x, y float64, children ...Element) *Group {
	return &Group{
		Transform: fmt.Sprintf("translate(%s %s)", Num(x), Num(y)),
		Children:  children,
	}
}

// Add appends children to the group and returns it.
func (g *Group) Add(children ...Element) *Group {
	g.Children = append(g.Children, children...)
	return g
}

// Style formats the standard style triple shared by all primitives.
func Style(strokeWidth float64, stroke, fill string) string {
	return fmt.Sprintf("stroke-width:%spx;stroke:%s;fill:%s", Num(strokeWidth), stroke, fill)
}

// Arrow appends the arrowhead marker reference to a style descriptor.
func Arrow(style string) string {
	return style + ";marker-end:url(#" + MarkerID + ")"
}

// Num formats a coordinate with at most 3 decimal places, invariant culture.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

func (g *Group) writeTo(b *strings.Builder) {
	if g.Transform != "" {
		fmt.Fprintf(b, `<g transform="%s">`, g.Transform)
	} else {
		b.WriteString("<g>")
	}
	b.WriteString("\n")
	for _, child := range g.Children {
		child.writeTo(b)
	}
	b.WriteString("</g>\n")
}

func (r *Rect) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" style="%s"/>`,
		Num(r.X), Num(r.Y), Num(r.Width), Num(r.Height), Num(r.Radius), Num(r.Radius), r.Style)
	b.WriteString("\n")
}

func (c *Circle) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" style="%s"/>`,
		Num(c.CX), Num(c.CY), Num(c.R), c.Style)
	b.WriteString("\n")
}

func (l *Line) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" style="%s"/>`,
		Num(l.X1), Num(l.Y1), Num(l.X2), Num(l.Y2), l.Style)
	b.WriteString("\n")
}

func (p *Path) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, `<path d="%s" style="%s"/>`, p.D, p.Style)
	b.WriteString("\n")
}

func (t *Text) writeTo(b *strings.Builder) {
	if t.Centered {
		fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" style="%s">%s</text>`,
			Num(t.X), Num(t.Y), t.Style, escapeXML(t.Content))
	} else {
		fmt.Fprintf(b, `<text x="%s" y="%s" style="%s">%s</text>`,
			Num(t.X), Num(t.Y), t.Style, escapeXML(t.Content))
	}
	b.WriteString("\n")
}

// WriteDocument serializes a complete SVG document: a fixed viewBox covering
// (0, 0, width, height), the shared arrowhead marker definition and the given
// root elements.
func WriteDocument(w io.Writer, width, height float64, roots ...Element) error {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`,
		Num(width), Num(height))
	b.WriteString("\n")

	b.WriteString(`<defs>`)
	fmt.Fprintf(&b, `<marker id="%s" markerWidth="8" markerHeight="6" refX="7" refY="3" orient="auto">`, MarkerID)
	b.WriteString(`<polygon points="0 0, 8 3, 0 6" style="fill:#000000"/>`)
	b.WriteString(`</marker>`)
	b.WriteString(`</defs>`)
	b.WriteString("\n")

	for _, root := range roots {
		if root != nil {
			root.writeTo(&b)
		}
	}

	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeXML escapes special XML characters in text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
