package diagram

import (
	"fmt"
	"math"

	"github.com/frantoso/jasm-debugger/geometry"
	"github.com/frantoso/jasm-debugger/model"
	"github.com/frantoso/jasm-debugger/svg"
)

const (
	connectorStyle = "stroke-width:0.5px;stroke:#000000;fill:none"
	panelStyle     = "stroke-width:0.3px;stroke:#aaaaaa;fill:#f7f7f7;stroke-dasharray:2 1"
	panelTextStyle = "font-size:4px;fill:#666666"
	panelLabelPad  = 5.0
)

// Diagram is the laid out form of one machine description. The node set is
// fixed at construction; only the nodes' visual state mutates afterwards.
type Diagram struct {
	name     string
	radius   float64
	midPoint geometry.Point
	width    float64
	height   float64

	totalWidth  float64
	totalHeight float64

	nodes       map[string]Node
	order       []Node
	transitions [][]model.TransitionInfo // per node, in registration order
	connections []Connection
	panels      []nestedPanel
}

// nestedPanel is the labeled background panel holding the child diagrams of
// one composite node, laid out left-to-right.
type nestedPanel struct {
	label    string
	children []*Diagram
	width    float64
	height   float64
}

// New lays out a machine description. The description must carry exactly one
// initial state (ParseMachine enforces this for decoded payloads).
func New(fsm *model.FsmInfo) (*Diagram, error) {
	normal := fsm.NormalStates()

	d := &Diagram{
		name:   fsm.Name,
		radius: float64(max(len(normal)-1, 0)) / 2 * StateSpace,
		nodes:  make(map[string]Node),
	}
	d.midPoint = geometry.Point{X: d.radius + Border, Y: d.radius + Border}
	d.width = 2*d.radius + 2*Border
	d.height = d.width

	initial := fsm.InitialState()
	if initial == nil {
		return nil, fmt.Errorf("machine %q: no initial state", fsm.Name)
	}
	if err := d.register(initial, geometry.Point{X: SpecialNodeOffset, Y: SpecialNodeOffset}); err != nil {
		return nil, err
	}

	for k := range normal {
		angle := float64(k) * (2 * math.Pi / float64(len(normal)))
		location := geometry.Point{
			X: d.midPoint.X + d.radius*math.Sin(angle),
			Y: d.midPoint.Y - d.radius*math.Cos(angle),
		}
		if err := d.register(&normal[k], location); err != nil {
			return nil, err
		}
	}

	if final := fsm.FinalState(); final != nil {
		if err := d.register(final, d.finalLocation(fsm)); err != nil {
			return nil, err
		}
	}

	d.resolveConnections()
	d.aggregateSize()

	return d, nil
}

// register creates the node for a state, records it and recursively lays out
// the child machines of composite variants.
func (d *Diagram) register(state *model.StateInfo, location geometry.Point) error {
	if _, exists := d.nodes[state.ID]; exists {
		return fmt.Errorf("machine %q: duplicate state id %q", d.name, state.ID)
	}

	node := newNode(state, location)
	d.nodes[state.ID] = node
	d.order = append(d.order, node)
	d.transitions = append(d.transitions, state.Transitions)

	if composite, ok := node.(CompositeNode); ok {
		for i := range state.Children {
			child, err := New(&state.Children[i])
			if err != nil {
				return err
			}
			composite.addChild(child)
		}
	}
	return nil
}

// finalLocation places the final node at the bottom of the circle, on
// whichever margin is farther from the state owning the to-final transition.
func (d *Diagram) finalLocation(fsm *model.FsmInfo) geometry.Point {
	y := d.midPoint.Y + d.radius

	var owner Node
	for i := range fsm.States {
		for _, t := range fsm.States[i].Transitions {
			if t.IsToFinal {
				owner = d.nodes[fsm.States[i].ID]
				break
			}
		}
		if owner != nil {
			break
		}
	}

	if owner != nil && owner.Location().X >= d.midPoint.X {
		return geometry.Point{X: SpecialNodeOffset, Y: y}
	}
	return geometry.Point{X: d.width - SpecialNodeOffset, Y: y}
}

// resolveConnections computes one connector per transition whose target is
// registered. Unresolved targets are silently skipped; upstream machine
// descriptions may legitimately omit unreachable states.
func (d *Diagram) resolveConnections() {
	for i, start := range d.order {
		for _, t := range d.transitions[i] {
			end, ok := d.nodes[t.EndPointID]
			if !ok {
				continue
			}
			conn := selectConnection(start, end, t.IsHistory, t.IsDeepHistory, d.midPoint, d.radius)
			d.connections = append(d.connections, conn)
		}
	}
}

// aggregateSize builds the nested panel row and the total footprint. Nested
// width accumulates linearly, nested height takes the deepest branch.
func (d *Diagram) aggregateSize() {
	maxChildHeight := 0.0

	for _, n := range d.order {
		composite, ok := n.(CompositeNode)
		if !ok || len(composite.Children()) == 0 {
			continue
		}

		panel := nestedPanel{label: n.Name(), children: composite.Children()}
		for _, child := range panel.children {
			panel.width += child.TotalWidth()
			if child.TotalHeight() > panel.height {
				panel.height = child.TotalHeight()
			}
			if child.TotalHeight() > maxChildHeight {
				maxChildHeight = child.TotalHeight()
			}
		}
		d.panels = append(d.panels, panel)
	}

	rowWidth := 0.0
	for _, p := range d.panels {
		rowWidth += p.width
	}

	d.totalWidth = math.Max(d.width, rowWidth)
	d.totalHeight = d.height + maxChildHeight
}

// Name returns the machine name the diagram was built from.
func (d *Diagram) Name() string { return d.name }

// Radius returns the construction circle radius.
func (d *Diagram) Radius() float64 { return d.radius }

// MidPoint returns the construction circle center.
func (d *Diagram) MidPoint() geometry.Point { return d.midPoint }

// TotalWidth returns the footprint width including nested diagrams.
func (d *Diagram) TotalWidth() float64 { return d.totalWidth }

// TotalHeight returns the footprint height including nested diagrams.
func (d *Diagram) TotalHeight() float64 { return d.totalHeight }

// Nodes returns the registered nodes in registration order.
func (d *Diagram) Nodes() []Node { return d.order }

// Connections returns the resolved connectors in emission order.
func (d *Diagram) Connections() []Connection { return d.connections }

// FindNode locates a node by id, searching this diagram's direct nodes
// first, then depth-first into the child diagrams of composite nodes in
// registration order. It returns the owning diagram and the node, or nils.
func (d *Diagram) FindNode(id string) (*Diagram, Node) {
	for _, n := range d.order {
		if n.ID() == id {
			return d, n
		}
	}
	for _, n := range d.order {
		composite, ok := n.(CompositeNode)
		if !ok {
			continue
		}
		for _, child := range composite.Children() {
			if owner, node := child.FindNode(id); node != nil {
				return owner, node
			}
		}
	}
	return nil, nil
}

// ResetAll resets every node of the diagram and of all nested diagrams.
func (d *Diagram) ResetAll() {
	for _, n := range d.order {
		n.Reset()
		if composite, ok := n.(CompositeNode); ok {
			for _, child := range composite.Children() {
				child.ResetAll()
			}
		}
	}
}

// Render emits the diagram's vector tree: the base group with connectors and
// nodes, followed by one translated panel group per composite node holding
// its child diagrams.
func (d *Diagram) Render() svg.Element {
	base := svg.NewGroup()
	for _, c := range d.connections {
		base.Add(&svg.Line{
			X1: c.Start.X, Y1: c.Start.Y,
			X2: c.End.X, Y2: c.End.Y,
			Style: svg.Arrow(connectorStyle),
		})
	}
	for _, n := range d.order {
		base.Add(n.Render())
	}

	root := svg.NewGroup(base)

	x := 0.0
	for _, p := range d.panels {
		panelGroup := svg.NewTranslatedGroup(x, d.height,
			&svg.Rect{X: 0, Y: 0, Width: p.width, Height: p.height, Radius: stateCorner, Style: panelStyle},
			&svg.Text{X: 2, Y: panelLabelPad, Content: p.label, Style: panelTextStyle},
		)
		cx := 0.0
		for _, child := range p.children {
			panelGroup.Add(svg.NewTranslatedGroup(cx, 0, child.Render()))
			cx += child.TotalWidth()
		}
		root.Add(panelGroup)
		x += p.width
	}

	return root
}
