package diagram

import (
	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/geom"
)

// DefaultPortSize is the edge length of a port square in logical units.
const DefaultPortSize = 8.0

// Port is the anchor of one connection end on a shape's border. X and Y are
// the logical top-left of the port square relative to the owning shape; the
// square is centred on the outer edge of the border.
type Port struct {
	ID        string
	Direction geom.Direction
	X, Y      float64
	Size      float64

	shape      string
	connection string
	canvas     *Canvas
}

// NewPort returns a detached port with the default size.
func NewPort(id string) *Port {
	if id == "" {
		id = uuid.NewString()
	}
	return &Port{ID: id, Size: DefaultPortSize}
}

// Canvas returns the canvas the port is registered on, or nil.
func (p *Port) Canvas() *Canvas { return p.canvas }

// Shape returns the owning shape.
func (p *Port) Shape() *Shape {
	if p.canvas == nil {
		return nil
	}
	return p.canvas.shapes[p.shape]
}

// ShapeID returns the id of the owning shape.
func (p *Port) ShapeID() string { return p.shape }

// Connection returns the attached connection, or nil.
func (p *Port) Connection() *Connection {
	if p.canvas == nil || p.connection == "" {
		return nil
	}
	return p.canvas.conns[p.connection]
}

// center returns the logical centre relative to the owning shape.
func (p *Port) center() geom.Point {
	return geom.Pt(p.X+p.Size/2, p.Y+p.Size/2)
}

// Anchor returns the zoom-scaled canvas point where the connection attaches.
func (p *Port) Anchor() geom.Point {
	s := p.Shape()
	if s == nil {
		return p.center()
	}
	return s.Absolute().Add(p.center().Scale(s.zoom()))
}
