package diagram

import "github.com/matzehuels/canvaskit/pkg/geom"

// Positionable elements have a logical position.
type Positionable interface {
	Position() geom.Point
	SetPosition(x, y float64) error
}

// Resizable elements have a logical dimension.
type Resizable interface {
	Size() (w, h float64)
	SetDimension(w, h float64) error
}

// ChildContainer holds an ordered list of child shapes.
type ChildContainer interface {
	AddChild(*Shape) error
	RemoveChild(*Shape) error
	ClearChildren() error
	Children() []*Shape
	IsDirectParentOf(*Shape) bool
}

// Connectable elements accept ports.
type Connectable interface {
	Connectable() bool
	Ports() []*Port
	DefinePortPosition(p *Port, click geom.Point, source *Port) error
}

// Styleable elements carry a declarative style.
type Styleable interface {
	Style() *Style
}

// CanvasProvider is implemented by every element attached to a canvas and by
// the canvas itself.
type CanvasProvider interface {
	Canvas() *Canvas
}

// RenderTarget draws elements. Canvas.Paint calls it in z-order.
type RenderTarget interface {
	DrawShape(*Shape) error
	DrawConnection(*Connection) error
}

// CanvasOf resolves the canvas owning a command receiver.
func CanvasOf(receiver any) *Canvas {
	switch r := receiver.(type) {
	case *Canvas:
		return r
	case CanvasProvider:
		return r.Canvas()
	}
	return nil
}

var (
	_ Positionable   = (*Shape)(nil)
	_ Resizable      = (*Shape)(nil)
	_ ChildContainer = (*Shape)(nil)
	_ ChildContainer = (*Canvas)(nil)
	_ Connectable    = (*Shape)(nil)
	_ Styleable      = (*Shape)(nil)
	_ CanvasProvider = (*Shape)(nil)
	_ CanvasProvider = (*Port)(nil)
	_ CanvasProvider = (*Connection)(nil)
	_ CanvasProvider = (*Canvas)(nil)
)
