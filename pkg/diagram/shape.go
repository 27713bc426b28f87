package diagram

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

// Shape defaults.
const (
	DefaultBorderWidth = 1.0
	DefaultShapeWidth  = 100.0
	DefaultShapeHeight = 100.0
)

// Label is a text attached to a shape.
type Label struct {
	Message  string `json:"message" yaml:"message" bson:"message"`
	Position string `json:"position,omitempty" yaml:"position,omitempty" bson:"position,omitempty"`
}

// Layer is a named visual layer of a custom shape.
type Layer struct {
	Name    string `json:"name" yaml:"name" bson:"name"`
	Visible bool   `json:"visible" yaml:"visible" bson:"visible"`
	Class   string `json:"class,omitempty" yaml:"class,omitempty" bson:"class,omitempty"`
}

// Shape is a node of the scene graph. Position is relative to the parent
// shape (or the canvas for top-level shapes) and expressed in logical,
// unzoomed units. Relations to other elements are stored as ids and resolved
// through the owning canvas.
type Shape struct {
	ID   string
	Type string
	Kind Kind

	Labels                []Label
	Layers                []Layer
	ConnectAtMiddlePoints bool
	ConnectionType        SegmentStyle
	BorderWidth           float64
	MinWidth, MinHeight   float64
	Resizable, Draggable  bool

	x, y, width, height float64
	zOrder              int
	elevated            bool
	selected            bool
	style               Style

	parent   string
	children []string
	ports    []string
	canvas   *Canvas
	cache    zoomCache
}

// zoomCache holds the zoom-scaled geometry in coordinates local to the
// shape's top-left corner.
type zoomCache struct {
	width, height float64
	corners       [4]geom.Point // top-left, top-right, bottom-right, bottom-left
	midpoints     [4]geom.Point // indexed by geom.Direction
	handles       [8]geom.Point // clockwise from the top-left corner
}

// NewShape returns a detached shape of the given kind. An empty id is
// replaced with a fresh UUID.
func NewShape(id string, kind Kind) *Shape {
	if id == "" {
		id = uuid.NewString()
	}
	typ := "custom"
	if kind == KindRegular {
		typ = "rectangle"
	}
	s := &Shape{
		ID:             id,
		Type:           typ,
		Kind:           kind,
		ConnectionType: StyleRegular,
		BorderWidth:    DefaultBorderWidth,
		Resizable:      true,
		Draggable:      true,
		width:          DefaultShapeWidth,
		height:         DefaultShapeHeight,
	}
	s.updateCache()
	return s
}

// Canvas returns the canvas the shape is attached to, or nil.
func (s *Shape) Canvas() *Canvas { return s.canvas }

// X returns the logical x offset from the parent.
func (s *Shape) X() float64 { return s.x }

// Y returns the logical y offset from the parent.
func (s *Shape) Y() float64 { return s.y }

// Width returns the logical width.
func (s *Shape) Width() float64 { return s.width }

// Height returns the logical height.
func (s *Shape) Height() float64 { return s.height }

// Position returns the logical offset from the parent.
func (s *Shape) Position() geom.Point { return geom.Pt(s.x, s.y) }

// Size returns the logical dimension.
func (s *Shape) Size() (w, h float64) { return s.width, s.height }

// Selected reports whether the shape is part of the canvas selection.
func (s *Shape) Selected() bool { return s.selected }

// Style returns the shape's declarative style.
func (s *Shape) Style() *Style { return &s.style }

// Connectable reports whether connections may attach to the shape.
func (s *Shape) Connectable() bool { return s.Kind == KindCustom }

func (s *Shape) zoom() float64 {
	if s.canvas == nil {
		return 1
	}
	return s.canvas.zoom
}

// AbsoluteX returns the zoom-scaled x coordinate on the canvas.
func (s *Shape) AbsoluteX() float64 {
	if p := s.Parent(); p != nil {
		return p.AbsoluteX() + s.x*s.zoom()
	}
	return s.x * s.zoom()
}

// AbsoluteY returns the zoom-scaled y coordinate on the canvas.
func (s *Shape) AbsoluteY() float64 {
	if p := s.Parent(); p != nil {
		return p.AbsoluteY() + s.y*s.zoom()
	}
	return s.y * s.zoom()
}

// Absolute returns the zoom-scaled top-left corner on the canvas.
func (s *Shape) Absolute() geom.Point { return geom.Pt(s.AbsoluteX(), s.AbsoluteY()) }

// Bounds returns the zoom-scaled rectangle of the shape on the canvas,
// excluding the border.
func (s *Shape) Bounds() geom.Rect {
	return geom.R(s.AbsoluteX(), s.AbsoluteY(), s.cache.width, s.cache.height)
}

// OuterBounds returns Bounds grown by the zoom-scaled border width.
func (s *Shape) OuterBounds() geom.Rect {
	b := s.BorderWidth * s.zoom()
	r := s.Bounds()
	return geom.R(r.X-b, r.Y-b, r.W+2*b, r.H+2*b)
}

// ZoomWidth returns the zoom-scaled width.
func (s *Shape) ZoomWidth() float64 { return s.cache.width }

// ZoomHeight returns the zoom-scaled height.
func (s *Shape) ZoomHeight() float64 { return s.cache.height }

// Corners returns the zoom-scaled corners relative to the shape's top-left.
func (s *Shape) Corners() [4]geom.Point { return s.cache.corners }

// Midpoint returns the zoom-scaled midpoint of a side relative to the
// shape's top-left.
func (s *Shape) Midpoint(d geom.Direction) geom.Point { return s.cache.midpoints[d] }

// Handles returns the eight resize handle positions relative to the shape's
// top-left, clockwise from the top-left corner.
func (s *Shape) Handles() [8]geom.Point { return s.cache.handles }

func (s *Shape) updateCache() {
	z := s.zoom()
	w, h := s.width*z, s.height*z
	c := &s.cache
	c.width, c.height = w, h
	c.corners = [4]geom.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	c.midpoints[geom.Top] = geom.Pt(w/2, 0)
	c.midpoints[geom.Right] = geom.Pt(w, h/2)
	c.midpoints[geom.Bottom] = geom.Pt(w/2, h)
	c.midpoints[geom.Left] = geom.Pt(0, h/2)
	c.handles = [8]geom.Point{
		c.corners[0], c.midpoints[geom.Top], c.corners[1], c.midpoints[geom.Right],
		c.corners[2], c.midpoints[geom.Bottom], c.corners[3], c.midpoints[geom.Left],
	}
}

// logicalMidpoints returns the unzoomed side midpoints in Direction order.
func (s *Shape) logicalMidpoints() []geom.Point {
	w, h := s.width, s.height
	return []geom.Point{
		geom.Top:    {X: w / 2, Y: 0},
		geom.Right:  {X: w, Y: h / 2},
		geom.Bottom: {X: w / 2, Y: h},
		geom.Left:   {X: 0, Y: h / 2},
	}
}

// SetDimension stores a new logical size and recomputes the zoom cache and
// resize handles. Ports and connections are left alone; see Resize.
func (s *Shape) SetDimension(w, h float64) error {
	if err := validateSize(w, h); err != nil {
		return err
	}
	oldW, oldH := s.width, s.height
	s.width, s.height = w, h
	s.updateCache()
	if s.canvas != nil {
		s.canvas.emitChange(shapeChange(s,
			FieldChange{Field: "width", OldVal: oldW, NewVal: w},
			FieldChange{Field: "height", OldVal: oldH, NewVal: h}))
	}
	return nil
}

func validateSize(w, h float64) error {
	if err := errors.ValidateNonNegative("width", w); err != nil {
		return err
	}
	return errors.ValidateNonNegative("height", h)
}

// SetPosition moves the shape to a new logical offset from its parent and
// repaints every connection attached to it or its descendants.
func (s *Shape) SetPosition(x, y float64) error {
	if err := s.move(x, y); err != nil {
		return err
	}
	if s.canvas != nil {
		s.canvas.reconnectShapes(s.ID)
	}
	return nil
}

// move changes the logical position without touching connections.
func (s *Shape) move(x, y float64) error {
	if err := errors.ValidateFinite("x", x); err != nil {
		return err
	}
	if err := errors.ValidateFinite("y", y); err != nil {
		return err
	}
	oldX, oldY := s.x, s.y
	s.x, s.y = x, y
	if s.canvas != nil {
		s.canvas.emitChange(shapeChange(s,
			FieldChange{Field: "x", OldVal: oldX, NewVal: x},
			FieldChange{Field: "y", OldVal: oldY, NewVal: y}))
	}
	return nil
}

// Resize changes the dimension interactively. The size is clamped to the
// shape's minimum, ports keep their relative place on their side and
// attached connections are repainted.
func (s *Shape) Resize(w, h float64) error {
	if !s.Resizable {
		return errors.New(errors.ErrCodeInvalidInput, "shape %q is not resizable", s.ID)
	}
	if err := validateSize(w, h); err != nil {
		return err
	}
	w, h = math.Max(w, s.MinWidth), math.Max(h, s.MinHeight)
	oldW, oldH := s.width, s.height
	if err := s.SetDimension(w, h); err != nil {
		return err
	}
	for _, p := range s.Ports() {
		s.replacePort(p, oldW, oldH)
	}
	if s.canvas != nil {
		s.canvas.reconnectShapes(s.ID)
	}
	return nil
}

// replacePort keeps p on its side after the shape changed from oldW x oldH.
func (s *Shape) replacePort(p *Port, oldW, oldH float64) {
	c := p.center()
	switch p.Direction {
	case geom.Top, geom.Bottom:
		if oldW > 0 {
			c.X = c.X / oldW * s.width
		}
	default:
		if oldH > 0 {
			c.Y = c.Y / oldH * s.height
		}
	}
	if s.ConnectAtMiddlePoints {
		c = s.logicalMidpoints()[p.Direction]
	}
	s.placePort(p, p.Direction, c)
}

// SetLabel replaces the message of label i. i == len(Labels) appends.
func (s *Shape) SetLabel(i int, message string) error {
	if i < 0 || i > len(s.Labels) {
		return errors.New(errors.ErrCodeInvalidInput, "label index %d out of range", i)
	}
	old := ""
	if i == len(s.Labels) {
		s.Labels = append(s.Labels, Label{Message: message})
	} else {
		old = s.Labels[i].Message
		s.Labels[i].Message = message
	}
	if s.canvas != nil {
		s.canvas.emitChange(shapeChange(s, FieldChange{Field: fmt.Sprintf("labels[%d]", i), OldVal: old, NewVal: message}))
	}
	return nil
}

// Label returns the message of the first label, or "".
func (s *Shape) Label() string {
	if len(s.Labels) == 0 {
		return ""
	}
	return s.Labels[0].Message
}

// AddLayer appends a visible layer.
func (s *Shape) AddLayer(name, class string) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "layer name is empty")
	}
	if s.layer(name) >= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layer %q already exists", name)
	}
	s.Layers = append(s.Layers, Layer{Name: name, Visible: true, Class: class})
	return nil
}

// ShowLayer makes a layer visible.
func (s *Shape) ShowLayer(name string) error { return s.setLayerVisible(name, true) }

// HideLayer hides a layer.
func (s *Shape) HideLayer(name string) error { return s.setLayerVisible(name, false) }

func (s *Shape) setLayerVisible(name string, v bool) error {
	i := s.layer(name)
	if i < 0 {
		return errors.NotFound("layer", name)
	}
	s.Layers[i].Visible = v
	return nil
}

func (s *Shape) layer(name string) int {
	return slices.IndexFunc(s.Layers, func(l Layer) bool { return l.Name == name })
}

// DetermineDragBehavior classifies a pointer position given relative to the
// shape's top-left corner in zoom-scaled units.
func (s *Shape) DetermineDragBehavior(p geom.Point) DragBehavior {
	b := s.BorderWidth * s.zoom()
	outer := geom.R(-b, -b, s.cache.width+2*b, s.cache.height+2*b)
	if !outer.Contains(p) {
		return DragCancel
	}
	preset := DefaultZoomPreset
	if s.canvas != nil {
		preset = s.canvas.zoomPreset
	}
	if outer.Inset(DragMargin(preset)).Contains(p) {
		return DragMove
	}
	return DragConnect
}

// ZOrder returns the stacking depth including any selection elevation.
func (s *Shape) ZOrder() int { return s.zOrder + s.elevation() }

// BaseZOrder returns the stacking depth without selection elevation.
func (s *Shape) BaseZOrder() int { return s.zOrder }

// SetZOrder sets the base stacking depth.
func (s *Shape) SetZOrder(z int) { s.zOrder = z }

// Parent returns the containing shape, or nil for top-level shapes.
func (s *Shape) Parent() *Shape {
	if s.parent == "" || s.canvas == nil {
		return nil
	}
	return s.canvas.shapes[s.parent]
}

// ParentID returns the id of the containing shape, or "".
func (s *Shape) ParentID() string { return s.parent }

// Children returns the direct children in order.
func (s *Shape) Children() []*Shape { return s.canvas.lookupShapes(s.children) }

// IsDirectParentOf reports whether child is one of the direct children.
func (s *Shape) IsDirectParentOf(child *Shape) bool {
	return child != nil && slices.Contains(s.children, child.ID)
}

// AddChild attaches child to this shape. A detached child is registered on
// the canvas; an attached one is moved here from its current parent.
func (s *Shape) AddChild(child *Shape) error {
	if s.canvas == nil {
		return errors.New(errors.ErrCodeInvalidInput, "shape %q is not on a canvas", s.ID)
	}
	return s.canvas.attach(child, s.ID)
}

// RemoveChild removes child and its subtree from the scene.
func (s *Shape) RemoveChild(child *Shape) error {
	if !s.IsDirectParentOf(child) {
		return errors.New(errors.ErrCodeInvalidInput, "not a child of %q", s.ID)
	}
	s.canvas.detach(child.ID)
	return nil
}

// ClearChildren removes every child subtree from the scene.
func (s *Shape) ClearChildren() error {
	for _, id := range slices.Clone(s.children) {
		s.canvas.detach(id)
	}
	return nil
}

// IsAncestorOf reports whether s contains other at any depth.
func (s *Shape) IsAncestorOf(other *Shape) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == s {
			return true
		}
	}
	return false
}

// Descendants returns all shapes below s in pre-order.
func (s *Shape) Descendants() []*Shape {
	var out []*Shape
	for _, c := range s.Children() {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// context returns the top-most ancestor below the canvas, or s itself.
func (s *Shape) context() *Shape {
	top := s
	for p := s.Parent(); p != nil; p = p.Parent() {
		top = p
	}
	return top
}

// Ports returns the shape's ports in creation order.
func (s *Shape) Ports() []*Port {
	if s.canvas == nil {
		return nil
	}
	out := make([]*Port, 0, len(s.ports))
	for _, id := range s.ports {
		if p := s.canvas.ports[id]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Connections returns the connections attached to the shape's ports.
func (s *Shape) Connections() []*Connection {
	var out []*Connection
	for _, p := range s.Ports() {
		if c := p.Connection(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// DefinePortPosition chooses the side of the shape a new port sits on and
// places it there. click is relative to the shape's top-left in logical
// units. When source is given and the shape connects at middle points,
// Manhattan distance is used so both ends prefer sides that face each other.
func (s *Shape) DefinePortPosition(p *Port, click geom.Point, source *Port) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "port is nil")
	}
	if !s.Connectable() {
		return errors.New(errors.ErrCodeInvalidInput, "shape %q does not accept connections", s.ID)
	}
	mids := s.logicalMidpoints()
	metric := geom.SquaredDistance
	if source != nil && s.ConnectAtMiddlePoints {
		metric = geom.ManhattanDistance
	}
	d := geom.Direction(geom.Nearest(mids, click, metric))

	c := mids[d]
	if !s.ConnectAtMiddlePoints {
		switch d {
		case geom.Top, geom.Bottom:
			c.X = clamp(click.X, 0, s.width)
		default:
			c.Y = clamp(click.Y, 0, s.height)
		}
	}
	s.placePort(p, d, c)
	return nil
}

// placePort centres p on side d at the border point c, pushed outwards by
// the border width.
func (s *Shape) placePort(p *Port, d geom.Direction, c geom.Point) {
	switch d {
	case geom.Top:
		c.Y = 0
	case geom.Right:
		c.X = s.width
	case geom.Bottom:
		c.Y = s.height
	case geom.Left:
		c.X = 0
	}
	c = c.Add(d.Vector().Scale(s.BorderWidth))
	p.Direction = d
	p.X = c.X - p.Size/2
	p.Y = c.Y - p.Size/2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
