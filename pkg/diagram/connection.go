package diagram

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	"github.com/matzehuels/canvaskit/pkg/observability"
	"github.com/matzehuels/canvaskit/pkg/route"
)

// ConnectOptions control how Connect builds a route.
type ConnectOptions struct {
	// Algorithm defaults to AlgorithmManhattan.
	Algorithm Algorithm
	// Points is the explicit route for AlgorithmUser in logical canvas
	// coordinates.
	Points []geom.Point
	// DX and DY shift Points before use.
	DX, DY float64
}

// Connection is an orthogonally routed edge between two ports.
type Connection struct {
	ID                  string
	Style               SegmentStyle
	Color               string
	SrcDecoratorPrefix  string
	DestDecoratorPrefix string

	srcPort, destPort string
	segments          []*Segment
	zOrder            int
	intersectionWith  map[string]struct{}
	algorithm         Algorithm
	savedPoints       []geom.Point
	seq               uint64
	canvas            *Canvas
}

func newConnection(id string, src, dst *Port) *Connection {
	if id == "" {
		id = uuid.NewString()
	}
	return &Connection{
		ID:               id,
		Style:            StyleRegular,
		srcPort:          src.ID,
		destPort:         dst.ID,
		intersectionWith: make(map[string]struct{}),
		algorithm:        AlgorithmManhattan,
	}
}

// Canvas returns the owning canvas.
func (c *Connection) Canvas() *Canvas { return c.canvas }

// SrcPort returns the source port, or nil once the connection has been
// removed from its canvas.
func (c *Connection) SrcPort() *Port { return c.port(c.srcPort) }

// DestPort returns the destination port, or nil once the connection has been
// removed from its canvas.
func (c *Connection) DestPort() *Port { return c.port(c.destPort) }

func (c *Connection) port(id string) *Port {
	if c.canvas == nil {
		return nil
	}
	return c.canvas.ports[id]
}

// Ports returns the source and destination ports.
func (c *Connection) Ports() [2]*Port { return [2]*Port{c.SrcPort(), c.DestPort()} }

// SrcShape returns the shape owning the source port, or nil.
func (c *Connection) SrcShape() *Shape { return portShape(c.SrcPort()) }

// DestShape returns the shape owning the destination port, or nil.
func (c *Connection) DestShape() *Shape { return portShape(c.DestPort()) }

func portShape(p *Port) *Shape {
	if p == nil {
		return nil
	}
	return p.Shape()
}

// Segments returns the current route pieces.
func (c *Connection) Segments() []*Segment { return c.segments }

// Painted reports whether the connection currently has a route.
func (c *Connection) Painted() bool { return len(c.segments) > 0 }

// Algorithm returns the algorithm of the current route.
func (c *Connection) Algorithm() Algorithm { return c.algorithm }

// ZOrder returns the stacking depth including selection elevation.
func (c *Connection) ZOrder() int {
	return c.zOrder + max(c.SrcShape().elevation(), c.DestShape().elevation())
}

// SavedPoints returns the logical points snapshotted by Disconnect(true).
func (c *Connection) SavedPoints() []geom.Point { return slices.Clone(c.savedPoints) }

// Points returns the route waypoints in zoom-scaled canvas coordinates.
func (c *Connection) Points() []geom.Point {
	if len(c.segments) == 0 {
		return nil
	}
	pts := make([]geom.Point, 0, len(c.segments)+1)
	pts = append(pts, c.segments[0].Start)
	for _, s := range c.segments {
		pts = append(pts, s.End)
	}
	return pts
}

// LogicalPoints returns the waypoints divided by the current zoom.
func (c *Connection) LogicalPoints() []geom.Point {
	pts := c.Points()
	if c.canvas == nil {
		return pts
	}
	z := c.canvas.zoom
	for i := range pts {
		pts[i] = pts[i].Scale(1 / z)
	}
	return pts
}

// IntersectionWith returns the ids of the connections this one crosses,
// sorted.
func (c *Connection) IntersectionWith() []string {
	ids := make([]string, 0, len(c.intersectionWith))
	for id := range c.intersectionWith {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Intersects reports whether c crosses the connection with the given id.
func (c *Connection) Intersects(id string) bool {
	_, ok := c.intersectionWith[id]
	return ok
}

// Connect (re)builds the route. Routing failures are logged and leave the
// connection unpainted.
func (c *Connection) Connect(opts ConnectOptions) {
	alg := opts.Algorithm
	if alg == "" {
		alg = AlgorithmManhattan
	}
	if alg == AlgorithmUser {
		z := c.canvas.zoom
		d := geom.Pt(opts.DX, opts.DY)
		pts := make([]geom.Point, len(opts.Points))
		for i, p := range opts.Points {
			pts[i] = p.Add(d).Scale(z)
		}
		c.paint(AlgorithmUser, pts)
		return
	}
	c.paint(alg, nil)
}

// paint clears the current route and draws a new one. For the user
// algorithm pts is the route in zoom-scaled coordinates.
func (c *Connection) paint(alg Algorithm, pts []geom.Point) {
	c.Disconnect(false)
	start := time.Now()

	var err error
	switch alg {
	case AlgorithmManhattan:
		pts, err = c.manhattanRoute()
	case AlgorithmUser:
		pts, err = c.userRoute(pts)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown routing algorithm %q", alg)
	}
	c.algorithm = alg
	observability.Route().OnRoute(c.ID, string(alg), len(pts), time.Since(start), err)
	if err != nil {
		c.canvas.logger.Warn("route failed", "connection", c.ID, "algorithm", alg, "err", err)
		return
	}

	c.segments = make([]*Segment, len(pts)-1)
	for i := range c.segments {
		s := newSegment(pts[i], pts[i+1])
		s.HasMoveHandle = i > 0 && i < len(c.segments)-1
		if i > 0 {
			s.prev = c.segments[i-1]
			s.prev.next = s
		}
		c.segments[i] = s
	}
	c.updateZOrder()
	c.CheckAndCreateIntersectionsWithAll()
}

func (c *Connection) endpoints() (route.Endpoint, route.Endpoint) {
	src, dst := c.SrcPort(), c.DestPort()
	return route.Endpoint{Point: src.Anchor(), Direction: src.Direction, Bounds: src.Shape().OuterBounds()},
		route.Endpoint{Point: dst.Anchor(), Direction: dst.Direction, Bounds: dst.Shape().OuterBounds()}
}

func (c *Connection) manhattanRoute() ([]geom.Point, error) {
	src, dst := c.endpoints()
	pts, err := c.canvas.router.Route(src, dst)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRouteFailed, err, "route %s", c.ID)
	}
	if err := route.Validate(pts, src.Point, dst.Point); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRouteFailed, err, "route %s", c.ID)
	}
	return pts, nil
}

// userRoute snaps an explicit route onto the current anchors. User routes
// only need to be contiguous, so orthogonality is not enforced.
func (c *Connection) userRoute(pts []geom.Point) ([]geom.Point, error) {
	src, dst := c.endpoints()
	if len(pts) < 2 {
		return nil, errors.Wrap(errors.ErrCodeRouteFailed, route.ErrTooShort, "route %s", c.ID)
	}
	if !pts[0].Eq(src.Point) || !pts[len(pts)-1].Eq(dst.Point) {
		pts = fitEndpoints(pts, src.Point, dst.Point)
	}
	pts = route.Simplify(pts)
	if len(pts) < 2 {
		return nil, errors.Wrap(errors.ErrCodeRouteFailed, route.ErrDegenerate, "route %s", c.ID)
	}
	return pts, nil
}

// fitEndpoints moves the first and last waypoints onto new anchors and drags
// the adjacent waypoints along so the end segments keep their orientation.
func fitEndpoints(pts []geom.Point, src, dst geom.Point) []geom.Point {
	if len(pts) <= 2 {
		if src.X == dst.X || src.Y == dst.Y {
			return []geom.Point{src, dst}
		}
		return []geom.Point{src, {X: dst.X, Y: src.Y}, dst}
	}
	out := slices.Clone(pts)
	n := len(out)
	if geom.OrientationOf(out[0], out[1]) == geom.Vertical {
		out[1].X = src.X
	} else {
		out[1].Y = src.Y
	}
	out[0] = src
	if geom.OrientationOf(out[n-2], out[n-1]) == geom.Vertical {
		out[n-2].X = dst.X
	} else {
		out[n-2].Y = dst.Y
	}
	out[n-1] = dst
	return out
}

// Disconnect removes the route and every recorded intersection on both
// sides. With savePoints the logical waypoints are kept for a later user
// reconnect. The ports stay attached.
func (c *Connection) Disconnect(savePoints bool) {
	if savePoints && len(c.segments) > 0 {
		c.savedPoints = c.LogicalPoints()
	}
	c.clearIntersections()
	for _, s := range c.segments {
		s.prev, s.next = nil, nil
	}
	c.segments = nil
}

func (c *Connection) clearIntersections() {
	for id := range c.intersectionWith {
		if other := c.canvas.conns[id]; other != nil {
			other.removeIntersection(c.ID)
		}
	}
	clear(c.intersectionWith)
	for _, s := range c.segments {
		s.intersections = nil
	}
}

func (c *Connection) removeIntersection(with string) {
	delete(c.intersectionWith, with)
	for _, s := range c.segments {
		s.removeIntersections(with)
	}
}

// CheckAndCreateIntersectionsWithAll rebuilds the crossings between this
// connection and every other painted connection on the canvas, in canvas
// insertion order.
func (c *Connection) CheckAndCreateIntersectionsWithAll() {
	c.clearIntersections()
	for _, other := range c.canvas.Connections() {
		if other == c || !other.Painted() {
			continue
		}
		for _, a := range c.segments {
			for _, b := range other.segments {
				p, ok := geom.Cross(a.Start, a.End, b.Start, b.End)
				if !ok {
					continue
				}
				a.addIntersection(other.ID, p)
				b.addIntersection(c.ID, p)
				c.intersectionWith[other.ID] = struct{}{}
				other.intersectionWith[c.ID] = struct{}{}
			}
		}
	}
	observability.Route().OnIntersections(c.ID, len(c.intersectionWith))
}

// updateZOrder places the connection two levels above the higher of the
// top-level shapes containing its ends.
func (c *Connection) updateZOrder() {
	src, dst := c.SrcShape(), c.DestShape()
	if src == nil || dst == nil {
		return
	}
	c.zOrder = max(src.context().zOrder, dst.context().zOrder) + 2
}

// Reconnect repaints the route after an endpoint moved. Manhattan routes are
// recomputed. A user route, painted or saved by Disconnect(true), is
// translated when both ends moved by the same offset, otherwise its end
// waypoints are snapped onto the new anchors. The saved points are consumed.
func (c *Connection) Reconnect() {
	old := c.Points()
	if len(old) == 0 && len(c.savedPoints) >= 2 {
		old = make([]geom.Point, len(c.savedPoints))
		for i, p := range c.savedPoints {
			old[i] = p.Scale(c.canvas.zoom)
		}
	}
	c.savedPoints = nil
	if c.algorithm != AlgorithmUser || len(old) < 2 {
		c.paint(AlgorithmManhattan, nil)
		return
	}
	src, dst := c.endpoints()
	d0 := src.Point.Sub(old[0])
	d1 := dst.Point.Sub(old[len(old)-1])
	if d0.Eq(d1) {
		c.paint(AlgorithmUser, route.Translate(old, d0))
		return
	}
	c.paint(AlgorithmUser, fitEndpoints(old, src.Point, dst.Point))
}

// MoveSegment drags the middle segment i perpendicular to itself by delta
// zoom-scaled units. The neighbouring segments stretch to stay attached and
// the route becomes a user route.
func (c *Connection) MoveSegment(i int, delta float64) error {
	if i < 0 || i >= len(c.segments) || !c.segments[i].HasMoveHandle {
		return errors.New(errors.ErrCodeInvalidInput, "segment %d of %s has no move handle", i, c.ID)
	}
	if err := errors.ValidateFinite("delta", delta); err != nil {
		return err
	}
	pts := c.Points()
	switch c.segments[i].Orientation {
	case geom.Horizontal:
		pts[i].Y += delta
		pts[i+1].Y += delta
	case geom.Vertical:
		pts[i].X += delta
		pts[i+1].X += delta
	default:
		return errors.New(errors.ErrCodeInvalidInput, "segment %d of %s is not axis-aligned", i, c.ID)
	}
	c.paint(AlgorithmUser, pts)
	return nil
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s(%s->%s)", c.ID, c.srcPort, c.destPort)
}
