package diagram

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	"github.com/matzehuels/canvaskit/pkg/observability"
)

func TestConnectTwoShapes(t *testing.T) {
	_, a, b, conn := abTwoShapes(t)

	assertOrthogonalRoute(t, conn)
	want := []geom.Point{geom.Pt(101, 50), geom.Pt(299, 50)}
	if got := conn.Points(); !slices.Equal(got, want) {
		t.Errorf("Points() = %v, want %v", got, want)
	}
	if conn.SrcShape() != a || conn.DestShape() != b {
		t.Errorf("ends = %s, %s", conn.SrcShape().ID, conn.DestShape().ID)
	}
	if conn.SrcPort().Direction != geom.Right || conn.DestPort().Direction != geom.Left {
		t.Errorf("port sides = %v, %v", conn.SrcPort().Direction, conn.DestPort().Direction)
	}
	if len(a.Connections()) != 1 || len(b.Connections()) != 1 {
		t.Errorf("shape connections = %d, %d", len(a.Connections()), len(b.Connections()))
	}
	if conn.Algorithm() != AlgorithmManhattan {
		t.Errorf("Algorithm() = %q", conn.Algorithm())
	}
	if conn.ZOrder() != 3 {
		t.Errorf("ZOrder() = %d, want 3", conn.ZOrder())
	}
}

func TestDisconnectKeepsPorts(t *testing.T) {
	c, _, _, conn := abTwoShapes(t)
	src, dst := conn.SrcPort(), conn.DestPort()

	conn.Disconnect(true)
	if conn.Painted() || len(conn.Segments()) != 0 {
		t.Fatal("route still present after Disconnect")
	}
	if c.Port(src.ID) == nil || c.Port(dst.ID) == nil {
		t.Fatal("Disconnect removed a port")
	}
	if conn.SrcPort() != src || conn.DestPort() != dst {
		t.Error("ports changed")
	}
	if got := conn.SavedPoints(); len(got) != 2 {
		t.Errorf("SavedPoints() = %v", got)
	}

	conn.Connect(ConnectOptions{})
	assertOrthogonalRoute(t, conn)
}

// crossingCanvas joins A to B horizontally at y=125 and C to D vertically
// at x=175.
func crossingCanvas(t *testing.T) (*Canvas, *Connection, *Connection) {
	t.Helper()
	c := newCanvas(t)
	addShape(t, c, "A", KindCustom, "", 0, 100, 50, 50)
	addShape(t, c, "B", KindCustom, "", 300, 100, 50, 50)
	addShape(t, c, "C", KindCustom, "", 150, 0, 50, 50)
	addShape(t, c, "D", KindCustom, "", 150, 300, 50, 50)
	h := connect(t, c, "A", "B", geom.Pt(50, 25), geom.Pt(0, 25))
	v := connect(t, c, "C", "D", geom.Pt(25, 50), geom.Pt(25, 0))
	return c, h, v
}

func TestIntersections(t *testing.T) {
	c, h, v := crossingCanvas(t)

	if got := h.IntersectionWith(); !slices.Equal(got, []string{v.ID}) {
		t.Fatalf("h.IntersectionWith() = %v", got)
	}
	if got := v.IntersectionWith(); !slices.Equal(got, []string{h.ID}) {
		t.Fatalf("v.IntersectionWith() = %v", got)
	}
	xs := h.Segments()[0].Intersections()
	if len(xs) != 1 || xs[0].With != v.ID || !xs[0].Point.Eq(geom.Pt(175, 125)) {
		t.Errorf("h crossings = %+v", xs)
	}
	if xs := v.Segments()[0].Intersections(); len(xs) != 1 || !xs[0].Point.Eq(geom.Pt(175, 125)) {
		t.Errorf("v crossings = %+v", xs)
	}
	if !c.JumpsOver(v, h) || c.JumpsOver(h, v) {
		t.Error("the later connection should jump over the earlier one")
	}

	v.Disconnect(false)
	if len(h.IntersectionWith()) != 0 || len(v.IntersectionWith()) != 0 {
		t.Error("Disconnect left intersections behind")
	}
	if len(h.Segments()[0].Intersections()) != 0 {
		t.Error("Disconnect left segment crossings behind")
	}

	v.Connect(ConnectOptions{})
	if !h.Intersects(v.ID) || !v.Intersects(h.ID) {
		t.Error("crossing not rebuilt after reconnect")
	}
}

func TestIntersectionsRemovedWithShape(t *testing.T) {
	c, h, v := crossingCanvas(t)
	if err := c.DeleteShape("D"); err != nil {
		t.Fatal(err)
	}
	if c.Connection(v.ID) != nil {
		t.Fatal("connection survived removal of its end")
	}
	if len(h.IntersectionWith()) != 0 {
		t.Errorf("h still crosses %v", h.IntersectionWith())
	}
	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if !h.Intersects(v.ID) {
		t.Error("crossing not restored by undo")
	}
}

func TestMoveSegment(t *testing.T) {
	c := newCanvas(t)
	addShape(t, c, "A", KindCustom, "", 0, 0, 100, 100)
	addShape(t, c, "B", KindCustom, "", 300, 200, 100, 100)
	conn := connect(t, c, "A", "B", geom.Pt(100, 50), geom.Pt(0, 50))

	segs := conn.Segments()
	if len(segs) != 3 {
		t.Fatalf("segments = %d, want 3", len(segs))
	}
	if segs[0].HasMoveHandle || !segs[1].HasMoveHandle || segs[2].HasMoveHandle {
		t.Error("only the middle segment has a move handle")
	}
	if segs[1].Previous() != segs[0] || segs[1].Next() != segs[2] {
		t.Error("segment links are broken")
	}
	if segs[1].Orientation != geom.Vertical {
		t.Fatalf("middle segment is %v", segs[1].Orientation)
	}
	before := conn.Points()
	x0 := segs[1].Start.X

	if err := c.MoveSegment(conn.ID, 0, 10); err == nil {
		t.Error("moving an end segment should fail")
	}
	if err := c.MoveSegment(conn.ID, 1, 30); err != nil {
		t.Fatal(err)
	}
	assertOrthogonalRoute(t, conn)
	if got := conn.Segments()[1].Start.X; !near(got, x0+30) {
		t.Errorf("middle segment x = %v, want %v", got, x0+30)
	}
	if conn.Algorithm() != AlgorithmUser {
		t.Errorf("Algorithm() = %q, want user", conn.Algorithm())
	}

	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := conn.Points(); !slices.Equal(got, before) {
		t.Errorf("after undo %v, want %v", got, before)
	}
	if err := c.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := conn.Segments()[1].Start.X; !near(got, x0+30) {
		t.Errorf("after redo x = %v", got)
	}
}

func TestReconnectEnd(t *testing.T) {
	c, _, b, conn := abTwoShapes(t)
	other := addShape(t, c, "C", KindCustom, "", 300, 300, 100, 100)
	before := conn.Points()

	if err := c.ReconnectEnd(conn.ID, TargetEnd, "C", geom.Pt(50, 0)); err != nil {
		t.Fatal(err)
	}
	if conn.DestShape() != other || len(b.Ports()) != 0 || len(other.Ports()) != 1 {
		t.Fatalf("target not moved to C")
	}
	if p := conn.DestPort(); p.Direction != geom.Top || p.X != 46 || p.Y != -5 {
		t.Errorf("port = %v (%v,%v)", p.Direction, p.X, p.Y)
	}
	assertOrthogonalRoute(t, conn)

	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if conn.DestShape() != b || len(other.Ports()) != 0 {
		t.Fatal("undo did not move the end back")
	}
	if p := conn.DestPort(); p.Direction != geom.Left || p.X != -5 || p.Y != 46 {
		t.Errorf("restored port = %v (%v,%v)", p.Direction, p.X, p.Y)
	}
	if got := conn.Points(); !slices.Equal(got, before) {
		t.Errorf("after undo %v, want %v", got, before)
	}
}

func TestMoveShapeReroutes(t *testing.T) {
	c, _, _, conn := abTwoShapes(t)
	before := conn.Points()

	if err := c.MoveShape("B", 300, 200); err != nil {
		t.Fatal(err)
	}
	assertOrthogonalRoute(t, conn)
	if got := conn.Points(); !got[len(got)-1].Eq(geom.Pt(299, 250)) {
		t.Errorf("route ends at %v", got[len(got)-1])
	}

	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := conn.Points(); !slices.Equal(got, before) {
		t.Errorf("after undo %v, want %v", got, before)
	}
}

func TestUserRouteFollowsTranslation(t *testing.T) {
	c, a, b, conn := abTwoShapes(t)
	pts := []geom.Point{geom.Pt(101, 50), geom.Pt(200, 50), geom.Pt(200, 60), geom.Pt(299, 60)}
	b.y = 10
	b.updateCache()
	conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: pts})
	if got := conn.Points(); !slices.Equal(got, pts) {
		t.Fatalf("user route = %v", got)
	}

	if err := a.SetPosition(0, 20); err != nil {
		t.Fatal(err)
	}
	if err := b.SetPosition(300, 30); err != nil {
		t.Fatal(err)
	}
	got := conn.Points()
	if !got[0].Eq(geom.Pt(101, 70)) || !got[len(got)-1].Eq(geom.Pt(299, 80)) {
		t.Errorf("route after moves = %v", got)
	}
	if c.Connection(conn.ID).Algorithm() != AlgorithmUser {
		t.Error("user route replaced by manhattan")
	}
}

func TestReconnectRestoresSavedUserRoute(t *testing.T) {
	c := newCanvas(t)
	addShape(t, c, "A", KindCustom, "", 0, 0, 100, 100)
	b := addShape(t, c, "B", KindCustom, "", 300, 200, 100, 100)
	conn := connect(t, c, "A", "B", geom.Pt(100, 50), geom.Pt(0, 50))
	if err := c.MoveSegment(conn.ID, 1, 30); err != nil {
		t.Fatal(err)
	}
	x := conn.Segments()[1].Start.X

	conn.Disconnect(true)
	b.y += 20
	b.updateCache()
	conn.Reconnect()

	if conn.Algorithm() != AlgorithmUser {
		t.Fatalf("Algorithm() = %q, want user", conn.Algorithm())
	}
	assertOrthogonalRoute(t, conn)
	if segs := conn.Segments(); len(segs) != 3 || !near(segs[1].Start.X, x) {
		t.Errorf("route = %v, want the dragged segment kept at x=%v", conn.Points(), x)
	}
	if got := conn.SavedPoints(); len(got) != 0 {
		t.Errorf("SavedPoints() = %v after reconnect, want none", got)
	}
}

type routeRecorder struct {
	observability.NoopRouteHooks
	errs []error
}

func (r *routeRecorder) OnRoute(_, _ string, _ int, _ time.Duration, err error) {
	r.errs = append(r.errs, err)
}

func TestRouteFailureLeavesConnectionUnpainted(t *testing.T) {
	_, _, _, conn := abTwoShapes(t)
	rec := &routeRecorder{}
	observability.SetRouteHooks(rec)
	t.Cleanup(observability.Reset)

	conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: []geom.Point{geom.Pt(1, 1)}})

	if conn.Painted() {
		t.Error("failed route was painted")
	}
	if len(rec.errs) != 1 || !errors.Is(rec.errs[0], errors.ErrCodeRouteFailed) {
		t.Errorf("route errors = %v, want one ROUTE_FAILED", rec.errs)
	}
}
