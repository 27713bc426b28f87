package diagram

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvaskit/pkg/geom"
)

func newCanvas(t *testing.T, mods ...func(*Options)) *Canvas {
	t.Helper()
	opts := DefaultOptions()
	opts.Logger = log.New(io.Discard)
	for _, m := range mods {
		m(&opts)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// addShape attaches a shape directly, bypassing the history.
func addShape(t *testing.T, c *Canvas, id string, kind Kind, parent string, x, y, w, h float64) *Shape {
	t.Helper()
	s := NewShape(id, kind)
	if err := s.move(x, y); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDimension(w, h); err != nil {
		t.Fatal(err)
	}
	if err := c.AddShape(s, parent); err != nil {
		t.Fatalf("AddShape(%s): %v", id, err)
	}
	return s
}

func connect(t *testing.T, c *Canvas, src, dst string, sp, dp geom.Point) *Connection {
	t.Helper()
	conn, err := c.Connect(ConnectRequest{Source: src, Target: dst, SourcePoint: sp, TargetPoint: dp})
	if err != nil {
		t.Fatalf("Connect(%s, %s): %v", src, dst, err)
	}
	return conn
}

// abTwoShapes is the canvas of two 100x100 shapes A at (0,0) and B at
// (300,0) joined from A's right side to B's left side.
func abTwoShapes(t *testing.T, mods ...func(*Options)) (*Canvas, *Shape, *Shape, *Connection) {
	t.Helper()
	c := newCanvas(t, mods...)
	a := addShape(t, c, "A", KindCustom, "", 0, 0, 100, 100)
	b := addShape(t, c, "B", KindCustom, "", 300, 0, 100, 100)
	conn := connect(t, c, "A", "B", geom.Pt(100, 50), geom.Pt(0, 50))
	return c, a, b, conn
}

func assertOrthogonalRoute(t *testing.T, conn *Connection) {
	t.Helper()
	pts := conn.Points()
	if len(pts) < 2 {
		t.Fatalf("route has %d points", len(pts))
	}
	if !pts[0].Eq(conn.SrcPort().Anchor()) {
		t.Errorf("first point %v != source anchor %v", pts[0], conn.SrcPort().Anchor())
	}
	if !pts[len(pts)-1].Eq(conn.DestPort().Anchor()) {
		t.Errorf("last point %v != dest anchor %v", pts[len(pts)-1], conn.DestPort().Anchor())
	}
	for i, s := range conn.Segments() {
		if !geom.AxisAligned(s.Start, s.End) {
			t.Errorf("segment %d %v-%v is not axis-aligned", i, s.Start, s.End)
		}
		if i > 0 && !conn.Segments()[i-1].End.Eq(s.Start) {
			t.Errorf("segment %d is not contiguous", i)
		}
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// fakeScheduler records timers and fires them on demand.
type fakeScheduler struct {
	timers []*fakeTimer
}

type fakeTimer struct {
	f       func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every timer that is neither stopped nor fired.
func (s *fakeScheduler) fire() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.f()
			n++
		}
	}
	return n
}
