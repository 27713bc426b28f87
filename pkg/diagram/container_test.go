package diagram

import (
	"testing"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

func TestContainerItems(t *testing.T) {
	c := newCanvas(t)
	panel := addShape(t, c, "panel", KindRegular, "", 0, 0, 400, 400)

	c1, c2 := NewShape("c1", KindCustom), NewShape("c2", KindCustom)
	for i, ch := range []*Shape{c1, c2} {
		before := len(panel.Children())
		if err := panel.AddChild(ch); err != nil {
			t.Fatal(err)
		}
		if got := len(panel.Children()); got != before+1 {
			t.Fatalf("AddChild #%d: %d children, want %d", i, got, before+1)
		}
	}
	g := addShape(t, c, "g", KindCustom, "c1", 1, 1, 10, 10)

	if !panel.IsDirectParentOf(c1) || !c1.IsDirectParentOf(g) {
		t.Error("IsDirectParentOf should hold for direct children")
	}
	if panel.IsDirectParentOf(g) {
		t.Error("IsDirectParentOf must not be recursive")
	}

	if err := panel.RemoveChild(c2); err != nil {
		t.Fatal(err)
	}
	if got := len(panel.Children()); got != 1 {
		t.Errorf("after RemoveChild: %d children", got)
	}
	if c.Shape("c2") != nil {
		t.Error("removed child still on canvas")
	}
	if err := panel.RemoveChild(g); err == nil {
		t.Error("RemoveChild of a grandchild should fail")
	}

	if err := panel.ClearChildren(); err != nil {
		t.Fatal(err)
	}
	if got := len(panel.Children()); got != 0 {
		t.Errorf("after ClearChildren: %d children", got)
	}
	if c.Shape("g") != nil {
		t.Error("descendant of a cleared child still on canvas")
	}
}

func TestCanvasContainer(t *testing.T) {
	c := newCanvas(t)
	a := NewShape("a", KindCustom)
	if err := c.AddChild(a); err != nil {
		t.Fatal(err)
	}
	if err := c.AddChild(NewShape("b", KindRegular)); err != nil {
		t.Fatal(err)
	}
	if len(c.Children()) != 2 || !c.IsDirectParentOf(a) {
		t.Fatalf("children = %d", len(c.Children()))
	}
	if len(c.CustomShapes()) != 1 || len(c.RegularShapes()) != 1 {
		t.Errorf("partition = %d custom, %d regular", len(c.CustomShapes()), len(c.RegularShapes()))
	}
	if err := c.AddChild(a); err == nil {
		t.Error("adding an existing child should fail")
	}
	if err := c.RemoveChild(a); err != nil {
		t.Fatal(err)
	}
	if len(c.Children()) != 1 {
		t.Errorf("children after remove = %d", len(c.Children()))
	}
	if err := c.ClearChildren(); err != nil {
		t.Fatal(err)
	}
	if len(c.Children()) != 0 || len(c.Shapes()) != 0 {
		t.Error("ClearChildren left shapes behind")
	}
}

func TestAddChildRejectsCycles(t *testing.T) {
	c := newCanvas(t)
	p := addShape(t, c, "p", KindRegular, "", 0, 0, 400, 400)
	ch := addShape(t, c, "c", KindRegular, "p", 10, 10, 100, 100)

	if err := ch.AddChild(p); !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("ch.AddChild(p) = %v, want CYCLE", err)
	}
	if err := p.AddChild(p); !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("p.AddChild(p) = %v, want CYCLE", err)
	}
	if ch.ParentID() != "p" {
		t.Errorf("parent changed to %q", ch.ParentID())
	}
}

func TestReparentKeepsConnectionsAttached(t *testing.T) {
	c, _, b, conn := abTwoShapes(t)
	panel := addShape(t, c, "panel", KindRegular, "", 0, 300, 500, 300)

	if err := panel.AddChild(b); err != nil {
		t.Fatal(err)
	}
	if b.ParentID() != "panel" || c.IsDirectParentOf(b) {
		t.Fatalf("b not moved under panel")
	}
	if got := b.Absolute(); !got.Eq(geom.Pt(300, 300)) {
		t.Errorf("b absolute = %v", got)
	}
	assertOrthogonalRoute(t, conn)
}

func TestDetachedShapeNeedsCanvas(t *testing.T) {
	s := NewShape("s", KindRegular)
	if err := s.AddChild(NewShape("x", KindCustom)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddChild on detached shape = %v", err)
	}
	if len(s.Children()) != 0 {
		t.Error("detached shape has children")
	}
}
