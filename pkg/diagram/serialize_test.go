package diagram

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

func TestStringifyParseRoundTrip(t *testing.T) {
	c, p, x, _, conn := panelCanvas(t)
	if err := x.SetLabel(0, "worker"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddLayer("background", "bg"); err != nil {
		t.Fatal(err)
	}
	conn.Color = "#ff0000"

	doc := c.Stringify()
	if len(doc.CustomShapes) != 2 || len(doc.RegularShapes) != 1 || len(doc.Connections) != 1 {
		t.Fatalf("document = %d custom, %d regular, %d connections",
			len(doc.CustomShapes), len(doc.RegularShapes), len(doc.Connections))
	}
	if doc.Connections[0].State != nil {
		t.Error("routed connection serialized its waypoints")
	}

	fresh := newCanvas(t)
	res, err := fresh.ParseDocument(doc, DefaultParseOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Shapes) != 3 || len(res.Connections) != 1 {
		t.Fatalf("parsed %d shapes, %d connections", len(res.Shapes), len(res.Connections))
	}
	for _, s := range c.Shapes() {
		got := fresh.Shape(s.ID)
		if got == nil {
			t.Fatalf("shape %s missing", s.ID)
		}
		if !got.Absolute().Eq(s.Absolute()) || got.Width() != s.Width() || got.Height() != s.Height() || got.ParentID() != s.ParentID() {
			t.Errorf("shape %s: %v %vx%v under %q", s.ID, got.Absolute(), got.Width(), got.Height(), got.ParentID())
		}
		if got.ZOrder() != s.ZOrder() || got.Label() != s.Label() || got.Kind != s.Kind {
			t.Errorf("shape %s attributes differ", s.ID)
		}
	}
	got := fresh.Connection(conn.ID)
	if got == nil {
		t.Fatal("connection missing")
	}
	if !slices.Equal(got.Points(), conn.Points()) || got.Color != "#ff0000" {
		t.Errorf("connection = %v %s, want %v", got.Points(), got.Color, conn.Points())
	}
	if len(fresh.Shape("P").Layers) != 1 {
		t.Error("layers not restored")
	}

	if fresh.History().Len() != 1 {
		t.Fatalf("history = %d, want 1", fresh.History().Len())
	}
	if err := fresh.Undo(); err != nil {
		t.Fatal(err)
	}
	if len(fresh.Shapes()) != 0 || len(fresh.Connections()) != 0 {
		t.Error("undo left parsed elements behind")
	}
	if err := fresh.Redo(); err != nil {
		t.Fatal(err)
	}
	if fresh.Shape("X") == nil || fresh.Shape("X").ParentID() != "P" || fresh.Connection(conn.ID) == nil {
		t.Error("redo did not recreate the document")
	}
}

func TestRoundTripKeepsUserRoute(t *testing.T) {
	c, _, b, conn := abTwoShapes(t)
	b.y = 10
	b.updateCache()
	pts := []geom.Point{geom.Pt(101, 50), geom.Pt(200, 50), geom.Pt(200, 60), geom.Pt(299, 60)}
	conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: pts})

	doc := c.Stringify()
	if got := doc.Connections[0].State; !slices.Equal(got, pts) {
		t.Fatalf("State = %v", got)
	}
	fresh := newCanvas(t)
	if _, err := fresh.ParseDocument(doc, DefaultParseOptions()); err != nil {
		t.Fatal(err)
	}
	got := fresh.Connection(conn.ID)
	if got.Algorithm() != AlgorithmUser || !slices.Equal(got.Points(), pts) {
		t.Errorf("parsed route = %s %v", got.Algorithm(), got.Points())
	}
}

func TestCopyPaste(t *testing.T) {
	c, a, b, _ := abTwoShapes(t)
	if err := a.SetLabel(0, "alpha"); err != nil {
		t.Fatal(err)
	}
	depth := c.History().Len()

	if _, err := c.Paste(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("paste with empty clipboard: %v", err)
	}

	c.AddToSelection(a)
	c.AddToSelection(b)
	doc := c.Copy()
	if len(doc.CustomShapes) != 2 || len(doc.Connections) != 1 {
		t.Fatalf("copied %d shapes, %d connections", len(doc.CustomShapes), len(doc.Connections))
	}

	for i, off := range []float64{10, 20} {
		res, err := c.Paste()
		if err != nil {
			t.Fatalf("paste %d: %v", i+1, err)
		}
		if len(res.Shapes) != 2 || len(res.Connections) != 1 {
			t.Fatalf("paste %d created %d shapes, %d connections", i+1, len(res.Shapes), len(res.Connections))
		}
		pa := c.Shape(res.IDMap["A"])
		if pa == nil || pa.ID == "A" {
			t.Fatalf("paste %d: A not copied under a new id", i+1)
		}
		if !pa.Position().Eq(geom.Pt(off, off)) {
			t.Errorf("paste %d: copy of A at %v, want (%v,%v)", i+1, pa.Position(), off, off)
		}
		if pa.Label() != "Copy of alpha" {
			t.Errorf("paste %d: label %q", i+1, pa.Label())
		}
		pc := res.Connections[0]
		if pc.SrcShape() != pa || pc.DestShape().ID != res.IDMap["B"] {
			t.Errorf("paste %d: connection joins %s and %s", i+1, pc.SrcShape().ID, pc.DestShape().ID)
		}
		assertOrthogonalRoute(t, pc)
		if sel := c.Selection(); len(sel) != 2 || sel[0] != pa {
			t.Errorf("paste %d: selection = %d shapes", i+1, len(sel))
		}
	}
	if c.History().Len() != depth+2 || len(c.Shapes()) != 6 {
		t.Fatalf("history %d, shapes %d", c.History().Len(), len(c.Shapes()))
	}

	if err := c.Undo(); err != nil {
		t.Fatal(err)
	}
	if len(c.Shapes()) != 4 || len(c.Connections()) != 2 {
		t.Errorf("after undo: %d shapes, %d connections", len(c.Shapes()), len(c.Connections()))
	}

	c.SetClipboard(doc)
	res, err := c.Paste()
	if err != nil {
		t.Fatal(err)
	}
	if p := c.Shape(res.IDMap["A"]).Position(); !p.Eq(geom.Pt(10, 10)) {
		t.Errorf("offset after SetClipboard = %v", p)
	}
}

func TestParseErrors(t *testing.T) {
	c := newCanvas(t)
	addShape(t, c, "taken", KindCustom, "", 0, 0, 10, 10)
	depth := c.History().Len()

	tests := []struct {
		name string
		opts ParseOptions
		code errors.Code
	}{
		{
			name: "unknown type",
			opts: ParseOptions{Shapes: []ShapeState{{ID: "s", Type: "cloud", Width: 10, Height: 10}}},
			code: errors.ErrCodeUnknownType,
		},
		{
			name: "duplicate input id",
			opts: ParseOptions{Shapes: []ShapeState{{ID: "s", Width: 10, Height: 10}, {ID: "s", Width: 10, Height: 10}}},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "existing id",
			opts: ParseOptions{Shapes: []ShapeState{{ID: "taken", Width: 10, Height: 10}}},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "negative size",
			opts: ParseOptions{Shapes: []ShapeState{{ID: "s", Width: -1, Height: 10}}},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "bad direction",
			opts: ParseOptions{
				Shapes: []ShapeState{{ID: "s", Width: 10, Height: 10}},
				Connections: []ConnectionState{{
					ID:       "c",
					SrcPort:  PortState{Parent: "s", Direction: geom.Direction(9)},
					DestPort: PortState{Parent: "taken", Direction: geom.Left},
				}},
			},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "regular end",
			opts: ParseOptions{
				Shapes: []ShapeState{{ID: "r", Kind: KindRegular, Width: 10, Height: 10}},
				Connections: []ConnectionState{{
					SrcPort:  PortState{Parent: "r", Direction: geom.Right},
					DestPort: PortState{Parent: "taken", Direction: geom.Left},
				}},
			},
			code: errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.CreateCommand = true
			if _, err := c.Parse(tt.opts); !errors.Is(err, tt.code) {
				t.Fatalf("Parse() = %v, want %s", err, tt.code)
			}
			if len(c.Shapes()) != 1 || len(c.Connections()) != 0 || c.History().Len() != depth {
				t.Errorf("failed parse changed the canvas: %d shapes", len(c.Shapes()))
			}
		})
	}
}

func TestParseFallbackFactory(t *testing.T) {
	reg := NewRegistry()
	reg.SetFallback(func(id string) *Shape { return NewShape(id, KindCustom) })
	c := newCanvas(t, func(o *Options) { o.Registry = reg })
	res, err := c.Parse(ParseOptions{Shapes: []ShapeState{{ID: "s", Type: "cloud", Width: 10, Height: 10}}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Shapes[0].Type != TypeCustom {
		t.Errorf("fallback type = %q", res.Shapes[0].Type)
	}
	if c.History().Len() != 0 {
		t.Error("parse without CreateCommand was recorded")
	}
}

func TestParseParents(t *testing.T) {
	child := ShapeState{ID: "child", Parent: "p", X: 5, Y: 5, Width: 10, Height: 10}
	parent := ShapeState{ID: "p", Kind: KindRegular, X: 100, Y: 100, Width: 50, Height: 50}

	ordered := parentsFirst([]ShapeState{child, parent})
	if ordered[0].ID != "p" || ordered[1].ID != "child" {
		t.Fatalf("parentsFirst = %s, %s", ordered[0].ID, ordered[1].ID)
	}

	t.Run("document", func(t *testing.T) {
		c := newCanvas(t)
		doc := &Document{CustomShapes: []ShapeState{child}, RegularShapes: []ShapeState{parent}}
		if _, err := c.ParseDocument(doc, ParseOptions{DiffX: 10}); err != nil {
			t.Fatal(err)
		}
		s := c.Shape("child")
		if s.ParentID() != "p" || !s.Absolute().Eq(geom.Pt(115, 105)) {
			t.Errorf("child under %q at %v", s.ParentID(), s.Absolute())
		}
	})

	t.Run("forward reference", func(t *testing.T) {
		c := newCanvas(t)
		if _, err := c.Parse(ParseOptions{Shapes: []ShapeState{child, parent}}); err != nil {
			t.Fatal(err)
		}
		if s := c.Shape("child"); s.ParentID() != "" || !s.Position().Eq(geom.Pt(5, 5)) {
			t.Errorf("child under %q at %v", s.ParentID(), s.Position())
		}
	})

	t.Run("existing parent", func(t *testing.T) {
		c := newCanvas(t)
		addShape(t, c, "p", KindRegular, "", 0, 0, 50, 50)
		if _, err := c.Parse(ParseOptions{Shapes: []ShapeState{child}, UniqueID: true}); err != nil {
			t.Fatal(err)
		}
		if kids := c.Shape("p").Children(); len(kids) != 1 || kids[0].ID == "child" {
			t.Errorf("children of p = %v", kids)
		}
	})
}

func TestParseSkipsDanglingConnections(t *testing.T) {
	c := newCanvas(t)
	res, err := c.Parse(ParseOptions{
		Shapes: []ShapeState{{ID: "a", Width: 10, Height: 10}},
		Connections: []ConnectionState{{
			ID:       "c",
			SrcPort:  PortState{Parent: "a", Direction: geom.Right},
			DestPort: PortState{Parent: "ghost", Direction: geom.Left},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Connections) != 0 || c.Connection("c") != nil {
		t.Error("dangling connection created")
	}
}

func TestParseOnReadOnlyCanvas(t *testing.T) {
	c := newCanvas(t, func(o *Options) { o.ReadOnly = true })
	res, err := c.Parse(ParseOptions{
		Shapes:         []ShapeState{{ID: "a", Width: 10, Height: 10, Labels: []Label{{Message: "x"}}}},
		CreateCommand:  true,
		PrependMessage: "v2 ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.History().Len() != 0 {
		t.Error("read-only parse was recorded")
	}
	if got := res.Shapes[0].Label(); !strings.HasPrefix(got, "v2 ") {
		t.Errorf("label = %q", got)
	}
}
