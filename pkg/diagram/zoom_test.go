package diagram

import (
	"testing"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

func TestZoomFactor(t *testing.T) {
	tests := []struct {
		preset int
		want   float64
		margin float64
	}{
		{1, 0.75, 4},
		{2, 1, 6},
		{3, 1.25, 8},
		{4, 1.5, 10},
		{5, 1.75, 12},
	}
	for _, tt := range tests {
		got, err := ZoomFactor(tt.preset)
		if err != nil {
			t.Fatalf("ZoomFactor(%d): %v", tt.preset, err)
		}
		if got != tt.want {
			t.Errorf("ZoomFactor(%d) = %v, want %v", tt.preset, got, tt.want)
		}
		if m := DragMargin(tt.preset); m != tt.margin {
			t.Errorf("DragMargin(%d) = %v, want %v", tt.preset, m, tt.margin)
		}
	}
	for _, p := range []int{0, 6, -1} {
		if _, err := ZoomFactor(p); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ZoomFactor(%d) err = %v", p, err)
		}
	}
	if DragMargin(0) != 4 || DragMargin(9) != 12 {
		t.Error("DragMargin should clamp")
	}
}

func TestApplyZoom(t *testing.T) {
	c, a, b, conn := abTwoShapes(t)

	if err := c.ApplyZoom(4); err != nil {
		t.Fatal(err)
	}
	if c.Zoom() != 1.5 || c.ZoomPreset() != 4 {
		t.Fatalf("zoom = %v preset %d", c.Zoom(), c.ZoomPreset())
	}
	if a.X() != 0 || b.X() != 300 || b.Width() != 100 {
		t.Error("logical geometry changed")
	}
	if b.ZoomWidth() != 150 || !b.Absolute().Eq(geom.Pt(450, 0)) {
		t.Errorf("zoomed B = %v %v", b.Absolute(), b.ZoomWidth())
	}
	assertOrthogonalRoute(t, conn)
	want := []geom.Point{geom.Pt(151.5, 75), geom.Pt(448.5, 75)}
	got := conn.Points()
	if len(got) != 2 || !got[0].Eq(want[0]) || !got[1].Eq(want[1]) {
		t.Errorf("Points() = %v, want %v", got, want)
	}

	for _, p := range []int{0, 6} {
		if err := c.ApplyZoom(p); err == nil {
			t.Errorf("ApplyZoom(%d) succeeded", p)
		}
	}
	if c.ZoomPreset() != 4 {
		t.Error("failed ApplyZoom changed the preset")
	}
}

func TestApplyZoomKeepsUserRoute(t *testing.T) {
	c, _, b, conn := abTwoShapes(t)
	b.y = 10
	b.updateCache()
	logical := []geom.Point{geom.Pt(101, 50), geom.Pt(200, 50), geom.Pt(200, 60), geom.Pt(299, 60)}
	conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: logical})

	for _, preset := range []int{5, 1, 2} {
		if err := c.ApplyZoom(preset); err != nil {
			t.Fatal(err)
		}
		if conn.Algorithm() != AlgorithmUser {
			t.Fatalf("preset %d: algorithm %q", preset, conn.Algorithm())
		}
		got := conn.LogicalPoints()
		if len(got) != len(logical) {
			t.Fatalf("preset %d: %v", preset, got)
		}
		for i := range got {
			if !near(got[i].X, logical[i].X) || !near(got[i].Y, logical[i].Y) {
				t.Errorf("preset %d: point %d = %v, want %v", preset, i, got[i], logical[i])
			}
		}
	}
}

func TestNewRejectsBadZoom(t *testing.T) {
	opts := DefaultOptions()
	opts.ZoomPreset = 7
	if _, err := New(opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New with preset 7: %v", err)
	}
}
