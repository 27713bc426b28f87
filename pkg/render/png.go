package render

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
)

// MaxPNGSide bounds each side of a PNG export in pixels.
const MaxPNGSide = 16384

// PNG rasterizes c. The image covers the padded extent at the configured
// scale.
func PNG(c *diagram.Canvas, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	f := frame(c, o)
	w := int(math.Ceil(f.W * o.scale))
	h := int(math.Ceil(f.H * o.scale))
	if w < 1 || h < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to export")
	}
	if w > MaxPNGSide || h > MaxPNGSide {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image %dx%d exceeds %d pixels per side", w, h, MaxPNGSide)
	}

	dc := gg.NewContext(w, h)
	if o.background != "" && o.background != "none" {
		dc.SetHexColor(o.background)
		dc.Clear()
	}
	dc.Scale(o.scale, o.scale)
	dc.Translate(-f.X, -f.Y)

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse font")
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    o.fontSize * c.Zoom(),
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	if err := c.Paint(&pngTarget{dc: dc, canvas: c, opts: o}); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

type pngTarget struct {
	dc     *gg.Context
	canvas *diagram.Canvas
	opts   options
}

func (t *pngTarget) DrawShape(s *diagram.Shape) error {
	dc := t.dc
	b := s.Bounds()
	dc.SetDash()
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	dc.SetHexColor(shapeFill(s))
	dc.FillPreserve()
	dc.SetLineWidth(s.BorderWidth * t.canvas.Zoom())
	dc.SetHexColor(shapeStroke(s))
	dc.Stroke()

	if label := s.Label(); label != "" {
		c := b.Center()
		dc.SetHexColor(DefaultStroke)
		dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.5)
	}
	return nil
}

func (t *pngTarget) DrawConnection(conn *diagram.Connection) error {
	dc := t.dc
	r := t.opts.jumpRadius * t.canvas.Zoom()
	ops := outline(t.canvas, conn, t.opts.jumps, r)
	if len(ops) == 0 {
		return nil
	}
	dc.NewSubPath()
	prev := ops[0].To
	for _, op := range ops {
		switch op.Kind {
		case opMove:
			dc.MoveTo(op.To.X, op.To.Y)
		case opLine:
			dc.LineTo(op.To.X, op.To.Y)
		case opJump:
			from := math.Atan2(prev.Y-op.Center.Y, prev.X-op.Center.X)
			dc.DrawArc(op.Center.X, op.Center.Y, r, from, from+math.Pi)
		}
		prev = op.To
	}
	dc.SetLineWidth(1.5)
	dc.SetHexColor(connectionStroke(conn))
	dc.SetDash(dashes(conn.Style)...)
	dc.Stroke()

	pts := conn.Points()
	if len(pts) >= 2 {
		t.arrow(pts[len(pts)-2].X, pts[len(pts)-2].Y, pts[len(pts)-1].X, pts[len(pts)-1].Y)
	}
	return nil
}

// arrow fills a head at (tx, ty) pointing away from (fx, fy).
func (t *pngTarget) arrow(fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 6.0, 0.5
	dc := t.dc
	dc.SetDash()
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*dx+size*dy*spread, ty-size*dy-size*dx*spread)
	dc.LineTo(tx-size*dx-size*dy*spread, ty-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

var _ diagram.RenderTarget = (*pngTarget)(nil)
