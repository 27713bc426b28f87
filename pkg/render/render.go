package render

import (
	"math"
	"strings"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

// Format is an export format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatDOT Format = "dot"
)

// Formats lists the export formats.
var Formats = []Format{FormatSVG, FormatPNG, FormatDOT}

// ParseFormat resolves a format name, ignoring case and a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatSVG, FormatPNG, FormatDOT:
		return f, nil
	case "gv":
		return FormatDOT, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "text/vnd.graphviz"
}

// Defaults.
const (
	DefaultPadding    = 20.0
	DefaultJumpRadius = 5.0
	DefaultBackground = "#ffffff"
	DefaultStroke     = "#333333"
	DefaultFontSize   = 12.0
)

// Option configures an export.
type Option func(*options)

type options struct {
	padding    float64
	jumps      bool
	jumpRadius float64
	background string
	scale      float64
	fontSize   float64
}

func newOptions(opts []Option) options {
	o := options{
		padding:    DefaultPadding,
		jumps:      true,
		jumpRadius: DefaultJumpRadius,
		background: DefaultBackground,
		scale:      1,
		fontSize:   DefaultFontSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPadding sets the margin around the drawing.
func WithPadding(p float64) Option { return func(o *options) { o.padding = math.Max(0, p) } }

// WithoutJumps draws crossings as plain overlaps.
func WithoutJumps() Option { return func(o *options) { o.jumps = false } }

// WithJumpRadius sets the radius of the hop drawn at crossings.
func WithJumpRadius(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.jumpRadius = r
		}
	}
}

// WithBackground sets the background color; "" or "none" leaves it
// transparent.
func WithBackground(c string) Option { return func(o *options) { o.background = c } }

// WithScale multiplies the PNG resolution.
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithFontSize sets the label font size.
func WithFontSize(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.fontSize = s
		}
	}
}

// Render exports c in format f.
func Render(c *diagram.Canvas, f Format, opts ...Option) ([]byte, error) {
	switch f {
	case FormatSVG:
		return SVG(c, opts...)
	case FormatPNG:
		return PNG(c, opts...)
	case FormatDOT:
		return []byte(ToDOT(c)), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported export format %q", f)
}

// Extent returns the zoom-scaled box covering every shape border and every
// painted connection. An empty canvas has a zero extent.
func Extent(c *diagram.Canvas) geom.Rect {
	first := true
	var minX, minY, maxX, maxY float64
	add := func(p geom.Point) {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, s := range c.Shapes() {
		b := s.OuterBounds()
		add(b.Min())
		add(b.Max())
	}
	for _, conn := range c.Connections() {
		for _, p := range conn.Points() {
			add(p)
		}
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// frame is the extent grown by the padding.
func frame(c *diagram.Canvas, o options) geom.Rect {
	e := Extent(c)
	return geom.R(e.X-o.padding, e.Y-o.padding, e.W+2*o.padding, e.H+2*o.padding)
}

// opKind is a path instruction.
type opKind int

const (
	opMove opKind = iota
	opLine
	opJump
)

// pathOp is one instruction of a connection outline. For opJump, To is the
// far side of the hop and Center the crossing point.
type pathOp struct {
	Kind   opKind
	To     geom.Point
	Center geom.Point
}

// outline turns a connection route into path instructions, replacing each
// crossing the connection jumps over with a hop of radius r. Crossings
// closer than r to a segment end are drawn flat.
func outline(c *diagram.Canvas, conn *diagram.Connection, jumps bool, r float64) []pathOp {
	segs := conn.Segments()
	if len(segs) == 0 {
		return nil
	}
	ops := []pathOp{{Kind: opMove, To: segs[0].Start}}
	for _, seg := range segs {
		if jumps {
			ops = appendJumps(ops, c, conn, seg, r)
		}
		ops = append(ops, pathOp{Kind: opLine, To: seg.End})
	}
	return ops
}

func appendJumps(ops []pathOp, c *diagram.Canvas, conn *diagram.Connection, seg *diagram.Segment, r float64) []pathOp {
	length := seg.Length()
	if length == 0 {
		return ops
	}
	dir := seg.End.Sub(seg.Start).Scale(1 / length)
	last := 0.0
	for _, in := range seg.Intersections() {
		other := c.Connection(in.With)
		if other == nil || !c.JumpsOver(conn, other) {
			continue
		}
		d := geom.ManhattanDistance(seg.Start, in.Point)
		if d-r < last || d+r > length {
			continue
		}
		ops = append(ops,
			pathOp{Kind: opLine, To: in.Point.Sub(dir.Scale(r))},
			pathOp{Kind: opJump, To: in.Point.Add(dir.Scale(r)), Center: in.Point},
		)
		last = d + r
	}
	return ops
}

// dashes returns the dash pattern of a segment style, nil for solid.
func dashes(s diagram.SegmentStyle) []float64 {
	switch s {
	case diagram.StyleDotted:
		return []float64{2, 4}
	case diagram.StyleSegmented:
		return []float64{8, 4}
	}
	return nil
}

// shapeFill returns the fill of a shape: its "fill" style property, or a
// default per kind.
func shapeFill(s *diagram.Shape) string {
	if f := s.Style().Get("fill"); f != "" {
		return f
	}
	if s.Kind == diagram.KindRegular {
		return "#f5f5f5"
	}
	return "#ffffff"
}

func shapeStroke(s *diagram.Shape) string {
	if v := s.Style().Get("stroke"); v != "" {
		return v
	}
	if s.Selected() {
		return "#1e88e5"
	}
	return DefaultStroke
}

func connectionStroke(conn *diagram.Connection) string {
	if conn.Color != "" {
		return conn.Color
	}
	return DefaultStroke
}
