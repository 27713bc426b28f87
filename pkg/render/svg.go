package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/canvaskit/pkg/diagram"
)

const svgDefs = `  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="context-stroke"/>
    </marker>
  </defs>
`

// SVG draws c as a standalone SVG document.
func SVG(c *diagram.Canvas, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	f := frame(c, o)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(f.X), num(f.Y), num(f.W), num(f.H), f.W, f.H)
	buf.WriteString(svgDefs)
	if o.background != "" && o.background != "none" {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(f.X), num(f.Y), num(f.W), num(f.H), html.EscapeString(o.background))
	}

	t := &svgTarget{buf: &buf, canvas: c, opts: o}
	if err := c.Paint(t); err != nil {
		return nil, err
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

type svgTarget struct {
	buf    *bytes.Buffer
	canvas *diagram.Canvas
	opts   options
}

func (t *svgTarget) DrawShape(s *diagram.Shape) error {
	b := s.Bounds()
	classes := []string{"shape", s.Kind.String()}
	if s.Selected() {
		classes = append(classes, "selected")
	}
	for _, l := range s.Layers {
		if l.Visible {
			classes = append(classes, "layer-"+l.Name)
		}
	}
	classes = append(classes, s.Style().Classes()...)

	fmt.Fprintf(t.buf, `  <g id="shape-%s" class="%s">`+"\n", html.EscapeString(s.ID), html.EscapeString(strings.Join(classes, " ")))
	fmt.Fprintf(t.buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
		num(b.X), num(b.Y), num(b.W), num(b.H),
		html.EscapeString(shapeFill(s)), html.EscapeString(shapeStroke(s)), num(s.BorderWidth*t.canvas.Zoom()))
	if label := s.Label(); label != "" {
		c := b.Center()
		size := t.opts.fontSize * t.canvas.Zoom()
		fmt.Fprintf(t.buf, `    <text x="%s" y="%s" font-family="monospace" font-size="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			num(c.X), num(c.Y), num(size), html.EscapeString(label))
	}
	t.buf.WriteString("  </g>\n")
	return nil
}

func (t *svgTarget) DrawConnection(conn *diagram.Connection) error {
	ops := outline(t.canvas, conn, t.opts.jumps, t.opts.jumpRadius*t.canvas.Zoom())
	if len(ops) == 0 {
		return nil
	}
	r := num(t.opts.jumpRadius * t.canvas.Zoom())
	var d strings.Builder
	for i, op := range ops {
		if i > 0 {
			d.WriteByte(' ')
		}
		switch op.Kind {
		case opMove:
			fmt.Fprintf(&d, "M %s %s", num(op.To.X), num(op.To.Y))
		case opLine:
			fmt.Fprintf(&d, "L %s %s", num(op.To.X), num(op.To.Y))
		case opJump:
			fmt.Fprintf(&d, "A %s %s 0 0 1 %s %s", r, r, num(op.To.X), num(op.To.Y))
		}
	}

	fmt.Fprintf(t.buf, `  <path id="connection-%s" class="connection %s" d="%s" fill="none" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"`,
		html.EscapeString(conn.ID), conn.Style, d.String(), html.EscapeString(connectionStroke(conn)))
	if ds := dashes(conn.Style); ds != nil {
		parts := make([]string, len(ds))
		for i, v := range ds {
			parts[i] = num(v)
		}
		fmt.Fprintf(t.buf, ` stroke-dasharray="%s"`, strings.Join(parts, ","))
	}
	t.buf.WriteString("/>\n")
	return nil
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

var _ diagram.RenderTarget = (*svgTarget)(nil)
