package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
)

// ToDOT describes c as a Graphviz digraph. Node sizes are in inches at 72
// canvas units per inch; regular shapes with children become clusters.
func ToDOT(c *diagram.Canvas) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontname=\"monospace\", fixedsize=true];\n")
	buf.WriteString("\n")

	for _, s := range c.Children() {
		writeDOTShape(&buf, s, "  ")
	}

	buf.WriteString("\n")
	for _, conn := range c.Connections() {
		attrs := []string{}
		switch conn.Style {
		case diagram.StyleDotted:
			attrs = append(attrs, "style=dotted")
		case diagram.StyleSegmented:
			attrs = append(attrs, "style=dashed")
		}
		if conn.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", conn.Color))
		}
		fmt.Fprintf(&buf, "  %q -> %q", conn.SrcShape().ID, conn.DestShape().ID)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTShape(buf *bytes.Buffer, s *diagram.Shape, indent string) {
	children := s.Children()
	if s.Kind == diagram.KindRegular && len(children) > 0 {
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+s.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, s.Label())
		fmt.Fprintf(buf, "%s  style=\"filled\";\n%s  fillcolor=%q;\n", indent, indent, shapeFill(s))
		for _, ch := range children {
			writeDOTShape(buf, ch, indent+"  ")
		}
		fmt.Fprintf(buf, "%s}\n", indent)
		return
	}

	w, h := s.Size()
	label := s.Label()
	if label == "" {
		label = s.ID
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		"width=" + inches(w),
		"height=" + inches(h),
	}
	if f := s.Style().Get("fill"); f != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", f))
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, s.ID, strings.Join(attrs, ", "))
	for _, ch := range children {
		writeDOTShape(buf, ch, indent)
	}
}

func inches(v float64) string {
	return strconv.FormatFloat(v/72, 'f', 2, 64)
}

// DOTToSVG lays out a DOT graph with Graphviz and returns SVG.
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in pixels from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
