// Package render exports a canvas as SVG, PNG or Graphviz DOT.
//
// SVG and PNG are drawn through [diagram.Canvas.Paint], so elements appear
// in canvas z-order with the same zoom-scaled coordinates the canvas uses.
// Where two connections cross, the one the canvas reports as jumping is
// drawn with a semicircular hop over the other:
//
//	svg, err := render.SVG(c, render.WithPadding(40))
//	png, err := render.PNG(c, render.WithScale(2))
//
// DOT output describes structure rather than geometry: shapes become nodes,
// regular shapes with children become clusters and connections become edges.
// [DOTToSVG] lays that graph out with Graphviz.
//
// Output is meant for documentation and previews, not pixel-exact
// reproduction of an interactive canvas.
package render
