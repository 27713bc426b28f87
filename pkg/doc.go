// Package pkg provides the core libraries for canvaskit diagram editing.
//
// # Overview
//
// canvaskit models boxes-and-lines diagrams: rectangular shapes with side
// ports, joined by connections whose routes are made of horizontal and
// vertical segments. The pkg directory is organized from leaf to root:
//
//  1. [geom] - Points, rectangles, directions and segment crossings
//  2. [route] - Orthogonal (Manhattan) routing between ports
//  3. [command] - Undoable commands and the bounded history stack
//  4. [diagram] - Shapes, connections and the editable Canvas
//  5. [io], [store], [cache] - Documents on disk, in databases and cached exports
//  6. [render] - SVG, PNG and Graphviz DOT export
//
// # Data Flow
//
//	Document (JSON/YAML)
//	         ↓
//	Canvas.ParseDocument ──→ shapes, ports, connections
//	         ↓
//	edits (commands on the history stack) ──→ route.Manhattan reroutes
//	         ↓
//	Canvas.Stringify / render.Render
//
// # Quick Start
//
//	c, _ := diagram.New(diagram.DefaultOptions())
//	a, _ := c.CreateShape(diagram.TypeRectangle, "", 40, 40)
//	b, _ := c.CreateShape(diagram.TypeRectangle, "", 240, 120)
//	_, _ = c.Connect(diagram.ConnectRequest{
//		Source:      a.ID,
//		Target:      b.ID,
//		SourcePoint: geom.Pt(diagram.DefaultShapeWidth, diagram.DefaultShapeHeight/2),
//		TargetPoint: geom.Pt(0, diagram.DefaultShapeHeight/2),
//	})
//	svg, _ := render.Render(c, render.FormatSVG)
//
// # Errors
//
// All packages return errors from [errors] carrying a machine-readable code
// (NOT_FOUND, INVALID_INPUT, READ_ONLY, ...). Use errors.GetCode to branch on
// them and errors.UserMessage for display.
//
// [geom]: github.com/matzehuels/canvaskit/pkg/geom
// [route]: github.com/matzehuels/canvaskit/pkg/route
// [command]: github.com/matzehuels/canvaskit/pkg/command
// [diagram]: github.com/matzehuels/canvaskit/pkg/diagram
// [io]: github.com/matzehuels/canvaskit/pkg/io
// [store]: github.com/matzehuels/canvaskit/pkg/store
// [cache]: github.com/matzehuels/canvaskit/pkg/cache
// [render]: github.com/matzehuels/canvaskit/pkg/render
// [errors]: github.com/matzehuels/canvaskit/pkg/errors
package pkg
