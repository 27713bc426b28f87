// Package diagram implements an editable scene graph of shapes connected by
// orthogonally routed connections.
//
// # Overview
//
// A [Canvas] owns every element in id-indexed tables:
//
//   - [Shape]: a node with a logical position relative to its parent, a
//     logical dimension, labels, layers and ports. Shapes nest; the canvas
//     is the implicit root.
//   - [Port]: the anchor of one connection end on a shape's border, facing
//     one of the four [geom.Direction] values.
//   - [Connection]: an edge between two ports whose route is a list of
//     axis-aligned [Segment] values.
//
// Relations are stored as ids and resolved through the canvas, so parent,
// child, port and connection links never form ownership cycles.
//
// # Coordinates
//
// Positions and sizes are logical (unzoomed). The absolute position of a
// shape is derived:
//
//	absoluteX(s) = absoluteX(parent) + s.x*zoom   (s has a parent)
//	absoluteX(s) = s.x*zoom                        (top-level shape)
//
// Zoom presets 1..5 map to 75%..175% ([ZoomFactor]). Changing the preset
// rebuilds every shape's zoom cache and repaints every connection but never
// changes logical geometry. Connection routes are kept in zoom-scaled canvas
// coordinates and serialized in logical ones.
//
// # Routing
//
// [Connection.Connect] builds a route with the canvas [route.Router]
// (manhattan) or from explicit waypoints (user). Routing failures are logged
// and leave the connection unpainted instead of failing the caller. After
// each route change the crossings with every other connection are rebuilt;
// a crossing is recorded on both connections. Where connections cross, the
// one added later is drawn with a jump ([Canvas.JumpsOver]).
//
// # Interaction
//
// [Canvas.PointerDown] hit-tests the top-most shape and classifies the
// pointer into cancel, drag or connect ([Shape.DetermineDragBehavior]): a
// band along the border, whose width depends on the zoom preset, starts a
// connection while the inner area moves the shape.
//
// Selected shapes must be siblings ([IsValidSelection]). Selecting a shape
// lifts it, its descendants and their connections by [ZElevation] so they
// draw on top; unselecting restores the exact previous z-order.
//
// [Canvas.MoveSelection] applies position changes at once and defers
// re-routing to a [Debouncer], so a burst of arrow-key moves re-routes and
// records history only once. The deferred pass runs on the caller's
// goroutine: through [Canvas.RunDueMove] once [Canvas.MoveReady] fires,
// through [Options.Executor], or before the next recorded command.
//
// # History
//
// Mutating canvas operations ([Canvas.CreateShape], [Canvas.DeleteSelection],
// [Canvas.MoveShape], [Canvas.ResizeShape], [Canvas.Connect],
// [Canvas.ReconnectEnd], [Canvas.MoveSegment], [Canvas.Paste]) run as
// commands on a bounded [command.Stack]. Read-only canvases reject them with
// errors.ErrCodeReadOnly.
//
// # Serialization
//
// [Canvas.Stringify] produces a [Document]; [Canvas.Parse] and
// [Canvas.ParseDocument] rebuild elements from one, optionally with fresh
// ids, an offset and a label prefix, as a single undoable command.
// [Canvas.Copy] and [Canvas.Paste] are built on top.
package diagram
