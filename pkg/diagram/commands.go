package diagram

import (
	"github.com/matzehuels/canvaskit/pkg/command"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

// baseCommand stores the receiver of a command and the canvas resolved from
// it.
type baseCommand struct {
	name     string
	receiver any
	canvas   *Canvas
}

func newBase(name string, receiver any) baseCommand {
	return baseCommand{name: name, receiver: receiver, canvas: CanvasOf(receiver)}
}

func (b baseCommand) Name() string { return b.name }

// Canvas returns the canvas the command operates on.
func (b baseCommand) Canvas() *Canvas { return b.canvas }

// ===== Create =====

type createShapeCommand struct {
	baseCommand
	shape   *Shape
	parent  string
	removed *removal
}

func newCreateShapeCommand(c *Canvas, s *Shape, parent string) *createShapeCommand {
	return &createShapeCommand{baseCommand: newBase("create "+s.Type, c), shape: s, parent: parent}
}

func (cmd *createShapeCommand) Execute() error {
	if cmd.removed != nil {
		return cmd.Redo()
	}
	return cmd.canvas.attach(cmd.shape, cmd.parent)
}

func (cmd *createShapeCommand) Undo() error {
	cmd.removed = cmd.canvas.detach(cmd.shape.ID)
	return nil
}

func (cmd *createShapeCommand) Redo() error {
	cmd.canvas.restore(cmd.removed)
	cmd.removed = nil
	return nil
}

// ===== Delete =====

type deleteCommand struct {
	baseCommand
	ids      []string
	removals []*removal
}

func (cmd *deleteCommand) Execute() error {
	cmd.removals = cmd.removals[:0]
	for _, id := range cmd.ids {
		if r := cmd.canvas.detach(id); r != nil {
			cmd.removals = append(cmd.removals, r)
		}
	}
	return nil
}

func (cmd *deleteCommand) Undo() error {
	for i := len(cmd.removals) - 1; i >= 0; i-- {
		cmd.canvas.restore(cmd.removals[i])
	}
	return nil
}

func (cmd *deleteCommand) Redo() error { return cmd.Execute() }

// ===== Move =====

type shapeMove struct {
	id       string
	from, to geom.Point
}

type moveCommand struct {
	baseCommand
	moves []shapeMove
}

func (cmd *moveCommand) apply(to bool) error {
	ids := make([]string, 0, len(cmd.moves))
	for _, m := range cmd.moves {
		s := cmd.canvas.shapes[m.id]
		if s == nil {
			return errors.NotFound("shape", m.id)
		}
		p := m.from
		if to {
			p = m.to
		}
		if err := s.move(p.X, p.Y); err != nil {
			return err
		}
		ids = append(ids, m.id)
	}
	cmd.canvas.reconnectShapes(ids...)
	return nil
}

func (cmd *moveCommand) Execute() error { return cmd.apply(true) }
func (cmd *moveCommand) Undo() error    { return cmd.apply(false) }
func (cmd *moveCommand) Redo() error    { return cmd.apply(true) }

// ===== Resize =====

type resizeCommand struct {
	baseCommand
	id         string
	from, to   geom.Point
	portsFrom  map[string]geom.Point
	portsTo    map[string]geom.Point
	sidesFrom  map[string]geom.Direction
	sidesTo    map[string]geom.Direction
	recordedTo bool
}

func snapshotPorts(s *Shape) (map[string]geom.Point, map[string]geom.Direction) {
	pos := make(map[string]geom.Point)
	dir := make(map[string]geom.Direction)
	for _, p := range s.Ports() {
		pos[p.ID] = geom.Pt(p.X, p.Y)
		dir[p.ID] = p.Direction
	}
	return pos, dir
}

func (cmd *resizeCommand) Execute() error {
	s := cmd.canvas.shapes[cmd.id]
	if s == nil {
		return errors.NotFound("shape", cmd.id)
	}
	if cmd.recordedTo {
		return cmd.Redo()
	}
	cmd.from = geom.Pt(s.width, s.height)
	cmd.portsFrom, cmd.sidesFrom = snapshotPorts(s)
	if err := s.Resize(cmd.to.X, cmd.to.Y); err != nil {
		return err
	}
	cmd.to = geom.Pt(s.width, s.height)
	cmd.portsTo, cmd.sidesTo = snapshotPorts(s)
	cmd.recordedTo = true
	return nil
}

func (cmd *resizeCommand) restore(size geom.Point, pos map[string]geom.Point, dir map[string]geom.Direction) error {
	s := cmd.canvas.shapes[cmd.id]
	if s == nil {
		return errors.NotFound("shape", cmd.id)
	}
	if err := s.SetDimension(size.X, size.Y); err != nil {
		return err
	}
	for _, p := range s.Ports() {
		if xy, ok := pos[p.ID]; ok {
			p.X, p.Y, p.Direction = xy.X, xy.Y, dir[p.ID]
		}
	}
	cmd.canvas.reconnectShapes(cmd.id)
	return nil
}

func (cmd *resizeCommand) Undo() error { return cmd.restore(cmd.from, cmd.portsFrom, cmd.sidesFrom) }
func (cmd *resizeCommand) Redo() error { return cmd.restore(cmd.to, cmd.portsTo, cmd.sidesTo) }

// ===== Connect =====

// ConnectRequest describes a new connection between two shapes. The click
// points are logical and relative to each shape's top-left corner.
type ConnectRequest struct {
	Source, Target           string
	SourcePoint, TargetPoint geom.Point

	Style               SegmentStyle
	Color               string
	SrcDecoratorPrefix  string
	DestDecoratorPrefix string
}

type connectCommand struct {
	baseCommand
	req     ConnectRequest
	conn    *Connection
	removed *connRecord
}

func (cmd *connectCommand) Execute() error {
	if cmd.conn != nil {
		return cmd.Redo()
	}
	c := cmd.canvas
	src, dst := c.shapes[cmd.req.Source], c.shapes[cmd.req.Target]
	if src == nil {
		return errors.NotFound("shape", cmd.req.Source)
	}
	if dst == nil {
		return errors.NotFound("shape", cmd.req.Target)
	}
	conn, err := c.NewConnection(src, dst, cmd.req.SourcePoint, cmd.req.TargetPoint)
	if err != nil {
		return err
	}
	if cmd.req.Style != "" {
		conn.Style = cmd.req.Style
	}
	conn.Color = cmd.req.Color
	conn.SrcDecoratorPrefix = cmd.req.SrcDecoratorPrefix
	conn.DestDecoratorPrefix = cmd.req.DestDecoratorPrefix
	cmd.conn = conn
	c.updateSharedConnections()
	return nil
}

func (cmd *connectCommand) Undo() error {
	rec := cmd.canvas.detachConnection(cmd.conn)
	cmd.removed = &rec
	return nil
}

func (cmd *connectCommand) Redo() error {
	if cmd.removed == nil {
		return nil
	}
	cmd.canvas.restoreConnection(*cmd.removed)
	cmd.removed = nil
	cmd.canvas.updateSharedConnections()
	return nil
}

// ===== Reconnect =====

// End selects one end of a connection.
type End int

const (
	SourceEnd End = iota
	TargetEnd
)

type endState struct {
	shape     string
	x, y      float64
	direction geom.Direction
	algorithm Algorithm
	points    []geom.Point
}

type reconnectCommand struct {
	baseCommand
	conn         string
	end          End
	shape        string
	click        geom.Point
	before       endState
	after        endState
	hasSnapshots bool
}

func (cmd *reconnectCommand) port() (*Connection, *Port, error) {
	conn := cmd.canvas.conns[cmd.conn]
	if conn == nil {
		return nil, nil, errors.NotFound("connection", cmd.conn)
	}
	if cmd.end == SourceEnd {
		return conn, conn.SrcPort(), nil
	}
	return conn, conn.DestPort(), nil
}

func (cmd *reconnectCommand) snapshot(conn *Connection, p *Port) endState {
	return endState{
		shape: p.shape, x: p.X, y: p.Y, direction: p.Direction,
		algorithm: conn.algorithm, points: conn.LogicalPoints(),
	}
}

func (cmd *reconnectCommand) apply(st endState) error {
	conn, p, err := cmd.port()
	if err != nil {
		return err
	}
	s := cmd.canvas.shapes[st.shape]
	if s == nil {
		return errors.NotFound("shape", st.shape)
	}
	cmd.canvas.movePort(p, s)
	p.X, p.Y, p.Direction = st.x, st.y, st.direction
	conn.Connect(ConnectOptions{Algorithm: st.algorithm, Points: st.points})
	cmd.canvas.updateSharedConnections()
	return nil
}

func (cmd *reconnectCommand) Execute() error {
	if cmd.hasSnapshots {
		return cmd.apply(cmd.after)
	}
	conn, p, err := cmd.port()
	if err != nil {
		return err
	}
	s := cmd.canvas.shapes[cmd.shape]
	if s == nil {
		return errors.NotFound("shape", cmd.shape)
	}
	other := conn.SrcPort()
	if cmd.end == SourceEnd {
		other = conn.DestPort()
	}
	probe := NewPort("")
	probe.Size = p.Size
	if err := s.DefinePortPosition(probe, cmd.click, other); err != nil {
		return err
	}
	cmd.before = cmd.snapshot(conn, p)
	cmd.canvas.movePort(p, s)
	p.X, p.Y, p.Direction = probe.X, probe.Y, probe.Direction
	conn.Connect(ConnectOptions{})
	cmd.canvas.updateSharedConnections()
	cmd.after = cmd.snapshot(conn, p)
	cmd.hasSnapshots = true
	return nil
}

func (cmd *reconnectCommand) Undo() error { return cmd.apply(cmd.before) }
func (cmd *reconnectCommand) Redo() error { return cmd.apply(cmd.after) }

// movePort hands p over to shape s.
func (c *Canvas) movePort(p *Port, s *Shape) {
	if p.shape == s.ID {
		return
	}
	c.removePort(p)
	c.addPort(s, p)
}

// ===== Segment move =====

type segmentMoveCommand struct {
	baseCommand
	conn      string
	index     int
	delta     float64
	algorithm Algorithm
	points    []geom.Point
}

func (cmd *segmentMoveCommand) Execute() error {
	conn := cmd.canvas.conns[cmd.conn]
	if conn == nil {
		return errors.NotFound("connection", cmd.conn)
	}
	alg, pts := conn.algorithm, conn.LogicalPoints()
	if err := conn.MoveSegment(cmd.index, cmd.delta); err != nil {
		return err
	}
	cmd.algorithm, cmd.points = alg, pts
	return nil
}

func (cmd *segmentMoveCommand) Undo() error {
	conn := cmd.canvas.conns[cmd.conn]
	if conn == nil {
		return errors.NotFound("connection", cmd.conn)
	}
	conn.Connect(ConnectOptions{Algorithm: cmd.algorithm, Points: cmd.points})
	return nil
}

func (cmd *segmentMoveCommand) Redo() error { return cmd.Execute() }

// ===== Canvas operations =====

// execute runs cmd through the history after flushing any pending
// debounced move so the history stays in order.
func (c *Canvas) execute(cmd command.Command) error {
	if c.readOnly {
		return errors.New(errors.ErrCodeReadOnly, "canvas is read-only")
	}
	c.debounce.Flush()
	if err := c.history.Execute(cmd); err != nil {
		return err
	}
	c.logger.Debug("command executed", "command", command.Name(cmd), "depth", c.history.Len())
	return nil
}

// CreateShape builds a shape of a registered type, places it at (x, y)
// under parent (empty for the top level) and records the creation.
func (c *Canvas) CreateShape(typeName, parent string, x, y float64) (*Shape, error) {
	s, err := c.registry.New(typeName, "")
	if err != nil {
		return nil, err
	}
	return c.createShape(s, parent, x, y)
}

// CreateFromToolbar builds a shape through the toolbar factory, falling
// back to the registry, and records the creation.
func (c *Canvas) CreateFromToolbar(id, parent string, x, y float64) (*Shape, error) {
	var (
		s   *Shape
		err error
	)
	if c.toolbar != nil {
		s, err = c.toolbar(id)
	} else {
		s, err = c.registry.New(id, "")
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeUnknownType, "toolbar item %q produced no shape", id)
	}
	return c.createShape(s, parent, x, y)
}

func (c *Canvas) createShape(s *Shape, parent string, x, y float64) (*Shape, error) {
	if err := s.move(x, y); err != nil {
		return nil, err
	}
	if err := c.execute(newCreateShapeCommand(c, s, parent)); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteShape removes a shape subtree and records the removal.
func (c *Canvas) DeleteShape(id string) error {
	if c.shapes[id] == nil {
		return errors.NotFound("shape", id)
	}
	return c.execute(&deleteCommand{baseCommand: newBase("delete", c), ids: []string{id}})
}

// DeleteSelection removes every selected shape and records the removal as
// one command.
func (c *Canvas) DeleteSelection() error {
	if len(c.selection) == 0 {
		return nil
	}
	ids := append([]string(nil), c.selection...)
	return c.execute(&deleteCommand{baseCommand: newBase("delete selection", c), ids: ids})
}

// MoveShape moves a shape to a new logical position and records the move.
func (c *Canvas) MoveShape(id string, x, y float64) error {
	s := c.shapes[id]
	if s == nil {
		return errors.NotFound("shape", id)
	}
	if !s.Draggable {
		return errors.New(errors.ErrCodeInvalidInput, "shape %q is not draggable", id)
	}
	if err := errors.ValidateFinite("x", x); err != nil {
		return err
	}
	if err := errors.ValidateFinite("y", y); err != nil {
		return err
	}
	return c.execute(&moveCommand{
		baseCommand: newBase("move", s),
		moves:       []shapeMove{{id: id, from: s.Position(), to: geom.Pt(x, y)}},
	})
}

// ResizeShape resizes a shape and records the resize.
func (c *Canvas) ResizeShape(id string, w, h float64) error {
	s := c.shapes[id]
	if s == nil {
		return errors.NotFound("shape", id)
	}
	return c.execute(&resizeCommand{baseCommand: newBase("resize", s), id: id, to: geom.Pt(w, h)})
}

// Connect creates a connection and records it.
func (c *Canvas) Connect(req ConnectRequest) (*Connection, error) {
	if req.Style != "" && !req.Style.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown segment style %q", req.Style)
	}
	cmd := &connectCommand{baseCommand: newBase("connect", c), req: req}
	if err := c.execute(cmd); err != nil {
		return nil, err
	}
	return cmd.conn, nil
}

// ReconnectEnd moves one end of a connection to another shape, placing the
// port nearest to click, and records the change.
func (c *Canvas) ReconnectEnd(connID string, end End, shapeID string, click geom.Point) error {
	conn := c.conns[connID]
	if conn == nil {
		return errors.NotFound("connection", connID)
	}
	return c.execute(&reconnectCommand{
		baseCommand: newBase("reconnect", conn),
		conn:        connID, end: end, shape: shapeID, click: click,
	})
}

// MoveSegment drags a middle segment of a connection and records it.
func (c *Canvas) MoveSegment(connID string, index int, delta float64) error {
	conn := c.conns[connID]
	if conn == nil {
		return errors.NotFound("connection", connID)
	}
	return c.execute(&segmentMoveCommand{
		baseCommand: newBase("move segment", conn),
		conn:        connID, index: index, delta: delta,
	})
}

// Undo reverts the last command.
func (c *Canvas) Undo() error {
	if c.readOnly {
		return errors.New(errors.ErrCodeReadOnly, "canvas is read-only")
	}
	c.debounce.Flush()
	return c.history.Undo()
}

// Redo re-applies the last undone command.
func (c *Canvas) Redo() error {
	if c.readOnly {
		return errors.New(errors.ErrCodeReadOnly, "canvas is read-only")
	}
	c.debounce.Flush()
	return c.history.Redo()
}
