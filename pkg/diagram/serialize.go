package diagram

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/command"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

// Document is the serialized form of a canvas or a part of it.
type Document struct {
	CustomShapes  []ShapeState      `json:"customShapes" yaml:"customShapes" bson:"customShapes"`
	RegularShapes []ShapeState      `json:"regularShapes" yaml:"regularShapes" bson:"regularShapes"`
	Connections   []ConnectionState `json:"connections" yaml:"connections" bson:"connections"`
}

// Len returns the number of shapes and connections in the document.
func (d *Document) Len() int {
	return len(d.CustomShapes) + len(d.RegularShapes) + len(d.Connections)
}

// ShapeState is the serialized form of a shape. Parent is empty for
// top-level shapes; X and Y are relative to the parent.
type ShapeState struct {
	ID                    string       `json:"id" yaml:"id" bson:"id"`
	Type                  string       `json:"type" yaml:"type" bson:"type"`
	Kind                  Kind         `json:"kind" yaml:"kind" bson:"kind"`
	X                     float64      `json:"x" yaml:"x" bson:"x"`
	Y                     float64      `json:"y" yaml:"y" bson:"y"`
	Width                 float64      `json:"width" yaml:"width" bson:"width"`
	Height                float64      `json:"height" yaml:"height" bson:"height"`
	Parent                string       `json:"parent" yaml:"parent" bson:"parent"`
	ZOrder                int          `json:"zOrder" yaml:"zOrder" bson:"zOrder"`
	Layers                []Layer      `json:"layers" yaml:"layers" bson:"layers"`
	Labels                []Label      `json:"labels" yaml:"labels" bson:"labels"`
	ConnectAtMiddlePoints bool         `json:"connectAtMiddlePoints" yaml:"connectAtMiddlePoints" bson:"connectAtMiddlePoints"`
	ConnectionType        SegmentStyle `json:"connectionType" yaml:"connectionType" bson:"connectionType"`
}

// PortState is the serialized form of a connection end. X and Y are the
// port's offset from its shape.
type PortState struct {
	X         float64        `json:"x" yaml:"x" bson:"x"`
	Y         float64        `json:"y" yaml:"y" bson:"y"`
	Parent    string         `json:"parent" yaml:"parent" bson:"parent"`
	Direction geom.Direction `json:"direction" yaml:"direction" bson:"direction"`
}

// ConnectionState is the serialized form of a connection. State holds the
// logical waypoints of a user route and is empty for routed connections.
type ConnectionState struct {
	ID                  string       `json:"id" yaml:"id" bson:"id"`
	SegmentStyle        SegmentStyle `json:"segmentStyle" yaml:"segmentStyle" bson:"segmentStyle"`
	SrcPort             PortState    `json:"srcPort" yaml:"srcPort" bson:"srcPort"`
	DestPort            PortState    `json:"destPort" yaml:"destPort" bson:"destPort"`
	State               []geom.Point `json:"state" yaml:"state" bson:"state"`
	SrcDecoratorPrefix  string       `json:"srcDecoratorPrefix" yaml:"srcDecoratorPrefix" bson:"srcDecoratorPrefix"`
	DestDecoratorPrefix string       `json:"destDecoratorPrefix" yaml:"destDecoratorPrefix" bson:"destDecoratorPrefix"`
	Color               string       `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

func shapeState(s *Shape) ShapeState {
	return ShapeState{
		ID:                    s.ID,
		Type:                  s.Type,
		Kind:                  s.Kind,
		X:                     s.x,
		Y:                     s.y,
		Width:                 s.width,
		Height:                s.height,
		Parent:                s.parent,
		ZOrder:                s.zOrder,
		Layers:                slices.Clone(s.Layers),
		Labels:                slices.Clone(s.Labels),
		ConnectAtMiddlePoints: s.ConnectAtMiddlePoints,
		ConnectionType:        s.ConnectionType,
	}
}

func portState(p *Port) PortState {
	return PortState{X: p.X, Y: p.Y, Parent: p.shape, Direction: p.Direction}
}

func connectionState(c *Connection) ConnectionState {
	st := ConnectionState{
		ID:                  c.ID,
		SegmentStyle:        c.Style,
		SrcPort:             portState(c.SrcPort()),
		DestPort:            portState(c.DestPort()),
		SrcDecoratorPrefix:  c.SrcDecoratorPrefix,
		DestDecoratorPrefix: c.DestDecoratorPrefix,
		Color:               c.Color,
	}
	if c.algorithm == AlgorithmUser {
		st.State = c.LogicalPoints()
	}
	return st
}

// Stringify serializes the whole canvas.
func (c *Canvas) Stringify() *Document {
	return c.stringify(c.Shapes(), c.Connections())
}

func (c *Canvas) stringify(shapes []*Shape, conns []*Connection) *Document {
	doc := &Document{
		CustomShapes:  []ShapeState{},
		RegularShapes: []ShapeState{},
		Connections:   []ConnectionState{},
	}
	for _, s := range shapes {
		if s.Kind == KindRegular {
			doc.RegularShapes = append(doc.RegularShapes, shapeState(s))
		} else {
			doc.CustomShapes = append(doc.CustomShapes, shapeState(s))
		}
	}
	for _, conn := range conns {
		doc.Connections = append(doc.Connections, connectionState(conn))
	}
	return doc
}

// ParseOptions control Parse.
type ParseOptions struct {
	Shapes      []ShapeState
	Connections []ConnectionState

	// UniqueID gives every parsed element a fresh id.
	UniqueID bool
	// SelectAfterFinish replaces the selection with the parsed top-level
	// shapes.
	SelectAfterFinish bool
	// PrependMessage is prefixed to every label.
	PrependMessage string
	// CreateCommand records the whole parse as one undoable command.
	CreateCommand bool
	// DiffX and DiffY offset the parsed top-level shapes and user routes.
	DiffX, DiffY float64
}

// DefaultParseOptions returns options that record a command and keep ids.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{CreateCommand: true}
}

// ParseResult lists what Parse created.
type ParseResult struct {
	Shapes      []*Shape
	Connections []*Connection
	// IDMap maps ids in the input to ids on the canvas.
	IDMap map[string]string
	// Command undoes the whole parse at once.
	Command *command.Composite
}

// ParseDocument parses doc with opts, ordering shapes so that every parent
// precedes its children.
func (c *Canvas) ParseDocument(doc *Document, opts ParseOptions) (*ParseResult, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	all := append(slices.Clone(doc.RegularShapes), doc.CustomShapes...)
	opts.Shapes = parentsFirst(all)
	opts.Connections = doc.Connections
	return c.Parse(opts)
}

// parentsFirst orders states so parents in the set come before their
// children, keeping input order otherwise.
func parentsFirst(states []ShapeState) []ShapeState {
	inSet := make(map[string]bool, len(states))
	for _, st := range states {
		inSet[st.ID] = true
	}
	out := make([]ShapeState, 0, len(states))
	done := make(map[string]bool, len(states))
	for len(out) < len(states) {
		progress := false
		for _, st := range states {
			if done[st.ID] {
				continue
			}
			if st.Parent == "" || !inSet[st.Parent] || done[st.Parent] {
				out = append(out, st)
				done[st.ID] = true
				progress = true
			}
		}
		if !progress {
			for _, st := range states {
				if !done[st.ID] {
					out = append(out, st)
					done[st.ID] = true
				}
			}
		}
	}
	return out
}

// Parse creates shapes and connections from serialized states. Shapes are
// created in input order; a parent that is neither created earlier in the
// same parse nor present on the canvas falls back to the top level.
// Connections get new ports at their saved offsets. Everything is wrapped in
// one composite command.
func (c *Canvas) Parse(opts ParseOptions) (*ParseResult, error) {
	c.debounce.Flush()
	res := &ParseResult{IDMap: make(map[string]string)}
	diff := geom.Pt(opts.DiffX, opts.DiffY)
	if err := errors.ValidateFinite("diffX", diff.X); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("diffY", diff.Y); err != nil {
		return nil, err
	}

	for _, st := range opts.Shapes {
		if _, dup := res.IDMap[st.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate shape id %q in input", st.ID)
		}
		id := st.ID
		if opts.UniqueID {
			id = uuid.NewString()
		} else if c.shapes[id] != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "shape %q already exists", id)
		}
		if err := errors.ValidateID(id); err != nil {
			return nil, err
		}
		res.IDMap[st.ID] = id
	}

	composite := command.NewComposite("parse")
	top := make(map[string]bool)
	created := make(map[string]bool)
	for _, st := range opts.Shapes {
		s, err := c.shapeFromState(st, res.IDMap[st.ID], opts.PrependMessage)
		if err != nil {
			return nil, err
		}
		parent := ""
		nested := st.Parent != "" && created[st.Parent]
		switch {
		case nested:
			parent = res.IDMap[st.Parent]
		case st.Parent != "" && res.IDMap[st.Parent] == "" && c.shapes[st.Parent] != nil:
			parent = st.Parent
		}
		if !nested {
			s.x += diff.X
			s.y += diff.Y
			top[s.ID] = true
		}
		created[st.ID] = true
		res.Shapes = append(res.Shapes, s)
		composite.Add(newCreateShapeCommand(c, s, parent))
	}

	seen := make(map[string]bool)
	var conns []*parseConnectionCommand
	for _, st := range opts.Connections {
		cmd, err := c.connectionFromState(st, res.IDMap, opts.UniqueID, diff)
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			continue
		}
		if seen[cmd.conn.ID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate connection id %q in input", cmd.conn.ID)
		}
		seen[cmd.conn.ID] = true
		if st.ID != "" {
			res.IDMap[st.ID] = cmd.conn.ID
		}
		conns = append(conns, cmd)
		composite.Add(cmd)
	}

	if err := composite.Execute(); err != nil {
		return nil, err
	}
	for _, cmd := range conns {
		res.Connections = append(res.Connections, cmd.conn)
	}
	res.Command = composite
	c.updateSharedConnections()

	if opts.CreateCommand && !c.readOnly && composite.Len() > 0 {
		c.history.Add(composite)
	}
	if opts.SelectAfterFinish {
		c.EmptyCurrentSelection()
		for _, s := range res.Shapes {
			if top[s.ID] {
				c.AddToSelection(s)
			}
		}
	}
	c.logger.Debug("parsed", "shapes", len(res.Shapes), "connections", len(res.Connections))
	return res, nil
}

func (c *Canvas) shapeFromState(st ShapeState, id, prefix string) (*Shape, error) {
	typ := st.Type
	if typ == "" {
		typ = TypeCustom
		if st.Kind == KindRegular {
			typ = TypeRectangle
		}
	}
	s, err := c.registry.New(typ, id)
	if err != nil {
		return nil, err
	}
	s.ID = id
	if err := validateSize(st.Width, st.Height); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("x", st.X); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("y", st.Y); err != nil {
		return nil, err
	}
	s.x, s.y = st.X, st.Y
	s.width, s.height = st.Width, st.Height
	s.zOrder = st.ZOrder
	s.ConnectAtMiddlePoints = st.ConnectAtMiddlePoints
	if st.ConnectionType != "" {
		style, err := ParseSegmentStyle(string(st.ConnectionType))
		if err != nil {
			return nil, err
		}
		s.ConnectionType = style
	}
	s.Layers = slices.Clone(st.Layers)
	s.Labels = make([]Label, len(st.Labels))
	for i, l := range st.Labels {
		s.Labels[i] = Label{Message: prefix + l.Message, Position: l.Position}
	}
	s.updateCache()
	return s, nil
}

// connectionFromState prepares the creation of one connection. It returns
// nil when an end refers to a shape that is neither parsed nor on the
// canvas.
func (c *Canvas) connectionFromState(st ConnectionState, ids map[string]string, unique bool, diff geom.Point) (*parseConnectionCommand, error) {
	resolve := func(id string) string {
		if n, ok := ids[id]; ok {
			return n
		}
		if c.shapes[id] != nil {
			return id
		}
		return ""
	}
	src, dst := resolve(st.SrcPort.Parent), resolve(st.DestPort.Parent)
	if src == "" || dst == "" {
		c.logger.Warn("skipping connection with unknown end", "connection", st.ID,
			"src", st.SrcPort.Parent, "dest", st.DestPort.Parent)
		return nil, nil
	}
	for _, p := range []PortState{st.SrcPort, st.DestPort} {
		if !p.Direction.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "connection %q has an invalid port direction", st.ID)
		}
	}
	style, err := ParseSegmentStyle(string(st.SegmentStyle))
	if err != nil {
		return nil, err
	}

	id := st.ID
	if unique || id == "" {
		id = uuid.NewString()
	} else if c.conns[id] != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "connection %q already exists", id)
	}

	sp, dp := NewPort(""), NewPort("")
	sp.X, sp.Y, sp.Direction = st.SrcPort.X, st.SrcPort.Y, st.SrcPort.Direction
	dp.X, dp.Y, dp.Direction = st.DestPort.X, st.DestPort.Y, st.DestPort.Direction
	sp.shape, dp.shape = src, dst

	conn := newConnection(id, sp, dp)
	conn.Style = style
	conn.Color = st.Color
	conn.SrcDecoratorPrefix = st.SrcDecoratorPrefix
	conn.DestDecoratorPrefix = st.DestDecoratorPrefix

	opts := ConnectOptions{Algorithm: AlgorithmManhattan}
	if len(st.State) >= 2 {
		opts = ConnectOptions{Algorithm: AlgorithmUser, Points: slices.Clone(st.State), DX: diff.X, DY: diff.Y}
	}
	return &parseConnectionCommand{
		baseCommand: newBase("create connection", c),
		conn:        conn, src: sp, dst: dp, opts: opts,
	}, nil
}

type parseConnectionCommand struct {
	baseCommand
	conn     *Connection
	src, dst *Port
	opts     ConnectOptions
	removed  *connRecord
}

func (cmd *parseConnectionCommand) Execute() error {
	if cmd.removed != nil {
		return cmd.Redo()
	}
	c := cmd.canvas
	s, d := c.shapes[cmd.src.shape], c.shapes[cmd.dst.shape]
	if s == nil || d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "connection %q: end shape missing", cmd.conn.ID)
	}
	if !s.Connectable() || !d.Connectable() {
		return errors.New(errors.ErrCodeInvalidInput, "connection %q: end shape does not accept connections", cmd.conn.ID)
	}
	c.addPort(s, cmd.src)
	c.addPort(d, cmd.dst)
	c.addConnection(cmd.conn, -1)
	cmd.conn.Connect(cmd.opts)
	c.emitCreate(cmd.conn.ID, typeConnection, cmd.conn, s, d)
	return nil
}

func (cmd *parseConnectionCommand) Undo() error {
	rec := cmd.canvas.detachConnection(cmd.conn)
	cmd.removed = &rec
	return nil
}

func (cmd *parseConnectionCommand) Redo() error {
	if cmd.removed == nil {
		return nil
	}
	cmd.canvas.restoreConnection(*cmd.removed)
	cmd.removed = nil
	return nil
}
