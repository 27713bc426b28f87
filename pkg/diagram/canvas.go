package diagram

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/canvaskit/pkg/command"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	"github.com/matzehuels/canvaskit/pkg/route"
)

// Canvas defaults.
const (
	DefaultWidth         = 4000.0
	DefaultHeight        = 4000.0
	DefaultDebounceDelay = time.Second
	DefaultPasteDiff     = 10.0
	DefaultPastePrefix   = "Copy of "
)

// Options configure a Canvas. Zero values fall back to the defaults above.
type Options struct {
	ID              string
	Width, Height   float64
	ReadOnly        bool
	HistoryCapacity int
	ZoomPreset      int

	// DebounceDelay defers the expensive pass after MoveSelection.
	DebounceDelay time.Duration
	// Scheduler creates the debounce timers. Defaults to time.AfterFunc.
	Scheduler Scheduler
	// Executor receives debounced work on the timer goroutine and must run
	// it on the canvas owner's goroutine. When nil, the owner runs due work
	// itself; see Canvas.MoveReady.
	Executor func(func())

	PasteDiffX, PasteDiffY float64
	PastePrefix            string

	// Router computes manhattan routes. Defaults to route.Manhattan.
	Router route.Router
	// ToolbarFactory builds shapes for CreateFromToolbar. Defaults to the
	// registry.
	ToolbarFactory ToolbarFactory
	// CopyAndPasteReferences adds shape types to the registry used by Parse.
	CopyAndPasteReferences map[string]ShapeFactory
	// Registry is the shape type registry. Defaults to NewRegistry().
	Registry *Registry

	Listeners Listeners
	Logger    *log.Logger
}

// DefaultOptions returns the options of a standard 4000x4000 canvas.
func DefaultOptions() Options {
	return Options{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		HistoryCapacity: command.DefaultCapacity,
		ZoomPreset:      DefaultZoomPreset,
		DebounceDelay:   DefaultDebounceDelay,
		PasteDiffX:      DefaultPasteDiff,
		PasteDiffY:      DefaultPasteDiff,
		PastePrefix:     DefaultPastePrefix,
	}
}

// Canvas owns a scene of shapes, ports and connections. It is not safe for
// concurrent use; all calls are expected from one goroutine. Debounced work
// never touches the scene from a timer goroutine.
type Canvas struct {
	ID string

	width, height float64
	readOnly      bool
	zoomPreset    int
	zoom          float64
	scroll        geom.Point

	shapes    map[string]*Shape
	custom    []string
	regular   []string
	root      []string
	ports     map[string]*Port
	conns     map[string]*Connection
	connOrder []string
	connSeq   uint64

	selection []string
	shared    []string

	history   *command.Stack
	registry  *Registry
	toolbar   ToolbarFactory
	router    route.Router
	listeners Listeners
	logger    *log.Logger

	debounce    *Debouncer
	pendingMove map[string]geom.Point

	clipboard   *Document
	pasteCount  int
	pasteDiff   geom.Point
	pastePrefix string
}

// New returns an empty canvas.
func New(opts Options) (*Canvas, error) {
	def := DefaultOptions()
	if opts.Width == 0 {
		opts.Width = def.Width
	}
	if opts.Height == 0 {
		opts.Height = def.Height
	}
	if err := validateSize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	if opts.ZoomPreset == 0 {
		opts.ZoomPreset = def.ZoomPreset
	}
	zoom, err := ZoomFactor(opts.ZoomPreset)
	if err != nil {
		return nil, err
	}
	if opts.DebounceDelay == 0 {
		opts.DebounceDelay = def.DebounceDelay
	}
	if opts.PasteDiffX == 0 && opts.PasteDiffY == 0 {
		opts.PasteDiffX, opts.PasteDiffY = def.PasteDiffX, def.PasteDiffY
	}
	if opts.PastePrefix == "" {
		opts.PastePrefix = def.PastePrefix
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Router == nil {
		opts.Router = route.NewManhattan(route.DefaultStub)
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	for name, f := range opts.CopyAndPasteReferences {
		opts.Registry.Register(name, f)
	}

	c := &Canvas{
		ID:          opts.ID,
		width:       opts.Width,
		height:      opts.Height,
		readOnly:    opts.ReadOnly,
		zoomPreset:  opts.ZoomPreset,
		zoom:        zoom,
		shapes:      make(map[string]*Shape),
		ports:       make(map[string]*Port),
		conns:       make(map[string]*Connection),
		history:     command.NewStack(opts.HistoryCapacity),
		registry:    opts.Registry,
		toolbar:     opts.ToolbarFactory,
		router:      opts.Router,
		listeners:   opts.Listeners,
		logger:      opts.Logger,
		pasteDiff:   geom.Pt(opts.PasteDiffX, opts.PasteDiffY),
		pastePrefix: opts.PastePrefix,
	}
	c.debounce = NewDebouncer(opts.DebounceDelay, opts.Scheduler, opts.Executor)
	return c, nil
}

// Canvas returns c. It lets commands resolve their canvas from any receiver.
func (c *Canvas) Canvas() *Canvas { return c }

// Width returns the logical canvas width.
func (c *Canvas) Width() float64 { return c.width }

// Height returns the logical canvas height.
func (c *Canvas) Height() float64 { return c.height }

// ReadOnly reports whether mutating commands are rejected.
func (c *Canvas) ReadOnly() bool { return c.readOnly }

// SetReadOnly toggles read-only mode.
func (c *Canvas) SetReadOnly(v bool) { c.readOnly = v }

// Zoom returns the current zoom factor.
func (c *Canvas) Zoom() float64 { return c.zoom }

// ZoomPreset returns the current 1-based zoom preset.
func (c *Canvas) ZoomPreset() int { return c.zoomPreset }

// Scroll returns the viewport scroll offset.
func (c *Canvas) Scroll() geom.Point { return c.scroll }

// SetScroll sets the viewport scroll offset.
func (c *Canvas) SetScroll(x, y float64) error {
	if err := errors.ValidateFinite("scrollX", x); err != nil {
		return err
	}
	if err := errors.ValidateFinite("scrollY", y); err != nil {
		return err
	}
	c.scroll = geom.Pt(x, y)
	return nil
}

// History returns the command history.
func (c *Canvas) History() *command.Stack { return c.history }

// Registry returns the shape type registry.
func (c *Canvas) Registry() *Registry { return c.registry }

// Logger returns the canvas logger.
func (c *Canvas) Logger() *log.Logger { return c.logger }

// Shape returns a shape by id, or nil.
func (c *Canvas) Shape(id string) *Shape { return c.shapes[id] }

// Port returns a port by id, or nil.
func (c *Canvas) Port(id string) *Port { return c.ports[id] }

// Connection returns a connection by id, or nil.
func (c *Canvas) Connection(id string) *Connection { return c.conns[id] }

// Shapes returns custom shapes followed by regular shapes, each in insertion
// order.
func (c *Canvas) Shapes() []*Shape {
	return append(c.CustomShapes(), c.RegularShapes()...)
}

// CustomShapes returns the custom shapes in insertion order.
func (c *Canvas) CustomShapes() []*Shape { return c.lookupShapes(c.custom) }

// RegularShapes returns the regular shapes in insertion order.
func (c *Canvas) RegularShapes() []*Shape { return c.lookupShapes(c.regular) }

// Connections returns the connections in insertion order.
func (c *Canvas) Connections() []*Connection {
	out := make([]*Connection, 0, len(c.connOrder))
	for _, id := range c.connOrder {
		out = append(out, c.conns[id])
	}
	return out
}

func (c *Canvas) lookupShapes(ids []string) []*Shape {
	if c == nil {
		return nil
	}
	out := make([]*Shape, 0, len(ids))
	for _, id := range ids {
		if s := c.shapes[id]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// JumpsOver reports whether connection a is drawn with a jump where it
// crosses b. The later inserted connection jumps.
func (c *Canvas) JumpsOver(a, b *Connection) bool {
	return a.Intersects(b.ID) && a.seq > b.seq
}

// ===== Containment =====

// Children returns the top-level shapes in order.
func (c *Canvas) Children() []*Shape { return c.lookupShapes(c.root) }

// IsDirectParentOf reports whether s is a top-level shape of c.
func (c *Canvas) IsDirectParentOf(s *Shape) bool {
	return s != nil && slices.Contains(c.root, s.ID)
}

// AddChild attaches s at the top level.
func (c *Canvas) AddChild(s *Shape) error { return c.attach(s, "") }

// AddShape attaches s under the shape with id parent, or at the top level
// when parent is empty.
func (c *Canvas) AddShape(s *Shape, parent string) error { return c.attach(s, parent) }

// RemoveChild removes a top-level shape and its subtree.
func (c *Canvas) RemoveChild(s *Shape) error {
	if !c.IsDirectParentOf(s) {
		return errors.New(errors.ErrCodeInvalidInput, "not a top-level shape")
	}
	c.detach(s.ID)
	return nil
}

// ClearChildren removes every shape.
func (c *Canvas) ClearChildren() error {
	for _, id := range slices.Clone(c.root) {
		c.detach(id)
	}
	return nil
}

// RemoveShape removes a shape with its descendants, ports and attached
// connections.
func (c *Canvas) RemoveShape(id string) error {
	if c.shapes[id] == nil {
		return errors.NotFound("shape", id)
	}
	c.detach(id)
	return nil
}

// attach registers a detached shape under parent, or moves an attached one
// there.
func (c *Canvas) attach(s *Shape, parent string) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "shape is nil")
	}
	var p *Shape
	if parent != "" {
		if p = c.shapes[parent]; p == nil {
			return errors.NotFound("shape", parent)
		}
		if p == s || s.IsAncestorOf(p) {
			return errors.New(errors.ErrCodeCycle, "cannot add %q under its own descendant %q", s.ID, parent)
		}
	}
	switch {
	case s.canvas == nil:
		return c.register(s, p)
	case s.canvas != c:
		return errors.New(errors.ErrCodeInvalidInput, "shape %q belongs to another canvas", s.ID)
	case s.parent == parent:
		return errors.New(errors.ErrCodeInvalidInput, "shape %q is already a child of %q", s.ID, parent)
	}
	return c.reparent(s, p)
}

func (c *Canvas) register(s *Shape, p *Shape) error {
	if err := errors.ValidateID(s.ID); err != nil {
		return err
	}
	if c.shapes[s.ID] != nil {
		return errors.New(errors.ErrCodeInvalidInput, "duplicate shape id %q", s.ID)
	}
	s.canvas = c
	c.shapes[s.ID] = s
	if s.Kind == KindRegular {
		c.regular = append(c.regular, s.ID)
	} else {
		c.custom = append(c.custom, s.ID)
	}
	c.link(s, p, -1)
	if s.zOrder == 0 {
		s.zOrder = 1
		if p != nil {
			s.zOrder = p.zOrder + 1
		}
	}
	s.updateCache()
	c.emitCreate(s.ID, s.Type, s, s)
	return nil
}

func (c *Canvas) reparent(s *Shape, p *Shape) error {
	old := s.parent
	c.unlink(s)
	c.link(s, p, -1)
	c.emitChange(shapeChange(s, FieldChange{Field: "parent", OldVal: old, NewVal: s.parent}))
	c.reconnectShapes(s.ID)
	return nil
}

// link inserts s into the child list of p (or the root) at index i; i < 0
// appends.
func (c *Canvas) link(s *Shape, p *Shape, i int) {
	list := &c.root
	s.parent = ""
	if p != nil {
		list = &p.children
		s.parent = p.ID
	}
	if i < 0 || i > len(*list) {
		i = len(*list)
	}
	*list = slices.Insert(*list, i, s.ID)
}

// unlink removes s from its parent's child list and returns its index there.
func (c *Canvas) unlink(s *Shape) int {
	list := &c.root
	if p := s.Parent(); p != nil {
		list = &p.children
	}
	i := slices.Index(*list, s.ID)
	if i >= 0 {
		*list = slices.Delete(*list, i, i+1)
	}
	return i
}

// ===== Ports and connections =====

// addPort registers p on shape s.
func (c *Canvas) addPort(s *Shape, p *Port) {
	p.shape = s.ID
	p.canvas = c
	c.ports[p.ID] = p
	if !slices.Contains(s.ports, p.ID) {
		s.ports = append(s.ports, p.ID)
	}
}

func (c *Canvas) removePort(p *Port) {
	if s := c.shapes[p.shape]; s != nil {
		s.ports = slices.DeleteFunc(s.ports, func(id string) bool { return id == p.ID })
	}
	delete(c.ports, p.ID)
}

// addConnection registers conn between its ports at position i of the
// connection order (i < 0 appends). It does not paint it.
func (c *Canvas) addConnection(conn *Connection, i int) {
	conn.canvas = c
	if conn.seq == 0 {
		c.connSeq++
		conn.seq = c.connSeq
	}
	c.conns[conn.ID] = conn
	if i < 0 || i > len(c.connOrder) {
		i = len(c.connOrder)
	}
	c.connOrder = slices.Insert(c.connOrder, i, conn.ID)
	c.ports[conn.srcPort].connection = conn.ID
	c.ports[conn.destPort].connection = conn.ID
}

// removeConnection unpaints and unregisters conn and returns its position in
// the connection order.
func (c *Canvas) removeConnection(conn *Connection) int {
	conn.Disconnect(false)
	for _, p := range conn.Ports() {
		if p != nil && p.connection == conn.ID {
			p.connection = ""
		}
	}
	delete(c.conns, conn.ID)
	c.shared = slices.DeleteFunc(c.shared, func(id string) bool { return id == conn.ID })
	i := slices.Index(c.connOrder, conn.ID)
	if i >= 0 {
		c.connOrder = slices.Delete(c.connOrder, i, i+1)
	}
	return i
}

// NewConnection creates ports on src and dst at the given click points
// (logical, relative to each shape) and a connection between them, and
// paints it with the manhattan router. Use Connect to record the operation
// in the history.
func (c *Canvas) NewConnection(src, dst *Shape, srcClick, dstClick geom.Point) (*Connection, error) {
	if src == nil || dst == nil || src.canvas != c || dst.canvas != c {
		return nil, errors.New(errors.ErrCodeInvalidInput, "both shapes must be on the canvas")
	}
	sp, dp := NewPort(""), NewPort("")
	if err := src.DefinePortPosition(sp, srcClick, nil); err != nil {
		return nil, err
	}
	if err := dst.DefinePortPosition(dp, dstClick, sp); err != nil {
		return nil, err
	}
	conn := newConnection("", sp, dp)
	conn.Style = src.ConnectionType
	if !conn.Style.Valid() {
		conn.Style = StyleRegular
	}
	c.addPort(src, sp)
	c.addPort(dst, dp)
	c.addConnection(conn, -1)
	conn.Connect(ConnectOptions{})
	c.emitCreate(conn.ID, typeConnection, conn, src, dst)
	return conn, nil
}

// reconnectShapes repaints every connection attached to the given shapes or
// their descendants, each once.
func (c *Canvas) reconnectShapes(ids ...string) {
	for _, conn := range c.incidentConnections(ids...) {
		conn.Reconnect()
	}
	c.updateSharedConnections()
}

// incidentConnections returns the connections attached to the given shapes
// and their descendants in canvas order.
func (c *Canvas) incidentConnections(ids ...string) []*Connection {
	seen := make(map[string]bool)
	for _, id := range ids {
		s := c.shapes[id]
		if s == nil {
			continue
		}
		for _, t := range append([]*Shape{s}, s.Descendants()...) {
			for _, p := range t.ports {
				if port := c.ports[p]; port != nil && port.connection != "" {
					seen[port.connection] = true
				}
			}
		}
	}
	var out []*Connection
	for _, id := range c.connOrder {
		if seen[id] {
			out = append(out, c.conns[id])
		}
	}
	return out
}

// ===== Removal =====

// connRecord remembers a removed connection so it can be restored.
type connRecord struct {
	conn      *Connection
	src, dst  *Port
	index     int
	algorithm Algorithm
	points    []geom.Point
}

// shapeRecord remembers where a removed shape lived.
type shapeRecord struct {
	shape     *Shape
	parent    string
	index     int
	kindIndex int
	ports     []*Port
}

// removal is everything detach took off the canvas, in removal order.
type removal struct {
	shapes []shapeRecord
	conns  []connRecord
}

// detach removes a shape subtree with its ports and connections.
func (c *Canvas) detach(id string) *removal {
	s := c.shapes[id]
	if s == nil {
		return nil
	}
	r := &removal{}
	subtree := append([]*Shape{s}, s.Descendants()...)
	for _, t := range subtree {
		if t.selected {
			c.RemoveFromSelection(t)
		}
	}
	for _, conn := range c.incidentConnections(id) {
		r.conns = append(r.conns, c.detachConnection(conn))
	}
	for _, t := range subtree {
		rec := shapeRecord{shape: t, parent: t.parent, ports: t.Ports()}
		for _, p := range rec.ports {
			c.removePort(p)
		}
		r.shapes = append(r.shapes, rec)
	}
	// Children first so parent lookups stay valid while unlinking.
	for i := len(r.shapes) - 1; i >= 0; i-- {
		rec := &r.shapes[i]
		t := rec.shape
		rec.index = c.unlink(t)
		rec.kindIndex = c.dropFromKind(t)
		delete(c.shapes, t.ID)
		t.canvas = nil
		c.emitRemove(t.ID, t.Type, t, t)
	}
	return r
}

// detachConnection removes conn together with both of its ports.
func (c *Canvas) detachConnection(conn *Connection) connRecord {
	rec := connRecord{
		conn:      conn,
		src:       conn.SrcPort(),
		dst:       conn.DestPort(),
		algorithm: conn.algorithm,
		points:    conn.LogicalPoints(),
	}
	rec.index = c.removeConnection(conn)
	c.removePort(rec.src)
	c.removePort(rec.dst)
	c.emitRemove(conn.ID, typeConnection, conn)
	return rec
}

func (c *Canvas) dropFromKind(s *Shape) int {
	list := &c.custom
	if s.Kind == KindRegular {
		list = &c.regular
	}
	i := slices.Index(*list, s.ID)
	if i >= 0 {
		*list = slices.Delete(*list, i, i+1)
	}
	return i
}

// restore puts back everything a detach removed.
func (c *Canvas) restore(r *removal) {
	if r == nil {
		return
	}
	// Parents were recorded before children.
	for _, rec := range r.shapes {
		s := rec.shape
		s.canvas = c
		c.shapes[s.ID] = s
		list := &c.custom
		if s.Kind == KindRegular {
			list = &c.regular
		}
		*list = slices.Insert(*list, min(max(rec.kindIndex, 0), len(*list)), s.ID)
		c.link(s, c.shapes[rec.parent], rec.index)
		// Children are re-linked by their own records.
		s.children = nil
		s.updateCache()
	}
	for _, rec := range r.shapes {
		for _, p := range rec.ports {
			c.addPort(rec.shape, p)
		}
		c.emitCreate(rec.shape.ID, rec.shape.Type, rec.shape, rec.shape)
	}
	for i := len(r.conns) - 1; i >= 0; i-- {
		c.restoreConnection(r.conns[i])
	}
}

func (c *Canvas) restoreConnection(rec connRecord) {
	if s := c.shapes[rec.src.shape]; s != nil {
		c.addPort(s, rec.src)
	}
	if s := c.shapes[rec.dst.shape]; s != nil {
		c.addPort(s, rec.dst)
	}
	c.addConnection(rec.conn, rec.index)
	if rec.algorithm == AlgorithmUser {
		rec.conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: rec.points})
	} else {
		rec.conn.Connect(ConnectOptions{})
	}
	c.emitCreate(rec.conn.ID, typeConnection, rec.conn, rec.conn.SrcShape(), rec.conn.DestShape())
}

// ===== Hit testing =====

// ShapeAt returns the top-most shape whose outer bounds contain p (canvas
// coordinates, zoom-scaled). Ties go to the shape added last.
func (c *Canvas) ShapeAt(p geom.Point) *Shape {
	var best *Shape
	for _, s := range c.byZOrder() {
		if s.OuterBounds().Contains(p) {
			best = s
		}
	}
	return best
}

// byZOrder returns all shapes sorted by ZOrder, stable in insertion order.
func (c *Canvas) byZOrder() []*Shape {
	all := c.insertionOrder()
	slices.SortStableFunc(all, func(a, b *Shape) int { return a.ZOrder() - b.ZOrder() })
	return all
}

// insertionOrder returns every shape, parents before children.
func (c *Canvas) insertionOrder() []*Shape {
	var out []*Shape
	for _, s := range c.Children() {
		out = append(out, s)
		out = append(out, s.Descendants()...)
	}
	return out
}

// PointerDown classifies a pointer-down at a viewport point. It returns the
// target shape and the interaction it starts; regular shapes cannot start a
// connection and are dragged instead.
func (c *Canvas) PointerDown(p geom.Point) (DragBehavior, *Shape) {
	p = p.Add(c.scroll)
	s := c.ShapeAt(p)
	if s == nil {
		return DragCancel, nil
	}
	b := s.DetermineDragBehavior(p.Sub(s.Absolute()))
	if b == DragConnect && !s.Connectable() {
		b = DragMove
	}
	if b == DragMove && !s.Draggable {
		b = DragCancel
	}
	return b, s
}

// RightClick reports a right-click at a viewport point to the listener. The
// canvas itself is the target when no shape is hit.
func (c *Canvas) RightClick(p geom.Point) {
	if c.listeners.OnRightClick == nil {
		return
	}
	cp := p.Add(c.scroll)
	ev := RightClickEvent{ID: c.ID, Type: typeCanvas, RelatedObject: c, Point: cp}
	if s := c.ShapeAt(cp); s != nil {
		ev = RightClickEvent{ID: s.ID, Type: s.Type, RelatedObject: s, Point: cp}
	}
	c.listeners.OnRightClick(ev)
}

// ===== Zoom =====

// ApplyZoom switches to a zoom preset. Logical geometry is unchanged; the
// zoom caches are rebuilt and every connection is repainted.
func (c *Canvas) ApplyZoom(preset int) error {
	z, err := ZoomFactor(preset)
	if err != nil {
		return err
	}
	saved := make(map[string][]geom.Point)
	for _, conn := range c.Connections() {
		if conn.algorithm == AlgorithmUser && conn.Painted() {
			saved[conn.ID] = conn.LogicalPoints()
		}
	}
	c.zoomPreset, c.zoom = preset, z
	for _, s := range c.shapes {
		s.updateCache()
	}
	for _, conn := range c.Connections() {
		if pts, ok := saved[conn.ID]; ok {
			conn.Connect(ConnectOptions{Algorithm: AlgorithmUser, Points: pts})
		} else {
			conn.Connect(ConnectOptions{})
		}
	}
	c.logger.Debug("zoom applied", "preset", preset, "factor", z)
	return nil
}

// ===== Rendering =====

// Paint draws every shape and connection on target in ascending z-order.
// Shapes are drawn before connections of the same depth.
func (c *Canvas) Paint(target RenderTarget) error {
	shapes := c.byZOrder()
	conns := c.Connections()
	slices.SortStableFunc(conns, func(a, b *Connection) int { return a.ZOrder() - b.ZOrder() })

	i, j := 0, 0
	for i < len(shapes) || j < len(conns) {
		if j >= len(conns) || (i < len(shapes) && shapes[i].ZOrder() <= conns[j].ZOrder()) {
			if err := target.DrawShape(shapes[i]); err != nil {
				return err
			}
			i++
			continue
		}
		if conns[j].Painted() {
			if err := target.DrawConnection(conns[j]); err != nil {
				return err
			}
		}
		j++
	}
	return nil
}
