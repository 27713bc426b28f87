package diagram

import (
	"maps"
	"slices"

	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
)

// MoveSelection shifts every selected shape by (dx, dy) logical units right
// away. Re-routing the attached connections, rebuilding intersections and
// recording the move are deferred until no further MoveSelection call has
// arrived for the debounce delay, so a burst of small moves costs one
// expensive pass and one history entry.
func (c *Canvas) MoveSelection(dx, dy float64) error {
	if c.readOnly {
		return errors.New(errors.ErrCodeReadOnly, "canvas is read-only")
	}
	if err := errors.ValidateFinite("dx", dx); err != nil {
		return err
	}
	if err := errors.ValidateFinite("dy", dy); err != nil {
		return err
	}
	sel := c.Selection()
	if len(sel) == 0 {
		return nil
	}
	if c.pendingMove == nil {
		c.pendingMove = make(map[string]geom.Point)
	}
	for _, s := range sel {
		if !s.Draggable {
			continue
		}
		if _, ok := c.pendingMove[s.ID]; !ok {
			c.pendingMove[s.ID] = s.Position()
		}
		if err := s.move(s.x+dx, s.y+dy); err != nil {
			return err
		}
	}
	c.debounce.Schedule(c.finishMove)
	return nil
}

// FlushPendingMove runs a deferred MoveSelection pass immediately. It
// reports whether one was pending.
func (c *Canvas) FlushPendingMove() bool { return c.debounce.Flush() }

// MoveReady signals when a deferred MoveSelection pass has waited out the
// debounce delay. An event loop selects on it and calls RunDueMove:
//
//	case <-c.MoveReady():
//		c.RunDueMove()
//
// Any recorded command also runs a pending pass first.
func (c *Canvas) MoveReady() <-chan struct{} { return c.debounce.Ready() }

// RunDueMove runs the deferred MoveSelection pass if its delay has elapsed
// and reports whether it ran.
func (c *Canvas) RunDueMove() bool { return c.debounce.RunDue() }

// finishMove is the deferred half of MoveSelection.
func (c *Canvas) finishMove() {
	start := c.pendingMove
	c.pendingMove = nil
	if len(start) == 0 {
		return
	}
	cmd := &moveCommand{baseCommand: newBase("move selection", c)}
	for _, id := range slices.Sorted(maps.Keys(start)) {
		s := c.shapes[id]
		if s == nil {
			continue
		}
		if from := start[id]; !from.Eq(s.Position()) {
			cmd.moves = append(cmd.moves, shapeMove{id: id, from: from, to: s.Position()})
		}
	}
	ids := make([]string, len(cmd.moves))
	for i, m := range cmd.moves {
		ids[i] = m.id
	}
	c.reconnectShapes(ids...)
	if len(cmd.moves) > 0 {
		c.history.Add(cmd)
		c.logger.Debug("selection moved", "shapes", len(cmd.moves), "depth", c.history.Len())
	}
}
