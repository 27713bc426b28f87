package diagram

import "slices"

// SelectedClass is added to the style of selected shapes.
const SelectedClass = "canvaskit-selected"

// IsValidSelection reports whether cand may join a selection whose first
// member is ref. Selected shapes must share the same direct container.
func IsValidSelection(ref, cand *Shape) bool {
	if ref == nil || cand == nil {
		return ref == nil && cand != nil
	}
	return ref.parent == cand.parent
}

// Selection returns the selected shapes in selection order.
func (c *Canvas) Selection() []*Shape { return c.lookupShapes(c.selection) }

// SharedConnections returns the connections whose both ends lie inside the
// selection.
func (c *Canvas) SharedConnections() []*Connection {
	out := make([]*Connection, 0, len(c.shared))
	for _, id := range c.shared {
		out = append(out, c.conns[id])
	}
	return out
}

// AddToSelection adds s to the selection. It reports false and does nothing
// when s is already selected or is not a sibling of the first selected shape.
func (c *Canvas) AddToSelection(s *Shape) bool {
	if s == nil || s.canvas != c || s.selected {
		return false
	}
	if len(c.selection) > 0 && !IsValidSelection(c.shapes[c.selection[0]], s) {
		return false
	}
	s.IncreaseZIndex()
	c.selection = append(c.selection, s.ID)
	s.selected = true
	s.style.AddClass(SelectedClass)
	c.updateSharedConnections()
	c.emitSelect()
	return true
}

// RemoveFromSelection drops s from the selection.
func (c *Canvas) RemoveFromSelection(s *Shape) bool {
	if s == nil || !s.selected {
		return false
	}
	c.unselect(s)
	c.selection = slices.DeleteFunc(c.selection, func(id string) bool { return id == s.ID })
	c.updateSharedConnections()
	c.emitSelect()
	return true
}

// EmptyCurrentSelection unselects every shape and clears the shared
// connections.
func (c *Canvas) EmptyCurrentSelection() {
	if len(c.selection) == 0 {
		return
	}
	for _, s := range c.Selection() {
		c.unselect(s)
	}
	c.selection = nil
	c.shared = nil
	c.emitSelect()
}

// SelectAll selects every top-level shape.
func (c *Canvas) SelectAll() {
	c.EmptyCurrentSelection()
	for _, s := range c.Children() {
		c.AddToSelection(s)
	}
}

func (c *Canvas) unselect(s *Shape) {
	s.DecreaseZIndex()
	s.selected = false
	s.style.RemoveClass(SelectedClass)
}

// inSelection reports whether s or one of its ancestors is selected.
func (c *Canvas) inSelection(s *Shape) bool {
	for t := s; t != nil; t = t.Parent() {
		if t.selected {
			return true
		}
	}
	return false
}

func (c *Canvas) updateSharedConnections() {
	c.shared = c.shared[:0]
	if len(c.selection) == 0 {
		return
	}
	for _, conn := range c.Connections() {
		if c.inSelection(conn.SrcShape()) && c.inSelection(conn.DestShape()) {
			c.shared = append(c.shared, conn.ID)
		}
	}
}
