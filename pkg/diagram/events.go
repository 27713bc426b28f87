package diagram

import "github.com/matzehuels/canvaskit/pkg/geom"

// ElementEvent is delivered when an element is created or removed.
type ElementEvent struct {
	ID              string
	Type            string
	RelatedObject   any
	RelatedElements []any
}

// FieldChange is one field-level difference inside a ChangeEvent.
type FieldChange struct {
	Field  string
	OldVal any
	NewVal any
}

// ChangeEvent describes the fields of an element that changed.
type ChangeEvent struct {
	ID            string
	Type          string
	Fields        []FieldChange
	RelatedObject any
}

// SelectEvent describes one member of the current selection.
type SelectEvent struct {
	ID            string
	Type          string
	RelatedObject any
}

// RightClickEvent is delivered when an element is right-clicked.
type RightClickEvent struct {
	ID            string
	Type          string
	RelatedObject any
	Point         geom.Point
}

// Listeners are the observation points a canvas exposes. Any of them may be
// nil.
type Listeners struct {
	OnCreate     func(ElementEvent)
	OnRemove     func(ElementEvent)
	OnChange     func([]ChangeEvent)
	OnSelect     func([]SelectEvent)
	OnRightClick func(RightClickEvent)
}

const (
	typeConnection = "connection"
	typeCanvas     = "canvas"
)

func (c *Canvas) emitCreate(id, typ string, obj any, related ...any) {
	if c.listeners.OnCreate != nil {
		c.listeners.OnCreate(ElementEvent{ID: id, Type: typ, RelatedObject: obj, RelatedElements: related})
	}
}

func (c *Canvas) emitRemove(id, typ string, obj any, related ...any) {
	if c.listeners.OnRemove != nil {
		c.listeners.OnRemove(ElementEvent{ID: id, Type: typ, RelatedObject: obj, RelatedElements: related})
	}
}

func (c *Canvas) emitChange(events ...ChangeEvent) {
	if c.listeners.OnChange == nil {
		return
	}
	out := events[:0:0]
	for _, e := range events {
		if len(e.Fields) > 0 {
			out = append(out, e)
		}
	}
	if len(out) > 0 {
		c.listeners.OnChange(out)
	}
}

func (c *Canvas) emitSelect() {
	if c.listeners.OnSelect == nil {
		return
	}
	events := make([]SelectEvent, 0, len(c.selection))
	for _, s := range c.Selection() {
		events = append(events, SelectEvent{ID: s.ID, Type: s.Type, RelatedObject: s})
	}
	c.listeners.OnSelect(events)
}

// shapeChange builds a ChangeEvent for s, dropping fields that did not change.
func shapeChange(s *Shape, fields ...FieldChange) ChangeEvent {
	kept := fields[:0]
	for _, f := range fields {
		if f.OldVal != f.NewVal {
			kept = append(kept, f)
		}
	}
	return ChangeEvent{ID: s.ID, Type: s.Type, Fields: kept, RelatedObject: s}
}
