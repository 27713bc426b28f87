package diagram

import "github.com/matzehuels/canvaskit/pkg/errors"

// StringifySelection serializes the selected shapes, their descendants and
// the shared connections.
func (c *Canvas) StringifySelection() *Document {
	var shapes []*Shape
	for _, s := range c.Selection() {
		shapes = append(shapes, s)
		shapes = append(shapes, s.Descendants()...)
	}
	return c.stringify(shapes, c.SharedConnections())
}

// Copy puts the serialized selection on the canvas clipboard and returns it.
func (c *Canvas) Copy() *Document {
	c.debounce.Flush()
	doc := c.StringifySelection()
	c.SetClipboard(doc)
	return doc
}

// SetClipboard replaces the clipboard, for example with a document read from
// the system clipboard. The paste offset starts over.
func (c *Canvas) SetClipboard(doc *Document) {
	c.clipboard = doc
	c.pasteCount = 0
}

// Clipboard returns the current clipboard document, or nil.
func (c *Canvas) Clipboard() *Document { return c.clipboard }

// Paste parses the clipboard with fresh ids, prefixed labels and an offset
// that grows with every paste of the same clipboard, then selects the
// pasted top-level shapes. The paste is one undoable command.
func (c *Canvas) Paste() (*ParseResult, error) {
	if c.readOnly {
		return nil, errors.New(errors.ErrCodeReadOnly, "canvas is read-only")
	}
	if c.clipboard == nil || c.clipboard.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "clipboard is empty")
	}
	c.pasteCount++
	n := float64(c.pasteCount)
	return c.ParseDocument(c.clipboard, ParseOptions{
		UniqueID:          true,
		SelectAfterFinish: true,
		PrependMessage:    c.pastePrefix,
		CreateCommand:     true,
		DiffX:             c.pasteDiff.X * n,
		DiffY:             c.pasteDiff.Y * n,
	})
}
