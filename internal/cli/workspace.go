package cli

import (
	"os"
	"strconv"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	"github.com/matzehuels/canvaskit/pkg/geom"
	cio "github.com/matzehuels/canvaskit/pkg/io"
)

// loadCanvas parses the diagram file at path onto a new canvas.
func (c *CLI) loadCanvas(path string) (*diagram.Canvas, error) {
	doc, err := cio.ImportFile(path)
	if err != nil {
		return nil, err
	}
	return c.canvasFrom(doc)
}

// canvasFrom parses doc onto a new canvas without recording history.
func (c *CLI) canvasFrom(doc *diagram.Document) (*diagram.Canvas, error) {
	canvas, err := diagram.New(c.canvasOptions())
	if err != nil {
		return nil, err
	}
	opts := diagram.DefaultParseOptions()
	opts.CreateCommand = false
	if _, err := canvas.ParseDocument(doc, opts); err != nil {
		return nil, err
	}
	return canvas, nil
}

// saveCanvas writes the canvas back to path.
func saveCanvas(canvas *diagram.Canvas, path string) error {
	if canvas.ReadOnly() {
		return errors.New(errors.ErrCodeReadOnly, "canvas is read-only, not writing %s", path)
	}
	return cio.ExportFile(canvas.Stringify(), path)
}

// editFile loads path, applies fn and saves the result.
func (c *CLI) editFile(path string, fn func(*diagram.Canvas) error) error {
	canvas, err := c.loadCanvas(path)
	if err != nil {
		return err
	}
	if err := fn(canvas); err != nil {
		return err
	}
	return saveCanvas(canvas, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseFloats(names []string, args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", names[i], a)
		}
		if err := errors.ValidateFinite(names[i], v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// sidePoint is the logical midpoint of one side of s, relative to s.
func sidePoint(s *diagram.Shape, d geom.Direction) geom.Point {
	w, h := s.Size()
	switch d {
	case geom.Top:
		return geom.Pt(w/2, 0)
	case geom.Right:
		return geom.Pt(w, h/2)
	case geom.Bottom:
		return geom.Pt(w/2, h)
	}
	return geom.Pt(0, h/2)
}
