package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
)

// System clipboard access, replaced in tests.
var (
	clipboardWrite = clipboard.WriteAll
	clipboardRead  = clipboard.ReadAll
)

func (c *CLI) copyCommand() *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "copy <file> <id>...",
		Short: "Copy shapes, their children and the connections between them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := c.loadCanvas(args[0])
			if err != nil {
				return err
			}
			doc, err := copyShapes(canvas, args[1:])
			if err != nil {
				return err
			}
			data, err := cio.Marshal(doc, cio.FormatJSON)
			if err != nil {
				return err
			}
			if toStdout {
				_, err := c.Out.Write(data)
				return err
			}
			if err := clipboardWrite(string(data)); err != nil {
				return errors.Wrap(errors.ErrCodeUnsupported, err, "write system clipboard")
			}
			printSuccess(c.Out, "Copied %d shape(s), %d connection(s)", len(doc.CustomShapes)+len(doc.RegularShapes), len(doc.Connections))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the copied document instead of using the clipboard")
	return cmd
}

func copyShapes(canvas *diagram.Canvas, ids []string) (*diagram.Document, error) {
	canvas.EmptyCurrentSelection()
	for _, id := range ids {
		s := canvas.Shape(id)
		if s == nil {
			return nil, errors.NotFound("shape", id)
		}
		if !canvas.AddToSelection(s) {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "cannot select %q with the other shapes", id)
		}
	}
	return canvas.Copy(), nil
}

func (c *CLI) pasteCommand() *cobra.Command {
	var (
		fromStdin bool
		times     int
	)
	cmd := &cobra.Command{
		Use:   "paste <file>",
		Short: "Paste copied shapes with fresh ids and an offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				text string
				err  error
			)
			if fromStdin {
				var data []byte
				data, err = io.ReadAll(cmd.InOrStdin())
				text = string(data)
			} else {
				text, err = clipboardRead()
				if err != nil {
					err = errors.Wrap(errors.ErrCodeUnsupported, err, "read system clipboard")
				}
			}
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New(errors.ErrCodeInvalidInput, "clipboard is empty")
			}
			doc, err := cio.Read(strings.NewReader(text), cio.FormatJSON)
			if err != nil {
				return err
			}
			var pasted []string
			err = c.editFile(args[0], func(canvas *diagram.Canvas) error {
				ids, err := pasteDocument(canvas, doc, times)
				pasted = ids
				return err
			})
			if err != nil {
				return err
			}
			for _, id := range pasted {
				fmt.Fprintln(c.Out, id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the document from stdin instead of the clipboard")
	cmd.Flags().IntVarP(&times, "times", "n", 1, "paste this many copies, each further offset")
	return cmd
}

// pasteDocument pastes doc n times and returns the ids of the pasted
// top-level shapes.
func pasteDocument(canvas *diagram.Canvas, doc *diagram.Document, n int) ([]string, error) {
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "times must be at least 1, got %d", n)
	}
	canvas.SetClipboard(doc)
	var ids []string
	for range n {
		if _, err := canvas.Paste(); err != nil {
			return nil, err
		}
		for _, s := range canvas.Selection() {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}
