package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/diagram"
)

// shapeRow and connectionRow are the inspect report, also emitted as JSON.
type shapeRow struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Kind   string  `json:"kind"`
	Parent string  `json:"parent,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
}

type connectionRow struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Style     string  `json:"style"`
	Segments  int     `json:"segments"`
	Length    float64 `json:"length"`
	Crossings int     `json:"crossings"`
	Jumps     int     `json:"jumps"`
}

type report struct {
	Shapes      []shapeRow      `json:"shapes"`
	Connections []connectionRow `json:"connections"`
}

func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the shapes and connections of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canvas, err := c.loadCanvas(args[0])
			if err != nil {
				return err
			}
			r := buildReport(canvas)
			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			printReport(c.Out, r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func buildReport(canvas *diagram.Canvas) report {
	r := report{Shapes: []shapeRow{}, Connections: []connectionRow{}}
	for _, s := range canvas.Shapes() {
		w, h := s.Size()
		r.Shapes = append(r.Shapes, shapeRow{
			ID:     s.ID,
			Type:   s.Type,
			Kind:   s.Kind.String(),
			Parent: s.ParentID(),
			X:      s.X(),
			Y:      s.Y(),
			Width:  w,
			Height: h,
			Label:  s.Label(),
		})
	}
	conns := canvas.Connections()
	for _, conn := range conns {
		row := connectionRow{
			ID:     conn.ID,
			Source: conn.SrcShape().ID,
			Target: conn.DestShape().ID,
			Style:  string(conn.Style),
		}
		for _, seg := range conn.Segments() {
			row.Segments++
			row.Length += seg.Length()
			row.Crossings += len(seg.Intersections())
		}
		for _, other := range conns {
			if other != conn && canvas.JumpsOver(conn, other) {
				row.Jumps++
			}
		}
		r.Connections = append(r.Connections, row)
	}
	return r
}

func printReport(w io.Writer, r report) {
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Shapes (%d)", len(r.Shapes))))
	if len(r.Shapes) > 0 {
		rows := make([][]string, 0, len(r.Shapes))
		for _, s := range r.Shapes {
			rows = append(rows, []string{
				s.ID, s.Type, orDash(s.Parent),
				fmt.Sprintf("%g,%g", s.X, s.Y),
				fmt.Sprintf("%gx%g", s.Width, s.Height),
				orDash(s.Label),
			})
		}
		fmt.Fprintln(w, newTable("ID", "Type", "Parent", "Position", "Size", "Label").Rows(rows...).Render())
	}

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Connections (%d)", len(r.Connections))))
	if len(r.Connections) > 0 {
		rows := make([][]string, 0, len(r.Connections))
		for _, c := range r.Connections {
			rows = append(rows, []string{
				c.ID, c.Source + " " + iconArrow + " " + c.Target, c.Style,
				fmt.Sprint(c.Segments), fmt.Sprintf("%.0f", c.Length),
				fmt.Sprint(c.Crossings), fmt.Sprint(c.Jumps),
			})
		}
		fmt.Fprintln(w, newTable("ID", "Route", "Style", "Segments", "Length", "Crossings", "Jumps").Rows(rows...).Render())
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
