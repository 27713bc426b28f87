package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvaskit/pkg/errors"
	cio "github.com/matzehuels/canvaskit/pkg/io"
	"github.com/matzehuels/canvaskit/pkg/store"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// DocumentListModel is the bubbletea model for picking a stored document.
type DocumentListModel struct {
	Docs     []store.Summary
	Cursor   int
	Offset   int
	Height   int
	Selected *store.Summary
	now      time.Time
}

// NewDocumentListModel creates a picker over docs.
func NewDocumentListModel(docs []store.Summary) DocumentListModel {
	return DocumentListModel{Docs: docs, Height: 15, now: time.Now()}
}

func (m DocumentListModel) Init() tea.Cmd {
	return nil
}

func (m DocumentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Docs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Docs) == 0 {
				return m, nil
			}
			d := m.Docs[m.Cursor]
			m.Selected = &d
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DocumentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Open Document"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Docs))
	for i := m.Offset; i < end; i++ {
		d := m.Docs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-24s %s", cursor, d.Name,
			listDimStyle.Render(fmt.Sprintf("v%d · %d shapes · %s", d.Version, d.Shapes, formatRelativeTime(d.UpdatedAt, m.now))))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.Docs) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Docs))))
	}
	return b.String()
}

func (c *CLI) openCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Pick a stored document and write it to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				list, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printWarning(c.Out, "No documents stored")
					return nil
				}
				final, err := tea.NewProgram(NewDocumentListModel(list), tea.WithContext(cmd.Context())).Run()
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "run picker")
				}
				m := final.(DocumentListModel)
				if m.Selected == nil {
					return nil
				}
				rec, err := s.Get(cmd.Context(), m.Selected.ID)
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = rec.Name + ".json"
				}
				if err := cio.ExportFile(rec.Document, path); err != nil {
					return err
				}
				printSuccess(c.Out, "Opened %s (version %d)", rec.Name, rec.Version)
				printFile(c.Out, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: <name>.json)")
	return cmd
}
