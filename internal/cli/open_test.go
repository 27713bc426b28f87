package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/canvaskit/pkg/store"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m DocumentListModel, keys ...string) (DocumentListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(DocumentListModel)
	}
	return m, cmd
}

func sampleSummaries(n int) []store.Summary {
	now := time.Now()
	out := make([]store.Summary, n)
	for i := range out {
		out[i] = store.Summary{ID: string(rune('a' + i)), Name: "doc-" + string(rune('a'+i)), Version: 1, UpdatedAt: now}
	}
	return out
}

func TestDocumentListNavigation(t *testing.T) {
	m := NewDocumentListModel(sampleSummaries(3))

	m, _ = press(m, "down", "down", "down")
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want clamped at 2", m.Cursor)
	}
	m, _ = press(m, "k", "up", "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}

	m, cmd := press(m, "j", "enter")
	if m.Selected == nil || m.Selected.ID != "b" {
		t.Fatalf("selected = %+v", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestDocumentListQuit(t *testing.T) {
	m, cmd := press(NewDocumentListModel(sampleSummaries(2)), "q")
	if m.Selected != nil || cmd == nil {
		t.Errorf("q: selected = %v, cmd = %v", m.Selected, cmd)
	}
}

func TestDocumentListScrolls(t *testing.T) {
	m := NewDocumentListModel(sampleSummaries(10))
	next, _ := m.Update(tea.WindowSizeMsg{Height: 8})
	m = next.(DocumentListModel)
	if m.Height != 5 {
		t.Fatalf("height = %d, want the minimum 5", m.Height)
	}
	for range 7 {
		m, _ = press(m, "down")
	}
	if m.Offset != 3 {
		t.Errorf("offset = %d, want 3", m.Offset)
	}
	view := m.View()
	if strings.Contains(view, "doc-a") || !strings.Contains(view, "doc-h") {
		t.Errorf("view does not follow the cursor:\n%s", view)
	}
	if !strings.Contains(view, "[8/10]") {
		t.Errorf("view missing position:\n%s", view)
	}
}

func TestDocumentListEmpty(t *testing.T) {
	m, cmd := press(NewDocumentListModel(nil), "enter")
	if m.Selected != nil || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "May 16, 2025"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
