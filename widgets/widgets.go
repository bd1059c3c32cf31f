package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one slot of a lane row
type Cell struct {
	Text   string
	Color  lipgloss.Color
	Cursor bool // edit cursor
	Active bool // playhead
}

// RenderCell renders a fixed-width slot
func RenderCell(c Cell, width int) string {
	style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if c.Color != "" {
		style = style.Foreground(c.Color)
	}
	if c.Active {
		style = style.Reverse(true)
	}
	if c.Cursor {
		style = style.Underline(true).Bold(true)
	}
	return style.Render(c.Text)
}

// RenderCellRow renders cells with spacing
func RenderCellRow(cells []Cell, width int) string {
	var out strings.Builder
	for i, c := range cells {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderCell(c, width))
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
