package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-docchat/internal/view"
)

// Styles holds the terminal styles used by text output.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	status    map[view.Color]lipgloss.Style
}

var styles = newStyles()

func newStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		Header:    lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		status: map[view.Color]lipgloss.Style{
			view.ColorSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
			view.ColorWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
			view.ColorError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
			view.ColorDefault: lipgloss.NewStyle(),
		},
	}
}

func (s Styles) Status(c view.Color, text string) string {
	st, ok := s.status[c]
	if !ok {
		st = s.status[view.ColorDefault]
	}
	return st.Render(text)
}

// render writes v as json or yaml, or calls text for the text format.
func render(w io.Writer, v any, text func(w io.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		text(w)
		return nil
	}
}

// table renders rows with columns padded to the widest cell.
func table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styles.Muted.Render("(none)"))
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	line := func(cells []string, style *lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			parts[i] = cell + strings.Repeat(" ", pad)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
	line(headers, &styles.Header)
	for _, row := range rows {
		line(row, nil)
	}
}
