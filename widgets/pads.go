package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-songcode/theme"
)

// RenderPad renders a single colored cell
func RenderPad(color theme.RGB, symbol rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
	return style.Render(string(symbol))
}

// RenderSwatch renders every color of a palette as a row of blocks
func RenderSwatch(p *theme.Palette) string {
	var out strings.Builder
	for i, c := range p.Colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c, '■'))
	}
	return out.String()
}

// RenderLegendItem renders a single legend item: "■ name - description"
func RenderLegendItem(color theme.RGB, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, '■'), name, desc)
}
