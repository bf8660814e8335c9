package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-songcode/composer"
	"go-songcode/theme"
)

// Meter returns a bar of width cells filled to level (0-1)
func Meter(level float64, width int, sym theme.Symbols) string {
	if width <= 0 {
		return ""
	}
	level = math.Max(0, math.Min(1, level))
	full := int(math.Round(level * float64(width)))
	return strings.Repeat(string(sym.MeterFull), full) + strings.Repeat(string(sym.MeterEmpty), width-full)
}

// RenderVoices lists the voices of a plan with a volume meter each
func RenderVoices(plan *composer.Plan, width int, th *theme.Theme) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	var lines []string
	for i, v := range plan.Voices {
		// Voice volumes top out at 1.05
		level := v.VolumeFactor / 1.05
		bar := lipgloss.NewStyle().Foreground(th.Color(level)).Render(Meter(level, width, th.Symbols))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			dim.Render(fmt.Sprintf("%2d %-7s %-6s %7.1fHz", i+1, v.Role, v.Waveform, v.BaseFreqHz)),
			bar,
			dim.Render(fmt.Sprintf("%.2f", v.VolumeFactor))))
	}
	return strings.Join(lines, "\n")
}

// Sparkline renders values (0-1) as one block glyph each
func Sparkline(values []float64, sym theme.Symbols) string {
	if len(sym.Spark) == 0 {
		return ""
	}
	var out strings.Builder
	top := len(sym.Spark) - 1
	for _, v := range values {
		v = math.Max(0, math.Min(1, v))
		out.WriteRune(sym.Spark[int(math.Round(v*float64(top)))])
	}
	return out.String()
}

// RenderScope draws a spectrum as a colored sparkline
func RenderScope(spectrum []float64, th *theme.Theme) string {
	if len(spectrum) == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render("no signal")
	}
	var out strings.Builder
	for _, v := range spectrum {
		out.WriteString(lipgloss.NewStyle().Foreground(th.Color(v)).Render(Sparkline([]float64{v}, th.Symbols)))
	}
	return out.String()
}
