package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-songcode/composer"
	"go-songcode/theme"
)

// RenderDrumGrid draws the drum pattern as one row per drum sound.
// playhead is the current step, -1 when stopped.
func RenderDrumGrid(pattern []composer.DrumStep, playhead int, th *theme.Theme) string {
	label := lipgloss.NewStyle().Foreground(th.Muted())
	if len(pattern) == 0 {
		return label.Render("drums off")
	}

	sounds := []composer.DrumSound{composer.Hat, composer.Snare, composer.Kick}
	var lines []string
	for row, sound := range sounds {
		var line strings.Builder
		line.WriteString(label.Render(fmt.Sprintf("%-5s ", sound)))
		for i, step := range pattern {
			hit := stepHits(step, sound)
			switch {
			case i == playhead && hit:
				line.WriteString(RenderPad(th.RGB(theme.RoleActive), th.Symbols.StepActive))
			case i == playhead:
				line.WriteString(RenderPad(th.RGB(theme.RoleCursor), th.Symbols.StepPlayhead))
			case hit:
				// Rows shade across the palette so the three sounds read apart
				norm := float64(theme.RoleAccent) + float64(row)*0.15
				line.WriteString(RenderPad(th.Palette.Lookup(norm), th.Symbols.StepActive))
			default:
				line.WriteString(RenderPad(th.RGB(theme.RoleMuted), th.Symbols.StepEmpty))
			}
			line.WriteString(" ")
		}
		lines = append(lines, strings.TrimRight(line.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func stepHits(step composer.DrumStep, sound composer.DrumSound) bool {
	switch sound {
	case composer.Kick:
		return step.Kick
	case composer.Snare:
		return step.Snare
	case composer.Hat:
		return step.Hat
	}
	return false
}
