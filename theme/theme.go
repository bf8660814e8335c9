package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Drum grid
	StepEmpty    rune // · no hit
	StepActive   rune // ● hit
	StepPlayhead rune // ▶ current step

	// Voice meter and progress bar
	MeterFull  rune // █
	MeterEmpty rune // ░

	// Spectrum sparkline, quietest to loudest
	Spark []rune

	// Queue list
	Cursor rune // ▸ selected item
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepActive:   '●',
			StepPlayhead: '▶',

			MeterFull:  '█',
			MeterEmpty: '░',

			Spark: []rune("▁▂▃▄▅▆▇█"),

			Cursor: '▸',
		},
	}
}

// Role is a palette position (0-1) with a fixed meaning in the UI
type Role float64

const (
	RoleBG      Role = 0.0
	RoleSurface Role = 0.1
	RoleMuted   Role = 0.2
	RoleFG      Role = 0.4
	RoleAccent  Role = 0.5
	RoleCursor  Role = 0.6
	RoleActive  Role = 0.7
	RoleWarning Role = 0.8
	RoleSuccess Role = 1.0
)

// RGB returns the palette color of a role
func (t *Theme) RGB(r Role) RGB {
	return t.Palette.Lookup(float64(r))
}

func (t *Theme) role(r Role) lipgloss.Color {
	return lipgloss.Color(t.RGB(r).Hex())
}

func (t *Theme) BG() lipgloss.Color      { return t.role(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.role(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.role(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.role(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.role(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color  { return t.role(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.role(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.role(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return t.role(Role(norm))
}

// Gradient returns n colors evenly spaced across the palette
func (t *Theme) Gradient(n int) []lipgloss.Color {
	out := make([]lipgloss.Color, n)
	for i := range out {
		norm := 0.0
		if n > 1 {
			norm = float64(i) / float64(n-1)
		}
		out[i] = t.Color(norm)
	}
	return out
}

// Styles are the text styles shared by every screen
type Styles struct {
	Header lipgloss.Style
	Dim    lipgloss.Style
	Value  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

func (t *Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Foreground(t.Accent()).Bold(true),
		Dim:    lipgloss.NewStyle().Foreground(t.Muted()),
		Value:  lipgloss.NewStyle().Foreground(t.FG()),
		Status: lipgloss.NewStyle().Foreground(t.FG()).Background(t.Muted()).Padding(0, 1),
		Error:  lipgloss.NewStyle().Foreground(t.Warning()),
	}
}
