package console

import "github.com/charmbracelet/lipgloss"

// Accent selects a panel colour.
type Accent int

const (
	AccentCyan Accent = iota
	AccentBlue
	AccentRed
	AccentMagenta
	AccentYellow
)

// Theme holds the styles used by the console, bound to one renderer.
type Theme struct {
	Banner   lipgloss.Style
	Subtitle lipgloss.Style
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Dim      lipgloss.Style
	Italic   lipgloss.Style

	accents map[Accent]lipgloss.Color
	r       *lipgloss.Renderer
}

// NewTheme creates the default theme for r.
func NewTheme(r *lipgloss.Renderer) *Theme {
	t := &Theme{
		r: r,
		accents: map[Accent]lipgloss.Color{
			AccentCyan:    lipgloss.Color("14"),
			AccentBlue:    lipgloss.Color("12"),
			AccentRed:     lipgloss.Color("9"),
			AccentMagenta: lipgloss.Color("13"),
			AccentYellow:  lipgloss.Color("11"),
		},
	}

	t.Banner = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.accents[AccentMagenta]).
		Foreground(t.accents[AccentMagenta]).
		Bold(true).
		Align(lipgloss.Center).
		Padding(1, 2)
	t.Subtitle = r.NewStyle().Foreground(lipgloss.Color("8"))
	t.Title = r.NewStyle().Bold(true)
	t.Heading = r.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	t.Success = r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	t.Warning = r.NewStyle().Foreground(t.accents[AccentYellow])
	t.Error = r.NewStyle().Foreground(t.accents[AccentRed])
	t.Dim = r.NewStyle().Faint(true)
	t.Italic = r.NewStyle().Italic(true)
	return t
}

// Color returns the colour for an accent.
func (t *Theme) Color(a Accent) lipgloss.Color {
	return t.accents[a]
}

// Panel returns a bordered panel style in accent a.
func (t *Theme) Panel(a Accent, width int) lipgloss.Style {
	return t.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.accents[a]).
		Padding(0, 1).
		Width(width)
}

// Accented returns a foreground style in accent a.
func (t *Theme) Accented(a Accent) lipgloss.Style {
	return t.r.NewStyle().Foreground(t.accents[a])
}
