package board

import "github.com/charmbracelet/lipgloss/v2"

// Theme gathers the board's Lip Gloss styles. Cell colors come from the
// category and are applied on top of these.
type Theme struct {
	Header HeaderTheme
	Cell   CellTheme
	Detail DetailTheme
	Footer FooterTheme
}

type HeaderTheme struct {
	Title  lipgloss.Style
	Counts lipgloss.Style
}

// CellTheme styles one category tile.
type CellTheme struct {
	Frame    lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
	Overdue  lipgloss.Style
}

type DetailTheme struct {
	Title lipgloss.Style
	Body  lipgloss.Style
}

type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
}

// DefaultTheme returns the built-in board theme.
func DefaultTheme() Theme {
	frame := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(0, 1)

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Bold(true),
			Counts: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Cell: CellTheme{
			Frame:    frame,
			Selected: frame.Border(lipgloss.ThickBorder()),
			Label:    lipgloss.NewStyle().Bold(true),
			Overdue: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#b71c1c")).
				Bold(true),
		},
		Detail: DetailTheme{
			Title: lipgloss.NewStyle().Bold(true).Underline(true),
			Body:  lipgloss.NewStyle().PaddingLeft(2),
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		},
	}
}
