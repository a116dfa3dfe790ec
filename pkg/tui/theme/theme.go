package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/termwise/pkg/tui/components/calendar"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header   HeaderTheme
	Footer   FooterTheme
	Panel    PanelTheme
	Tooltip  TooltipTheme
	Calendar calendar.Styled
}

// HeaderTheme styles the term toggle and alternative position.
type HeaderTheme struct {
	Title        lipgloss.Style
	TermActive   lipgloss.Style
	TermInactive lipgloss.Style
	Position     lipgloss.Style
	Demo         lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/command bar.
type FooterTheme struct {
	Help    lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Busy    lipgloss.Style
	Command lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
}

// TooltipTheme styles the focused-session details box.
type TooltipTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.Color("244")

	return Theme{
		Header: HeaderTheme{
			Title:        lipgloss.NewStyle().Bold(true).Foreground(accent),
			TermActive:   lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1),
			TermInactive: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
			Position:     lipgloss.NewStyle().Foreground(muted),
			Demo:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		},
		Footer: FooterTheme{
			Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(muted),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			Busy:    lipgloss.NewStyle().Foreground(accent),
			Command: lipgloss.NewStyle().Foreground(accent).Bold(true),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
			Muted: lipgloss.NewStyle().Foreground(muted),
		},
		Tooltip: TooltipTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accent).
				Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
		Calendar: calendar.DefaultStyled(),
	}
}
