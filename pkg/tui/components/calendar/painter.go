package calendar

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"tableflip.dev/termwise/pkg/palette"
)

// Styled paints with Lip Gloss. Translucent colours are flattened onto
// Background before use.
type Styled struct {
	HeaderStyle lipgloss.Style
	GutterStyle lipgloss.Style
	BlockStyle  lipgloss.Style
	FocusStyle  lipgloss.Style
	Background  colorful.Color
}

// DefaultStyled suits a dark terminal.
func DefaultStyled() Styled {
	return Styled{
		HeaderStyle: lipgloss.NewStyle().Bold(true),
		GutterStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		BlockStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")),
		FocusStyle:  lipgloss.NewStyle().Bold(true).Underline(true),
		Background:  colorful.Color{R: 0.1, G: 0.1, B: 0.1},
	}
}

func (s Styled) Header(text string) string {
	return s.HeaderStyle.Render(text)
}

func (s Styled) Gutter(text string) string {
	return s.GutterStyle.Render(text)
}

func (s Styled) Block(text string, c palette.Color, focused bool) string {
	style := s.BlockStyle
	if focused {
		style = style.Inherit(s.FocusStyle)
	}
	return style.Background(lipgloss.Color(c.Flatten(s.Background).Hex())).Render(text)
}
