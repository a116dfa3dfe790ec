package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Component is a Bubble Tea widget the planner can size and draw inside
// another view.
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}
