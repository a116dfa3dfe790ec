package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/termwise/pkg/tui/ui"
)

// Entry is one line of the reference: a key or command and what it does.
type Entry struct {
	Name string
	Desc string
}

// Section groups entries under a heading.
type Section struct {
	Title   string
	Entries []Entry
}

// Keys lists the planner's single-key bindings.
var Keys = Section{Title: "Keys", Entries: []Entry{
	{"tab", "switch between fall and winter"},
	{"n / p", "next or previous alternative schedule"},
	{"←↓↑→ hjkl", "move between sessions on the calendar"},
	{"enter", "show or hide details for the focused session"},
	{"g", "generate a schedule for the current term"},
	{"R", "reset all preferences for the current term"},
	{"A", "reset availability for the current term"},
	{":", "open the command line"},
	{"?", "toggle this help"},
	{"q", "quit"},
}}

// Commands lists what the command line accepts. N is a 1-based course row.
var Commands = Section{Title: "Commands", Entries: []Entry{
	{"add", "add an empty course row"},
	{"rm N", "remove course N"},
	{"code N CODE", "set the course code, e.g. code 1 COMP1405"},
	{"instructor N NAME", "set a preferred instructor"},
	{"types N LIST", "allowed section types: online,hybrid,in-person or any"},
	{"buffer VALUE", "gap between classes: none, 30m, 1h or 1h+"},
	{"avail DAY LIST", "morning,afternoon,evening or none"},
	{"max DAY N", "most classes on a day, 0 to 5"},
	{"term fall|winter", "switch term"},
	{"reset / reset-avail", "reset preferences or availability"},
	{"generate", "generate a schedule"},
	{"next / prev", "browse alternatives"},
	{"export FILE", "write the shown schedule as .ics or .xlsx"},
	{"q", "quit"},
}}

// Model renders the key and command reference inside a bordered viewport.
type Model struct {
	viewport viewport.Model
	sections []Section
	width    int
	height   int

	frame lipgloss.Style
	title lipgloss.Style
	name  lipgloss.Style
}

var _ ui.Component = (*Model)(nil)

// New constructs a help overlay sized to the provided bounds.
func New(width, height int, sections ...Section) *Model {
	if len(sections) == 0 {
		sections = []Section{Keys, Commands}
	}
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	model := &Model{
		viewport: vp,
		sections: sections,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		name:  lipgloss.NewStyle().Bold(true),
	}
	model.SetSize(width, height)
	return model
}

// Init implements ui.Component.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (ui.Component, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// View renders the reference inside a rounded frame.
func (m *Model) View() string {
	return m.frame.Width(m.width).Height(m.height).Render(m.viewport.View())
}

// SetSize configures the overlay dimensions and re-wraps the content.
func (m *Model) SetSize(width, height int) {
	width = max(width, 32)
	height = max(height, 8)
	if m.width == width && m.height == height {
		return
	}
	m.width = width
	m.height = height

	innerWidth := max(width-m.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-m.frame.GetVerticalFrameSize(), 1)
	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)
	m.viewport.SetContent(m.render(innerWidth))
	m.viewport.SetYOffset(0)
}

func (m *Model) render(wrap int) string {
	nameWidth := 0
	for _, s := range m.sections {
		for _, e := range s.Entries {
			nameWidth = max(nameWidth, lipgloss.Width(e.Name))
		}
	}
	descWidth := max(wrap-nameWidth-2, 10)
	indent := strings.Repeat(" ", nameWidth+2)

	var b strings.Builder
	for i, s := range m.sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.title.Render(s.Title))
		for _, e := range s.Entries {
			pad := strings.Repeat(" ", nameWidth-lipgloss.Width(e.Name)+2)
			desc := strings.Split(wordwrap.String(e.Desc, descWidth), "\n")
			b.WriteString("\n" + m.name.Render(e.Name) + pad + desc[0])
			for _, line := range desc[1:] {
				b.WriteString("\n" + indent + line)
			}
		}
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
