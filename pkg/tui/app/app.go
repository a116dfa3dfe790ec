// Package teaui is the interactive termwise planner: preferences on the
// left, the weekly calendar on the right and a command line at the bottom.
package teaui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"tableflip.dev/termwise/pkg/app"
	"tableflip.dev/termwise/pkg/course"
	"tableflip.dev/termwise/pkg/export"
	"tableflip.dev/termwise/pkg/layout"
	"tableflip.dev/termwise/pkg/optimizer"
	"tableflip.dev/termwise/pkg/prefs"
	"tableflip.dev/termwise/pkg/submit"
	"tableflip.dev/termwise/pkg/tui/components/calendar"
	"tableflip.dev/termwise/pkg/tui/components/help"
	"tableflip.dev/termwise/pkg/tui/theme"
	"tableflip.dev/termwise/pkg/tui/ui"
)

type mode int

const (
	modeNormal mode = iota
	modeCommand
	modeHelp
)

// generatedMsg carries the outcome of a submission.
type generatedMsg struct {
	resp *optimizer.GenerateResponse
	err  error
}

// Options wires the model to its collaborators.
type Options struct {
	State    *app.State
	Pipeline *submit.Pipeline
	Engine   *layout.Engine
	// Terms labels each term and anchors calendar exports.
	Terms  map[course.Term]export.Term
	Logger *zap.Logger
	Now    func() time.Time

	// Context bounds in-flight submissions; quitting cancels it.
	Context context.Context
}

// Model is the root Bubble Tea model.
type Model struct {
	state    *app.State
	pipeline *submit.Pipeline
	engine   *layout.Engine
	terms    map[course.Term]export.Term
	logger   *zap.Logger
	now      func() time.Time

	theme theme.Theme
	input textinput.Model
	help  ui.Component
	mode  mode

	width  int
	height int

	focus       string
	showTooltip bool
	busy        bool

	status    string
	statusErr bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a model. A nil engine uses the default layout.
func New(opts Options) *Model {
	if opts.State == nil {
		opts.State = app.New()
	}
	if opts.Engine == nil {
		opts.Engine = layout.New(layout.DefaultConfig())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "command (help for a list)"
	ti.CharLimit = 256
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock

	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Model{
		state:    opts.State,
		pipeline: opts.Pipeline,
		engine:   opts.Engine,
		terms:    opts.Terms,
		logger:   opts.Logger,
		now:      opts.Now,
		theme:    theme.Default(),
		input:    ti,
		help:     help.New(60, 20),
		status:   "Press : for commands, g to generate, q to quit.",
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run launches the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.input.SetWidth(max(10, v.Width-4))
		m.help.SetSize(helpSize(v.Width, v.Height))
		return m, nil

	case generatedMsg:
		m.busy = false
		m.focus = ""
		if v.err != nil {
			m.logger.Debug("generate failed", zap.Error(v.err))
			m.setError(submit.UserMessage(v.err))
			return m, nil
		}
		m.setStatus(generatedStatus(v.resp))
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeCommand:
			return m.updateCommand(v)
		case modeHelp:
			return m.updateHelp(v)
		}
		return m.updateNormal(v)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeCommand:
		m.input, cmd = m.input.Update(msg)
	case modeHelp:
		m.help, cmd = m.help.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateNormal(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit
	case ":":
		m.mode = modeCommand
		m.input.Reset()
		return m, m.input.Focus()
	case "?":
		m.mode = modeHelp
	case "tab":
		m.switchTerm(m.state.Term().Other())
	case "n":
		m.state.NextAlternative()
		m.focus = ""
	case "p":
		m.state.PreviousAlternative()
		m.focus = ""
	case "left", "h":
		m.moveFocus(-1, 0)
	case "right", "l":
		m.moveFocus(1, 0)
	case "up", "k":
		m.moveFocus(0, -1)
	case "down", "j":
		m.moveFocus(0, 1)
	case "enter":
		if m.focus == "" {
			m.moveFocus(0, 0)
		}
		m.showTooltip = !m.showTooltip && m.focus != ""
	case "esc":
		m.showTooltip = false
	case "g":
		return m, m.generate()
	case "R":
		m.state.Edit(func(p *prefs.Store) { p.ResetPreferences() })
		m.focus = ""
		m.setStatus("Preferences reset.")
	case "A":
		m.state.Edit(func(p *prefs.Store) { p.ResetAvailabilityPreferences() })
		m.focus = ""
		m.setStatus("Availability reset.")
	}
	return m, nil
}

func (m *Model) updateCommand(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		line := m.input.Value()
		m.mode = modeNormal
		m.input.Blur()
		m.input.Reset()
		return m, m.execute(line)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateHelp(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "esc", "?", "q":
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

// helpSize keeps the help box inside the window with a small margin.
func helpSize(width, height int) (int, int) {
	return min(72, width-4), min(30, height-4)
}

// generate starts a submission unless one is running.
func (m *Model) generate() tea.Cmd {
	if m.pipeline == nil {
		m.setError("No optimizer configured.")
		return nil
	}
	if m.busy || m.pipeline.IsGenerating() {
		m.setError(submit.UserMessage(submit.ErrBusy))
		return nil
	}
	if err := submit.Check(m.state.Snapshot().Preferences); err != nil {
		m.setError(submit.UserMessage(err))
		return nil
	}
	m.busy = true
	m.setStatus("Generating schedule…")
	pipeline, ctx := m.pipeline, m.ctx
	return func() tea.Msg {
		resp, err := pipeline.Submit(ctx)
		return generatedMsg{resp: resp, err: err}
	}
}

func (m *Model) switchTerm(t course.Term) {
	m.state.Edit(func(p *prefs.Store) { p.SwitchSemester(t) })
	m.focus = ""
	m.showTooltip = false
	m.setStatus(fmt.Sprintf("Switched to %s.", m.termLabel(t)))
}

func (m *Model) moveFocus(dx, dy int) {
	cells := m.cells()
	m.focus = calendar.Move(cells, m.focus, dx, dy)
	if m.focus == "" {
		m.showTooltip = false
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) termLabel(t course.Term) string {
	if et, ok := m.terms[t]; ok && et.Label != "" {
		return et.Label
	}
	return t.Title()
}

func generatedStatus(resp *optimizer.GenerateResponse) string {
	if resp == nil {
		return "Schedule generated."
	}
	if resp.Message != "" {
		return resp.Message
	}
	switch n := len(resp.Alternatives); n {
	case 0:
		return "Schedule generated."
	case 1:
		return "Schedule generated with 1 alternative. Press n to view it."
	default:
		return fmt.Sprintf("Schedule generated with %d alternatives. Press n/p to browse.", n)
	}
}
