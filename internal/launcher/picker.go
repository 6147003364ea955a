// Package launcher is the interactive picker: type a query, pick a
// candidate, and the terminal opens on that tmux session.
package launcher

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/tmux-runner/internal/command"
	"github.com/timvw/tmux-runner/internal/match"
	"github.com/timvw/tmux-runner/internal/model"
	"github.com/timvw/tmux-runner/internal/runner"
)

// Engine is what the picker needs from the runner.
type Engine interface {
	Prepare(ctx context.Context) runner.LiveState
	Match(ctx context.Context, term string, state runner.LiveState) match.Result
	Launch(ctx context.Context, m model.Match) (command.Command, error)
}

// messages
type stateMsg struct {
	state runner.LiveState
}

type tickMsg struct{}

type launchResultMsg struct {
	cmd command.Command
	err error
}

// Picker runs the interactive launcher.
type Picker struct {
	Engine          Engine
	RefreshInterval time.Duration // 0 disables auto-refresh
	Theme           Theme
	Query           string // initial query
}

// Result is what happened in the picker.
type Result struct {
	// Launched is the command that was spawned, nil when the user quit.
	Launched *command.Command
}

// pickerModel implements tea.Model
type pickerModel struct {
	engine          Engine
	ctx             context.Context
	refreshInterval time.Duration
	styles          styles

	input   textinput.Model
	state   runner.LiveState
	ready   bool
	matches []model.Match // sorted by relevance
	exact   bool
	cursor  int

	// dimensions
	width  int
	height int

	// status
	refreshing   bool
	launching    bool
	message      string
	refreshCount int

	launched *command.Command
}

func newPickerModel(ctx context.Context, p *Picker) *pickerModel {
	ti := textinput.New()
	ti.Prompt = "tmux "
	ti.Placeholder = "session [path] [-k|-y|-t|-s|-c]  or  inator project [args]"
	ti.CharLimit = 512
	ti.Width = 80
	ti.SetValue(p.Query)
	ti.Focus()

	theme := p.Theme
	if theme == (Theme{}) {
		theme = DarkTheme()
	}
	st := newStyles(theme)
	ti.PromptStyle = st.prompt

	return &pickerModel{
		engine:          p.Engine,
		ctx:             ctx,
		refreshInterval: p.RefreshInterval,
		styles:          st,
		input:           ti,
	}
}

// Run shows the picker until the user launches something or quits.
func (p *Picker) Run(ctx context.Context) (Result, error) {
	m := newPickerModel(ctx, p)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return Result{}, err
	}
	return Result{Launched: m.launched}, nil
}

func (m *pickerModel) Init() tea.Cmd {
	m.refreshing = true
	return tea.Batch(textinput.Blink, m.doRefresh())
}

// scheduleTick returns a tea.Cmd that sends a tickMsg after the refresh interval.
// Returns nil if auto-refresh is disabled (interval <= 0).
func (m *pickerModel) scheduleTick() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *pickerModel) doRefresh() tea.Cmd {
	engine := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		return stateMsg{state: engine.Prepare(ctx)}
	}
}

func (m *pickerModel) doLaunch(sel model.Match) tea.Cmd {
	engine := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		cmd, err := engine.Launch(ctx, sel)
		return launchResultMsg{cmd: cmd, err: err}
	}
}

// recompute matches the current query against the last live state. The
// selection follows the same target when it is still listed.
func (m *pickerModel) recompute() {
	var prev *model.Match
	if sel := m.selected(); sel != nil {
		p := *sel
		prev = &p
	}

	res := m.engine.Match(m.ctx, m.input.Value(), m.state)
	m.matches = slices.Clone(res.Matches)
	model.SortByRelevance(m.matches)
	m.exact = res.ExactMatch

	m.cursor = 0
	if prev != nil {
		for i, c := range m.matches {
			if c.Action == prev.Action && c.Target == prev.Target {
				m.cursor = i
				break
			}
		}
	}
}

func (m *pickerModel) selected() *model.Match {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return nil
	}
	return &m.matches[m.cursor]
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-2, 10)
		return m, nil

	case stateMsg:
		m.refreshing = false
		m.state = msg.state
		m.ready = true
		m.refreshCount++
		m.recompute()
		return m, m.scheduleTick()

	case tickMsg:
		// Auto-refresh: skip while a refresh or launch is in flight
		if m.refreshing || m.launching {
			return m, m.scheduleTick()
		}
		m.refreshing = true
		return m, m.doRefresh()

	case launchResultMsg:
		m.launching = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Launch failed: %v", msg.err)
			return m, nil
		}
		cmd := msg.cmd
		m.launched = &cmd
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "ctrl+p", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "ctrl+n", "tab":
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}
		return m, nil

	case "ctrl+r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.doRefresh()

	case "enter":
		sel := m.selected()
		if sel == nil || m.launching {
			return m, nil
		}
		m.launching = true
		m.message = ""
		return m, m.doLaunch(*sel)
	}

	// Forward all other keys to the text input component
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.message = ""
		m.recompute()
	}
	return m, cmd
}

func (m *pickerModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	s := m.styles

	// Header: title + keybindings
	b.WriteString(s.title.Render("tmux-runner"))
	b.WriteString("  ")
	b.WriteString(hint(s, "Enter", "open") + "  " +
		hint(s, "↑↓", "select") + "  " +
		hint(s, "ctrl+r", "refresh") + "  " +
		hint(s, "Esc", "quit"))
	if m.refreshing {
		b.WriteString("  ")
		b.WriteString(s.dim.Render("refreshing..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(s.border.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")

	if !m.ready {
		b.WriteString("  Listing sessions...\n")
		return b.String()
	}
	if len(m.matches) == 0 {
		b.WriteString(s.dim.Render("  No matches."))
		b.WriteString("\n")
	}

	// Leave room for header, input, separator and status line.
	visible := len(m.matches)
	if m.height > 0 {
		visible = min(visible, max(m.height-6, 1))
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	textWidth := max(m.width-14, 10)
	for i := start; i < start+visible && i < len(m.matches); i++ {
		b.WriteString(m.renderRow(i, textWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(s.err.Render(m.message))
	} else {
		status := fmt.Sprintf("%d sessions, %d projects", len(m.state.Sessions), len(m.state.Projects))
		if m.exact {
			status += ", exact match"
		}
		b.WriteString(s.dim.Render(status))
	}
	return b.String()
}

func (m *pickerModel) renderRow(i, textWidth int) string {
	s := m.styles
	c := m.matches[i]

	icon := iconText(c.Action)
	text := truncate(c.Text, textWidth)
	rel := fmt.Sprintf("%4.2f", c.Relevance)

	if i == m.cursor {
		return s.selected.Render(fmt.Sprintf("> %s %s", icon, padRight(text, textWidth))) + " " + s.dim.Render(rel)
	}

	style := s.attach
	switch c.Action {
	case model.ActionNewSession:
		style = s.create
	case model.ActionNewViaSubtool:
		style = s.subtool
	}
	return "  " + style.Render(icon) + " " + s.text.Render(padRight(text, textWidth)) + " " + s.dim.Render(rel)
}

func hint(s styles, key, desc string) string {
	return s.hintKey.Render(key) + s.hintDesc.Render("="+desc)
}

// iconText returns a one-character marker per action.
func iconText(a model.Action) string {
	switch a {
	case model.ActionAttach:
		return "●"
	case model.ActionNewSession:
		return "+"
	case model.ActionNewViaSubtool:
		return "◆"
	}
	return "?"
}

// truncate cuts a string to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads a string with spaces to reach the desired rune width.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
