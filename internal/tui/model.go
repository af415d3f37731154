// Package tui provides the BubbleTea-based level controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/dbus"
)

// Controller is the daemon API the TUI drives.
type Controller interface {
	Increase(ctx context.Context, step int) error
	Decrease(ctx context.Context, step int) error
	ToggleMute(ctx context.Context) error
	State(ctx context.Context) (dbus.State, error)
}

// Model is the main TUI model.
type Model struct {
	ctrl    Controller
	profile dbus.Profile
	cfg     *config.Config
	timeout time.Duration

	keys KeyMap
	help help.Model

	state    dbus.State
	hasState bool
	width    int

	statusMsg string
	statusErr bool

	// StateChanged signals from the daemon, nil when not following
	updates <-chan dbus.State
}

// New creates a TUI model. updates may be nil.
func New(ctrl Controller, profile dbus.Profile, cfg *config.Config, updates <-chan dbus.State) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	h := help.New()
	h.ShowAll = cfg.TUI.ShowHelp
	return Model{
		ctrl:    ctrl,
		profile: profile,
		cfg:     cfg,
		timeout: cfg.Client.Timeout.Duration(),
		keys:    DefaultKeyMap(profile.ToggleMute),
		help:    h,
		updates: updates,
	}
}

type stateMsg struct {
	state dbus.State
}

// signalMsg carries a state pushed by the daemon.
type signalMsg struct {
	state dbus.State
}

type errMsg struct {
	err error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Init fetches the initial state and starts following updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchState, m.watchForChanges)
}

func (m Model) fetchState() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	st, err := m.ctrl.State(ctx)
	if err != nil {
		return errMsg{err: err}
	}
	return stateMsg{state: st}
}

// watchForChanges waits for the next StateChanged signal.
func (m Model) watchForChanges() tea.Msg {
	if m.updates == nil {
		return nil
	}
	st, ok := <-m.updates
	if !ok {
		return nil
	}
	return signalMsg{state: st}
}

// act runs an adjustment and then fetches the resulting state.
func (m Model) act(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg{err: err}
		}
		return m.fetchState()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.hasState = true
		return m, nil

	case signalMsg:
		m.state = msg.state
		m.hasState = true
		return m, m.watchForChanges

	case errMsg:
		return m, func() tea.Msg {
			return statusMsg{text: msg.err.Error(), isErr: true}
		}

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.cfg.TUI.Step

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Increase):
		return m, m.act(func(ctx context.Context) error { return m.ctrl.Increase(ctx, step) })
	case key.Matches(msg, m.keys.Decrease):
		return m, m.act(func(ctx context.Context) error { return m.ctrl.Decrease(ctx, step) })
	case key.Matches(msg, m.keys.IncreaseMore):
		return m, m.act(func(ctx context.Context) error { return m.ctrl.Increase(ctx, step*4) })
	case key.Matches(msg, m.keys.DecreaseMore):
		return m, m.act(func(ctx context.Context) error { return m.ctrl.Decrease(ctx, step*4) })
	case key.Matches(msg, m.keys.ToggleMute):
		return m, m.act(m.ctrl.ToggleMute)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchState
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(title(m.profile)))
	b.WriteString("\n\n")

	if !m.hasState {
		b.WriteString(dimStyle.Render("connecting..."))
	} else {
		width := m.cfg.TUI.BarWidth
		if m.width > 0 {
			width = min(width, max(m.width-12, 10))
		}
		b.WriteString(RenderBar(m.state.Level, width, m.state.Muted))
		b.WriteString(fmt.Sprintf(" %4s", m.state.Text))
		if m.state.Muted {
			b.WriteString(dimStyle.Render(" muted"))
		}
	}
	b.WriteString("\n\n")

	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		b.WriteString(statusStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func title(p dbus.Profile) string {
	name := string(p.Quantity)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Run starts the TUI program.
func Run(ctrl Controller, profile dbus.Profile, cfg *config.Config, updates <-chan dbus.State) error {
	p := tea.NewProgram(New(ctrl, profile, cfg, updates))
	_, err := p.Run()
	return err
}
