package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/tr4cks/picled/led"
)

const windowTitle = "PIC LED Controller"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Padding(1, 0)
	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12"))
	busyButtonStyle = buttonStyle.
			BorderForeground(lipgloss.Color("8")).
			Foreground(lipgloss.Color("8"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(1, 3)
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2)
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type keyMap struct {
	Press   key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Press, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func defaultKeyMap() keyMap {
	return keyMap{
		Press:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press button")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// toggledMsg carries the outcome of a toggle run in the background.
type toggledMsg struct {
	state led.State
	err   error
}

type modelTUI struct {
	controller *led.Controller
	logger     zerolog.Logger
	keys       keyMap
	help       help.Model

	state   led.State
	pending bool  // a toggle is in flight, the button is disabled
	err     error // shown in a modal dialog until dismissed
}

func newModelTUI(controller *led.Controller, logger zerolog.Logger) modelTUI {
	return modelTUI{
		controller: controller,
		logger:     logger,
		keys:       defaultKeyMap(),
		help:       help.New(),
		state:      controller.State(),
	}
}

func runTUI(controller *led.Controller, logger zerolog.Logger) error {
	logger.Info().Msg("Opening window")
	defer logger.Info().Msg("Window closed")
	_, err := tea.NewProgram(newModelTUI(controller, logger), tea.WithAltScreen()).Run()
	return err
}

func toggle(controller *led.Controller) tea.Cmd {
	return func() tea.Msg {
		state, err := controller.Toggle()
		return toggledMsg{state: state, err: err}
	}
}

func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toggledMsg:
		m.pending = false
		m.state = msg.state
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// the error dialog is modal
		if m.err != nil {
			switch {
			case msg.String() == "ctrl+c":
				return m, tea.Quit
			case key.Matches(msg, m.keys.Dismiss):
				m.err = nil
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Press):
			if m.pending {
				return m, nil
			}
			m.pending = true
			m.logger.Debug().Bool("requested", !m.state.On).Msg("Button pressed")
			return m, toggle(m.controller)
		}
	}
	return m, nil
}

func (m modelTUI) View() string {
	button := buttonStyle.Render(m.state.Button())
	if m.pending {
		button = busyButtonStyle.Render(m.state.Button())
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(windowTitle),
		statusStyle.Render(m.state.Status()),
		button,
	)
	view := panelStyle.Render(content)

	if m.err != nil {
		dialog := dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			errorTitleStyle.Render("Communication Error"),
			"",
			led.Message(m.err),
			"",
			m.help.ShortHelpView([]key.Binding{m.keys.Dismiss}),
		))
		return lipgloss.JoinVertical(lipgloss.Left, view, dialog)
	}
	return lipgloss.JoinVertical(lipgloss.Left, view, m.help.View(m.keys))
}
