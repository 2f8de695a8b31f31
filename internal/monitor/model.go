// Package monitor is a read-only status TUI, adapted from
// go-sequence/tui's bubbletea Model and go-sequence/theme's lipgloss
// styling. It is deliberately observation-only: it exposes no control
// surface over the bridge, distinguishing it from the operator-driven
// grid controller UI it is adapted from and keeping it inside the
// core's actual, narrower scope.
package monitor

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/El-Habanero12/aria/internal/bridge"
)

var (
	styleLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	stylePlay  = lipgloss.NewStyle().Foreground(lipgloss.Color("83")).Bold(true)
	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(0, 1)
)

const pollEvery = 200 * time.Millisecond

type tickMsg struct{}

// Model is the bubbletea model driving the status view.
type Model struct {
	controller *bridge.Controller
	quitting   bool
	status     bridge.Status
}

// New returns a Model observing controller.
func New(controller *bridge.Controller) Model {
	return Model{controller: controller}
}

func poll() tea.Cmd {
	return tea.Tick(pollEvery, func(time.Time) tea.Msg { return tickMsg{} })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return poll()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		m.status = m.controller.Status()
		return m, poll()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	phaseStyle := styleValue
	if m.status.Phase == bridge.PhasePlay {
		phaseStyle = stylePlay
	}

	anchor := "unset"
	if m.status.AnchorSet {
		anchor = fmt.Sprintf("%d", m.status.Anchor)
	}

	lines := []string{
		styleTitle.Render("aria-bridge"),
		"",
		row("phase", phaseStyle.Render(m.status.Phase.String())),
		row("pulse", styleValue.Render(fmt.Sprintf("%d", m.status.CurrentPulse))),
		row("anchor", styleValue.Render(anchor)),
		row("queue depth", styleValue.Render(fmt.Sprintf("%d", m.status.QueueSize))),
		row("pending job", styleValue.Render(fmt.Sprintf("%v", m.status.PendingJob))),
		"",
		styleLabel.Render("q to quit (monitor only, no controls)"),
	}

	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func row(label, value string) string {
	return styleLabel.Render(fmt.Sprintf("%-14s", label)) + value
}
