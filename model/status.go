package model

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/osa-builder/style"
)

// StatusModel renders the bottom status line.
//
//	● connected · gemini / gemini-2.0-flash · project_planner · session 3f2a…
//	⠋ Thinking… 12s
type StatusModel struct {
	connected bool
	active    bool
	started   time.Time
	spinner   string

	provider  string
	modelName string
	agent     string
	session   string
	project   string
	width     int
}

// NewStatus returns a zero-value StatusModel.
func NewStatus() StatusModel { return StatusModel{} }

// SetProviderInfo stores the model provider and model name.
func (m *StatusModel) SetProviderInfo(provider, modelName string) {
	m.provider = provider
	m.modelName = modelName
}

// SetAgent sets the agent type of the last reply, or the forced agent.
func (m *StatusModel) SetAgent(agent string) { m.agent = agent }

// SetSession sets the active chat session id.
func (m *StatusModel) SetSession(id string) { m.session = id }

// SetProject sets the active project name.
func (m *StatusModel) SetProject(name string) { m.project = name }

// SetConnected records the backend health.
func (m *StatusModel) SetConnected(ok bool) { m.connected = ok }

// SetWidth sets the available width.
func (m *StatusModel) SetWidth(w int) { m.width = w }

// SetActive marks the model as waiting for a reply.
func (m *StatusModel) SetActive(active bool) {
	if active && !m.active {
		m.started = time.Now()
	}
	m.active = active
}

// SetSpinner sets the spinner frame shown while active.
func (m *StatusModel) SetSpinner(frame string) { m.spinner = frame }

// Init satisfies tea.Model.
func (m StatusModel) Init() tea.Cmd { return nil }

// Update satisfies tea.Model. StatusModel is driven by setter calls.
func (m StatusModel) Update(message tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

// View renders the status area.
func (m StatusModel) View() string {
	var lines []string
	if m.active {
		elapsed := time.Since(m.started).Truncate(time.Second)
		lines = append(lines, style.SpinnerStyle.Render(m.spinner)+" "+
			style.StatusAccent.Render("Thinking…")+" "+style.Faint.Render(elapsed.String()))
	}
	lines = append(lines, m.idleLine())
	return strings.Join(lines, "\n")
}

func (m StatusModel) idleLine() string {
	dot := style.ErrorText.Render("○ offline")
	if m.connected {
		dot = style.StatusAccent.Render("● connected")
	}
	parts := []string{dot}

	info := m.provider
	if m.modelName != "" {
		if info != "" {
			info += " / " + m.modelName
		} else {
			info = m.modelName
		}
	}
	if info != "" {
		parts = append(parts, info)
	}
	if m.agent != "" {
		parts = append(parts, m.agent)
	}
	if m.project != "" {
		parts = append(parts, "project "+m.project)
	}
	if m.session != "" {
		parts = append(parts, fmt.Sprintf("session %s", shortID(m.session)))
	}
	return style.StatusBar.Render(strings.Join(parts, " · "))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}
