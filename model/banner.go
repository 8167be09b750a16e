package model

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-builder/msg"
	"github.com/miosa/osa-builder/style"
)

// Version is the builder version shown in the banner.
var Version = "v0.4.0"

// BannerModel renders the one-line startup banner:
//
//	OSA Builder v0.4.0 · gemini / gemini-2.0-flash · 9 agents
type BannerModel struct {
	provider string
	model    string
	agents   int
	status   string
}

// NewBanner returns an empty BannerModel.
func NewBanner() BannerModel { return BannerModel{} }

// SetHealth populates the banner from the health check.
func (m *BannerModel) SetHealth(h msg.HealthResult) {
	m.status = h.Status
	if h.Agents > 0 {
		m.agents = h.Agents
	}
}

// SetModel sets the provider and model shown in the banner.
func (m *BannerModel) SetModel(provider, name string) {
	m.provider = provider
	m.model = name
}

// SetAgentCount sets the number of available agents.
func (m *BannerModel) SetAgentCount(n int) { m.agents = n }

// Init satisfies tea.Model.
func (m BannerModel) Init() tea.Cmd { return nil }

// Update satisfies tea.Model. The banner is static.
func (m BannerModel) Update(message tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

// View renders the banner line.
func (m BannerModel) View() string {
	muted := lipgloss.NewStyle().Foreground(style.Muted)
	primary := lipgloss.NewStyle().Foreground(style.Primary)
	sep := muted.Render(" · ")

	out := style.BannerTitle.Render("OSA Builder "+Version) + sep +
		style.BannerDetail.Render(m.provider) + muted.Render(" / ") + primary.Render(m.model)
	if m.agents > 0 {
		out += sep + style.BannerDetail.Render(fmt.Sprintf("%d agents", m.agents))
	}
	if m.status != "" && m.status != "healthy" {
		out += sep + style.ErrorText.Render(m.status)
	}
	return out
}
