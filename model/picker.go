package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-builder/style"
)

// PickerKind names what a picker selects.
type PickerKind string

const (
	PickAgent    PickerKind = "agent"
	PickModel    PickerKind = "model"
	PickTemplate PickerKind = "template"
	PickSession  PickerKind = "session"
	PickProject  PickerKind = "project"
	PickTheme    PickerKind = "theme"
)

// PickerItem is a single entry in a picker.
type PickerItem struct {
	ID     string // value returned on selection
	Title  string
	Group  string // optional section header, e.g. a model provider
	Detail string // muted text after the title
	Active bool
}

// PickerChoice is emitted when the user selects an item.
type PickerChoice struct {
	Kind PickerKind
	Item PickerItem
}

// PickerCancel is emitted when the user presses Esc.
type PickerCancel struct {
	Kind PickerKind
}

// PickerModel renders a vertical, paged list with arrow-key navigation.
type PickerModel struct {
	kind     PickerKind
	title    string
	items    []PickerItem
	cursor   int
	active   bool
	width    int
	offset   int
	pageSize int
}

// NewPicker returns an inactive PickerModel.
func NewPicker() PickerModel {
	return PickerModel{pageSize: 12}
}

// Open populates the picker and activates it with the cursor on the active
// item.
func (m *PickerModel) Open(kind PickerKind, title string, items []PickerItem) {
	m.kind = kind
	m.title = title
	m.items = items
	m.cursor = 0
	m.offset = 0
	m.active = true
	for i, item := range items {
		if item.Active {
			m.cursor = i
			m.scrollTo()
			break
		}
	}
}

func (m *PickerModel) scrollTo() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
}

// Clear deactivates the picker.
func (m *PickerModel) Clear() {
	m.active = false
	m.items = nil
	m.cursor = 0
	m.offset = 0
}

// IsActive reports whether the picker is visible.
func (m PickerModel) IsActive() bool { return m.active }

// Kind returns what the open picker selects.
func (m PickerModel) Kind() PickerKind { return m.kind }

// SetWidth constrains the picker to the terminal width.
func (m *PickerModel) SetWidth(w int) { m.width = w }

// Init satisfies tea.Model.
func (m PickerModel) Init() tea.Cmd { return nil }

// Update handles keys while the picker is active. Up and Down wrap.
func (m PickerModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	km, ok := message.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	kind := m.kind

	switch km.String() {
	case "up", "k":
		if len(m.items) == 0 {
			break
		}
		m.cursor--
		if m.cursor < 0 {
			m.cursor = len(m.items) - 1
		}
		m.scrollTo()

	case "down", "j":
		if len(m.items) == 0 {
			break
		}
		m.cursor = (m.cursor + 1) % len(m.items)
		m.scrollTo()

	case "enter":
		if len(m.items) == 0 {
			break
		}
		item := m.items[m.cursor]
		m.Clear()
		return m, func() tea.Msg { return PickerChoice{Kind: kind, Item: item} }

	case "esc", "q":
		m.Clear()
		return m, func() tea.Msg { return PickerCancel{Kind: kind} }
	}
	return m, nil
}

// View renders the picker panel.
func (m PickerModel) View() string {
	if !m.active {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(style.Muted)

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("◈ " + m.title))
	sb.WriteString(muted.Render("  ↑↓ navigate · Enter select · Esc cancel") + "\n\n")

	if len(m.items) == 0 {
		sb.WriteString(muted.Render(fmt.Sprintf("  No %ss available", m.kind)))
		return m.box(sb.String())
	}

	end := m.offset + m.pageSize
	if end > len(m.items) {
		end = len(m.items)
	}
	if m.offset > 0 {
		sb.WriteString(muted.Render("  ↑ more above") + "\n")
	}
	lastGroup := ""
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		if item.Group != "" && item.Group != lastGroup {
			lastGroup = item.Group
			sb.WriteString(lipgloss.NewStyle().Foreground(style.Secondary).Bold(true).Render("  "+item.Group) + "\n")
		}
		sb.WriteString(renderPickerItem(item, i == m.cursor) + "\n")
	}
	if end < len(m.items) {
		sb.WriteString(muted.Render("  ↓ more below") + "\n")
	}
	sb.WriteString(muted.Render(fmt.Sprintf("\n  %d %s(s)", len(m.items), m.kind)))
	return m.box(sb.String())
}

func (m PickerModel) box(s string) string {
	b := style.PickerBorder
	if m.width > 0 {
		b = b.Width(m.width - 2)
	}
	return b.Render(s)
}

func renderPickerItem(item PickerItem, isCursor bool) string {
	cursor := "    "
	name := style.PickerUnselected.Render(item.Title)
	if isCursor {
		cursor = lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("  > ")
		name = style.PickerSelected.Render(item.Title)
	}
	marker := lipgloss.NewStyle().Foreground(style.Muted).Render("○")
	if item.Active {
		marker = lipgloss.NewStyle().Foreground(style.Success).Render("●")
	}
	line := cursor + marker + " " + name
	if item.Detail != "" {
		line += lipgloss.NewStyle().Foreground(style.Muted).Render("  " + item.Detail)
	}
	return line
}
