package attachments

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-builder/style"
)

// Attachment is a local file queued for the next outgoing message.
type Attachment struct {
	Path string
	Name string
	Size int64
	Kind Kind
}

// InfoLine is the line appended to the message body for this file.
func (a Attachment) InfoLine() string {
	return fmt.Sprintf("📎 **File:** %s (%s, %s)", a.Name, TypeLabel(a.Name), HumanSize(a.Size))
}

// Model holds the chips shown above the input and the delete-mode cursor.
type Model struct {
	items        []Attachment
	deleteMode   bool
	deleteCursor int
	width        int
}

// RemovedMsg is sent when a chip is removed in delete mode.
type RemovedMsg struct{ Path string }

// New returns an empty Model.
func New() Model {
	return Model{width: 80}
}

// Add stats path and appends it. Directories and duplicates are rejected.
func (m *Model) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("attachments: resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("attachments: stat %q: %w", abs, err)
	}
	if info.IsDir() {
		return fmt.Errorf("attachments: %q is a directory", abs)
	}
	for _, a := range m.items {
		if a.Path == abs {
			return fmt.Errorf("attachments: %q already attached", abs)
		}
	}
	m.items = append(m.items, Attachment{
		Path: abs,
		Name: filepath.Base(abs),
		Size: info.Size(),
		Kind: KindOf(abs),
	})
	return nil
}

// Remove deletes the chip at idx; out of range is a no-op.
func (m *Model) Remove(idx int) {
	if idx < 0 || idx >= len(m.items) {
		return
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	if m.deleteCursor >= len(m.items) && m.deleteCursor > 0 {
		m.deleteCursor = len(m.items) - 1
	}
	if len(m.items) == 0 {
		m.deleteMode = false
	}
}

// Clear empties the list.
func (m *Model) Clear() {
	m.items = nil
	m.deleteMode = false
	m.deleteCursor = 0
}

func (m *Model) SetWidth(w int) { m.width = w }

func (m Model) Items() []Attachment { return m.items }
func (m Model) Count() int          { return len(m.items) }
func (m Model) IsEmpty() bool       { return len(m.items) == 0 }

// Decorate appends one info line per attachment to body.
func (m Model) Decorate(body string) string {
	if len(m.items) == 0 {
		return body
	}
	lines := make([]string, 0, len(m.items))
	for _, a := range m.items {
		lines = append(lines, a.InfoLine())
	}
	if body == "" {
		return strings.Join(lines, "\n")
	}
	return body + "\n\n" + strings.Join(lines, "\n")
}

// EnterDeleteMode puts the cursor on the first chip. No-op when empty.
func (m *Model) EnterDeleteMode() {
	if len(m.items) == 0 {
		return
	}
	m.deleteMode = true
	m.deleteCursor = 0
}

func (m *Model) ExitDeleteMode()    { m.deleteMode = false }
func (m Model) InDeleteMode() bool { return m.deleteMode }

// Update handles keys while in delete mode:
//
//	left/h, right/l   move
//	enter/x           remove chip under cursor
//	esc               leave delete mode
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.deleteMode || len(m.items) == 0 {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "left", "h":
		if m.deleteCursor > 0 {
			m.deleteCursor--
		}
	case "right", "l":
		if m.deleteCursor < len(m.items)-1 {
			m.deleteCursor++
		}
	case "enter", "x":
		removed := m.items[m.deleteCursor].Path
		m.Remove(m.deleteCursor)
		return m, func() tea.Msg { return RemovedMsg{Path: removed} }
	case "esc":
		m.deleteMode = false
	}
	return m, nil
}

// View renders the chips on one line, or "" when empty.
func (m Model) View() string {
	if len(m.items) == 0 {
		return ""
	}
	chips := make([]string, 0, len(m.items))
	for i, a := range m.items {
		chips = append(chips, m.renderChip(i, a))
	}
	line := style.Faint.Render("  Attachments: ") + strings.Join(chips, " "+style.Faint.Render("|")+" ")
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m Model) renderChip(idx int, a Attachment) string {
	label := fmt.Sprintf("%s %s (%s)", a.Kind.Icon(), truncateName(a.Name, 20), HumanSize(a.Size))

	if !m.deleteMode {
		return style.Faint.Render(label) + " " + style.Faint.Render("×")
	}
	if idx == m.deleteCursor {
		return lipgloss.NewStyle().Foreground(style.Secondary).Bold(true).Render(label) +
			" " + lipgloss.NewStyle().Foreground(style.Error).Bold(true).Render("[x]")
	}
	return style.Faint.Render(label) + " " + style.Faint.Render("[x]")
}

func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}
