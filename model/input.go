package model

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/osa-builder/style"
)

// Command describes one slash command for completion and /help.
type Command struct {
	Name  string // "/copy"
	Args  string // "[n]"
	Usage string
}

// InputModel is the prompt bar with history navigation and slash-command
// completion.
//
//   - Up/Down walk through submitted prompts
//   - Tab on a "/" prefix cycles through matching commands
type InputModel struct {
	ti         textinput.Model
	history    []string
	historyIdx int // len(history) when not navigating

	commands   []Command
	tabIdx     int
	tabMatches []string
}

// NewInput returns a ready-to-use InputModel.
func NewInput() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Describe the app you want to build, or type / for commands…"
	ti.CharLimit = 8192
	ti.Prompt = ""
	return InputModel{ti: ti, tabIdx: -1}
}

// SetCommands replaces the command list used for Tab completion.
func (m *InputModel) SetCommands(cmds []Command) {
	m.commands = cmds
}

// SetWidth sets the visible width of the text field.
func (m *InputModel) SetWidth(w int) {
	m.ti.Width = w - 3
}

// SetPlaceholder changes the hint shown in an empty field.
func (m *InputModel) SetPlaceholder(p string) {
	m.ti.Placeholder = p
}

// Focus gives keyboard focus to the input.
func (m *InputModel) Focus() tea.Cmd { return m.ti.Focus() }

// Blur removes keyboard focus from the input.
func (m *InputModel) Blur() { m.ti.Blur() }

// Focused reports whether the field has focus.
func (m InputModel) Focused() bool { return m.ti.Focused() }

// Value returns the current raw text.
func (m InputModel) Value() string { return m.ti.Value() }

// SetValue replaces the text and moves the cursor to the end.
func (m *InputModel) SetValue(s string) {
	m.ti.SetValue(s)
	m.ti.CursorEnd()
}

// Reset clears the field and completion state.
func (m *InputModel) Reset() {
	m.historyIdx = len(m.history)
	m.ti.SetValue("")
	m.resetTab()
}

// Submit records text in history and clears the field. Repeating the
// previous entry does not grow the history.
func (m *InputModel) Submit(text string) {
	if text != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != text) {
		m.history = append(m.history, text)
	}
	m.Reset()
}

func (m *InputModel) resetTab() {
	m.tabIdx = -1
	m.tabMatches = nil
}

// Init satisfies tea.Model.
func (m InputModel) Init() tea.Cmd { return nil }

// Update intercepts Up/Down and Tab before delegating to the textinput.
func (m InputModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := message.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyUp:
			return m.navigateHistory(-1), nil
		case tea.KeyDown:
			return m.navigateHistory(+1), nil
		case tea.KeyTab:
			return m.cycleComplete(), nil
		default:
			m.resetTab()
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(message)
	return m, cmd
}

// View renders the prompt and, while typing a command, its usage line.
func (m InputModel) View() string {
	out := style.PromptChar.Render("❯ ") + m.ti.View()
	if hint := m.hint(); hint != "" {
		out += "\n" + style.Hint.Render("  "+hint)
	}
	return out
}

// hint describes the command being typed when exactly one matches.
func (m InputModel) hint() string {
	v := m.ti.Value()
	if !strings.HasPrefix(v, "/") {
		return ""
	}
	name, _, _ := strings.Cut(v, " ")
	var found *Command
	for i := range m.commands {
		c := &m.commands[i]
		if c.Name == name {
			found = c
			break
		}
		if strings.HasPrefix(c.Name, name) {
			if found != nil {
				return ""
			}
			found = c
		}
	}
	if found == nil {
		return ""
	}
	usage := found.Name
	if found.Args != "" {
		usage += " " + found.Args
	}
	return usage + "  " + found.Usage
}

func (m InputModel) navigateHistory(delta int) InputModel {
	if len(m.history) == 0 {
		return m
	}
	next := m.historyIdx + delta
	switch {
	case next < 0:
		next = 0
	case next > len(m.history):
		next = len(m.history)
	}
	m.historyIdx = next
	if next == len(m.history) {
		m.ti.SetValue("")
	} else {
		m.ti.SetValue(m.history[next])
		m.ti.CursorEnd()
	}
	return m
}

// cycleComplete only activates for a buffer starting with "/".
func (m InputModel) cycleComplete() InputModel {
	current := m.ti.Value()
	if !strings.HasPrefix(current, "/") {
		return m
	}
	if m.tabIdx == -1 || m.tabMatches == nil {
		m.tabMatches = matchCommands(m.commands, current)
		if len(m.tabMatches) == 0 {
			return m
		}
		m.tabIdx = 0
	} else {
		m.tabIdx = (m.tabIdx + 1) % len(m.tabMatches)
	}
	m.ti.SetValue(m.tabMatches[m.tabIdx])
	m.ti.CursorEnd()
	return m
}

// matchCommands returns the sorted names of commands starting with prefix.
func matchCommands(commands []Command, prefix string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c.Name)
		}
	}
	sort.Strings(out)
	return out
}
