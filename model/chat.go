package model

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/markdown"
	"github.com/miosa/osa-builder/msg"
	"github.com/miosa/osa-builder/style"
)

// messageRole identifies who sent a message.
type messageRole int

const (
	roleUser messageRole = iota
	roleAgent
	roleSystem
	roleError
)

// ChatMessage is a single entry in the conversation history. Agent messages
// own a tracker holding the copy and expand state of their segments.
type ChatMessage struct {
	ID        string
	Role      messageRole
	Content   string
	AgentType string
	Timestamp time.Time
	Segments  []format.Segment
	Files     []attachments.File
	Actions   []string

	tracker *format.Tracker
}

// AgentReply is the data needed to append an agent message.
type AgentReply struct {
	ID        string
	Content   string
	AgentType string
	Timestamp time.Time
	Files     []attachments.File
	Actions   []string
}

// blockRef addresses one code block in the history.
type blockRef struct {
	msg int
	id  string
}

// ChatModel is a scrollable viewport that displays conversation history.
type ChatModel struct {
	vp       viewport.Model
	messages []ChatMessage
	width    int
	height   int

	clip     format.Clipboard
	log      *zap.Logger
	renderer string
	tokens   func(string) int
	notify   *notifier

	focus    blockRef
	hasFocus bool
}

// ChatOptions configure NewChat.
type ChatOptions struct {
	Clipboard format.Clipboard
	Log       *zap.Logger
	Renderer  string           // "native" or "glamour"
	Tokens    func(string) int // optional token badge on code blocks
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int, opts ChatOptions) ChatModel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return ChatModel{
		vp:       vp,
		width:    width,
		height:   height,
		clip:     opts.Clipboard,
		log:      log,
		renderer: opts.Renderer,
		tokens:   opts.Tokens,
		notify:   &notifier{},
	}
}

// notifier is shared by every copy of a ChatModel so tracker timers reach
// the program registered last.
type notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (n *notifier) set(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *notifier) expired(id string) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(msg.CopyExpired{ID: id})
	}
}

// SetNotifier registers the function used to deliver msg.CopyExpired from
// tracker timers back into the program.
func (m *ChatModel) SetNotifier(send func(tea.Msg)) {
	m.notify.set(send)
}

// SetRenderer switches between the native and glamour renderers.
func (m *ChatModel) SetRenderer(name string) {
	m.renderer = name
	m.refresh()
}

// AddUserMessage appends a user-role message and scrolls to the bottom.
func (m *ChatModel) AddUserMessage(text string) {
	m.messages = append(m.messages, ChatMessage{
		ID:        uuid.NewString(),
		Role:      roleUser,
		Content:   text,
		Timestamp: time.Now(),
		Segments:  format.Format(text),
	})
	m.refresh()
}

// AddAgentMessage appends an agent reply and focuses its last code block.
func (m *ChatModel) AddAgentMessage(r AgentReply) {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	cm := ChatMessage{
		ID:        id,
		Role:      roleAgent,
		Content:   r.Content,
		AgentType: r.AgentType,
		Timestamp: ts,
		Segments:  format.Format(r.Content),
		Files:     r.Files,
		Actions:   r.Actions,
	}
	cm.tracker = format.NewTracker(m.clip,
		format.WithLogger(m.log.With(zap.String("message", id))),
		format.WithOnExpire(m.notify.expired),
	)
	m.messages = append(m.messages, cm)

	if blocks := format.CodeBlocks(spansOf(cm.Segments)); len(blocks) > 0 {
		m.focus = blockRef{msg: len(m.messages) - 1, id: blocks[len(blocks)-1].ID}
		m.hasFocus = true
	}
	m.refresh()
}

// AddSystemMessage appends a dimmed system-role message.
func (m *ChatModel) AddSystemMessage(text string) {
	m.messages = append(m.messages, ChatMessage{Role: roleSystem, Content: text, Timestamp: time.Now()})
	m.refresh()
}

// AddErrorMessage appends an error line.
func (m *ChatModel) AddErrorMessage(text string) {
	m.messages = append(m.messages, ChatMessage{Role: roleError, Content: text, Timestamp: time.Now()})
	m.refresh()
}

// Clear drops the history and stops every tracker.
func (m *ChatModel) Clear() {
	m.Close()
	m.messages = nil
	m.hasFocus = false
	m.refresh()
}

// Close stops pending copy timers of all messages.
func (m *ChatModel) Close() {
	for _, cm := range m.messages {
		if cm.tracker != nil {
			cm.tracker.Close()
		}
	}
}

// MessageCount returns the number of history entries.
func (m ChatModel) MessageCount() int { return len(m.messages) }

// lastAgent returns the index of the newest agent message, or -1.
func (m ChatModel) lastAgent() int {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == roleAgent {
			return i
		}
	}
	return -1
}

// allBlocks lists every code block of every agent message in order.
func (m ChatModel) allBlocks() []blockRef {
	var refs []blockRef
	for i, cm := range m.messages {
		if cm.Role != roleAgent {
			continue
		}
		for _, b := range format.CodeBlocks(spansOf(cm.Segments)) {
			refs = append(refs, blockRef{msg: i, id: b.ID})
		}
	}
	return refs
}

// MoveFocus moves code block focus by delta (-1 older, +1 newer) across the
// whole history. It reports whether any block exists.
func (m *ChatModel) MoveFocus(delta int) bool {
	refs := m.allBlocks()
	if len(refs) == 0 {
		return false
	}
	cur := len(refs) - 1
	if m.hasFocus {
		for i, r := range refs {
			if r == m.focus {
				cur = i
				break
			}
		}
		cur += delta
	}
	if cur < 0 {
		cur = 0
	}
	if cur >= len(refs) {
		cur = len(refs) - 1
	}
	m.focus = refs[cur]
	m.hasFocus = true
	m.refresh()
	return true
}

// CopyFocused copies the focused code block. The write runs in the returned
// command, which reports msg.Copied.
func (m *ChatModel) CopyFocused() (tea.Cmd, error) {
	if !m.hasFocus && !m.MoveFocus(0) {
		return nil, fmt.Errorf("no code blocks to copy")
	}
	return m.copyBlock(m.focus)
}

// CopyBlock copies the n-th (1-based) code block of the newest agent message
// that has code blocks.
func (m *ChatModel) CopyBlock(n int) (tea.Cmd, error) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role != roleAgent {
			continue
		}
		blocks := format.CodeBlocks(spansOf(m.messages[i].Segments))
		if len(blocks) == 0 {
			continue
		}
		if n < 1 || n > len(blocks) {
			return nil, fmt.Errorf("code block %d out of range (1-%d)", n, len(blocks))
		}
		ref := blockRef{msg: i, id: blocks[n-1].ID}
		m.focus, m.hasFocus = ref, true
		return m.copyBlock(ref)
	}
	return nil, fmt.Errorf("no code blocks to copy")
}

func (m *ChatModel) copyBlock(ref blockRef) (tea.Cmd, error) {
	if ref.msg < 0 || ref.msg >= len(m.messages) {
		return nil, fmt.Errorf("no code blocks to copy")
	}
	cm := m.messages[ref.msg]
	for _, s := range cm.Segments {
		if s.ID != ref.id {
			continue
		}
		m.refresh()
		return m.copyCmd(cm.tracker, s.ID, s.Language+" code block", s.Content)
	}
	return nil, fmt.Errorf("code block %s not found", ref.id)
}

// copyCmd writes text off the update loop. A native clipboard may shell out
// to xclip or pbcopy, which must not stall rendering.
func (m *ChatModel) copyCmd(tr *format.Tracker, id, label, text string) (tea.Cmd, error) {
	if m.clip == nil {
		return nil, fmt.Errorf("clipboard unavailable")
	}
	clip, log := m.clip, m.log
	return func() tea.Msg {
		err := clip.WriteText(text)
		if err != nil {
			log.Warn("copy segment failed", zap.String("segment", id), zap.Error(err))
			err = fmt.Errorf("clipboard unavailable: %w", err)
		}
		return msg.Copied{Tracker: tr, ID: id, Label: label, Err: err}
	}, nil
}

// Files returns the created files of the newest agent message that has any.
func (m ChatModel) Files() ([]attachments.File, int) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == roleAgent && len(m.messages[i].Files) > 0 {
			return m.messages[i].Files, i
		}
	}
	return nil, -1
}

// AllFiles returns every created file in the session, oldest first.
func (m ChatModel) AllFiles() []attachments.File {
	var out []attachments.File
	for _, cm := range m.messages {
		out = append(out, cm.Files...)
	}
	return out
}

// fileAt resolves a 1-based file number against the newest file list.
func (m ChatModel) fileAt(n int) (attachments.File, int, *format.Tracker, error) {
	files, idx := m.Files()
	if idx < 0 {
		return attachments.File{}, 0, nil, fmt.Errorf("no created files")
	}
	if n < 1 || n > len(files) {
		return attachments.File{}, 0, nil, fmt.Errorf("file %d out of range (1-%d)", n, len(files))
	}
	return files[n-1], n - 1, m.messages[idx].tracker, nil
}

// ToggleFile expands or collapses the n-th created file.
func (m *ChatModel) ToggleFile(n int) (bool, error) {
	_, i, tr, err := m.fileAt(n)
	if err != nil {
		return false, err
	}
	tr.ToggleExpanded(i)
	m.refresh()
	return tr.IsExpanded(i), nil
}

// CopyFile copies the content of the n-th created file.
func (m *ChatModel) CopyFile(n int) (tea.Cmd, error) {
	f, i, tr, err := m.fileAt(n)
	if err != nil {
		return nil, err
	}
	if f.Content == "" {
		return nil, fmt.Errorf("%s has no content", f.DisplayName(i))
	}
	return m.copyCmd(tr, attachments.ID(i), f.DisplayName(i), f.Content)
}

// File returns the n-th created file and its index.
func (m ChatModel) File(n int) (attachments.File, int, error) {
	f, i, _, err := m.fileAt(n)
	return f, i, err
}

// Action returns the n-th (1-based) suggested action of the newest agent
// message.
func (m ChatModel) Action(n int) (string, error) {
	i := m.lastAgent()
	if i < 0 || len(m.messages[i].Actions) == 0 {
		return "", fmt.Errorf("no suggested actions")
	}
	acts := m.messages[i].Actions
	if n < 1 || n > len(acts) {
		return "", fmt.Errorf("action %d out of range (1-%d)", n, len(acts))
	}
	return acts[n-1], nil
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update forwards keyboard and mouse events to the viewport and re-renders
// when a copy finishes or its confirmation expires.
func (m ChatModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch v := message.(type) {
	case msg.CopyExpired:
		m.rerender()
		return m, nil
	case msg.Copied:
		if v.Err == nil && v.Tracker != nil {
			v.Tracker.MarkCopied(v.ID)
		}
		m.rerender()
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(message)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

// refresh re-renders all messages and scrolls to the bottom.
func (m *ChatModel) refresh() {
	m.vp.SetContent(m.renderAll())
	m.vp.GotoBottom()
}

// rerender updates content without moving the scroll position.
func (m *ChatModel) rerender() {
	off := m.vp.YOffset
	m.vp.SetContent(m.renderAll())
	m.vp.SetYOffset(off)
}

// renderAll builds the full string of all rendered messages.
func (m *ChatModel) renderAll() string {
	if len(m.messages) == 0 {
		return style.Faint.Render("  No messages yet. Describe the app you want to build.")
	}
	last := m.lastAgent()
	var sb strings.Builder
	for i, cm := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(i, cm, i == last))
	}
	return sb.String()
}

func (m *ChatModel) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// renderMessage converts a single ChatMessage to a display string.
func (m *ChatModel) renderMessage(i int, cm ChatMessage, newest bool) string {
	switch cm.Role {
	case roleUser:
		label := style.UserLabel.Render("❯ You") + style.MsgMeta.Render("  "+cm.Timestamp.Format("15:04"))
		body := markdown.Segments(cm.Segments, markdown.Options{Width: m.contentWidth()})
		return style.UserBlock.Render(label + "\n" + body)

	case roleAgent:
		label := style.AgentLabel.Render("◈ Builder")
		if cm.AgentType != "" {
			label += style.AgentBadge.Render(" [" + cm.AgentType + "]")
		}
		label += style.MsgMeta.Render("  " + cm.Timestamp.Format("15:04"))
		opts := markdown.Options{Width: m.contentWidth(), State: cm.tracker, Tokens: m.tokens}
		if m.hasFocus && m.focus.msg == i {
			opts.Focused = m.focus.id
		}
		parts := []string{label, markdown.Message(m.renderer, cm.Segments, opts)}
		if len(cm.Files) > 0 {
			parts = append(parts, renderFiles(cm.Files, cm.tracker, m.contentWidth()))
		}
		if newest && len(cm.Actions) > 0 {
			parts = append(parts, renderActions(cm.Actions))
		}
		return style.AgentBlock.Render(strings.Join(parts, "\n"))

	case roleError:
		return style.ErrorBlock.Render(cm.Content)

	default:
		return style.SystemBlock.Render(cm.Content)
	}
}

func renderActions(actions []string) string {
	lines := []string{style.Faint.Render("Suggested next steps (/do <n>):")}
	for i, a := range actions {
		lines = append(lines, style.SuggestionIndex.Render(fmt.Sprintf("  %d. ", i+1))+style.Suggestion.Render(a))
	}
	return strings.Join(lines, "\n")
}

func spansOf(segs []format.Segment) []format.Span {
	out := make([]format.Span, len(segs))
	for i, s := range segs {
		out[i] = s.Span
	}
	return out
}
