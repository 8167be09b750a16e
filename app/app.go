// Package app is the root bubbletea model of the builder TUI.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
	"github.com/miosa/osa-builder/client"
	"github.com/miosa/osa-builder/config"
	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/model"
	"github.com/miosa/osa-builder/msg"
	"github.com/miosa/osa-builder/style"
	"github.com/miosa/osa-builder/tokens"
)

const (
	healthRetry    = 5 * time.Second
	maxMessageSize = 100_000
)

// ProgramReady is sent by main once the tea.Program exists, so background
// timers can post messages into it.
type ProgramReady struct{ Program *tea.Program }

type retryHealth struct{}

// Options configure New.
type Options struct {
	Client     *client.Client
	Config     config.Config
	ProfileDir string
	Clipboard  format.Clipboard
	Tokens     *tokens.Counter
	Log        *zap.Logger
}

// Model is the root tea.Model.
type Model struct {
	banner  model.BannerModel
	chat    model.ChatModel
	input   model.InputModel
	status  model.StatusModel
	toasts  model.ToastsModel
	picker  model.PickerModel
	attach  attachments.Model
	spinner spinner.Model

	state      State
	client     *client.Client
	cfg        config.Config
	profileDir string
	log        *zap.Logger
	keys       KeyMap

	sessionID   string
	projectID   string
	templateID  string
	agents      []client.AgentInfo
	cancel      context.CancelFunc
	width       int
	height      int
	confirmQuit bool
}

// New builds the root model.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	var count func(string) int
	if opts.Tokens != nil {
		count = opts.Tokens.Count
	}

	input := model.NewInput()
	input.SetCommands(commands)

	banner := model.NewBanner()
	banner.SetModel(opts.Config.ModelProvider, opts.Config.ModelName)
	status := model.NewStatus()
	status.SetProviderInfo(opts.Config.ModelProvider, opts.Config.ModelName)
	status.SetAgent(opts.Config.Agent)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.SpinnerStyle

	return Model{
		banner: banner,
		chat: model.NewChat(80, 20, model.ChatOptions{
			Clipboard: opts.Clipboard,
			Log:       log,
			Renderer:  opts.Config.Renderer,
			Tokens:    count,
		}),
		input:      input,
		status:     status,
		toasts:     model.NewToasts(),
		picker:     model.NewPicker(),
		attach:     attachments.New(),
		spinner:    sp,
		state:      StateConnecting,
		client:     opts.Client,
		cfg:        opts.Config,
		profileDir: opts.ProfileDir,
		log:        log,
		keys:       DefaultKeyMap(),
		width:      80,
		height:     24,
	}
}

// State returns the current state.
func (m Model) State() State { return m.state }

// Close stops background timers owned by the chat history.
func (m Model) Close() { m.chat.Close() }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkHealth(), m.input.Focus(), tickCmd(), tea.WindowSize())
}

func (m Model) Update(raw tea.Msg) (tea.Model, tea.Cmd) {
	switch v := raw.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.input.SetWidth(v.Width)
		m.picker.SetWidth(v.Width)
		m.attach.SetWidth(v.Width)
		m.status.SetWidth(v.Width)
		m.chat.SetSize(v.Width, m.chatHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(v)

	case ProgramReady:
		m.chat.SetNotifier(v.Program.Send)
		return m, nil

	case msg.HealthResult:
		return m.handleHealth(v)
	case retryHealth:
		return m, m.checkHealth()

	case msg.SendResult:
		return m.handleSend(v)
	case msg.HistoryResult:
		return m.handleHistory(v)
	case msg.SessionsResult:
		return m.handleSessions(v)
	case msg.ProjectsResult:
		return m.handleProjects(v)
	case msg.ProjectCreated:
		return m.handleProjectCreated(v)
	case msg.TemplatesResult:
		return m.handleTemplates(v)
	case msg.TemplateResult:
		return m.handleTemplate(v)
	case msg.AgentsResult:
		return m.handleAgents(v)
	case msg.ModelsResult:
		return m.handleModels(v)
	case msg.KeysResult:
		return m.handleKeys(v)
	case msg.ExportResult:
		return m.handleExport(v)

	case model.PickerChoice:
		return m.handlePick(v)
	case model.PickerCancel:
		m.state = StateIdle
		m.chat.SetSize(m.width, m.chatHeight())
		return m, m.input.Focus()

	case attachments.RemovedMsg:
		m.toasts.Add("Removed "+v.Path, model.ToastInfo)
		m.chat.SetSize(m.width, m.chatHeight())
		return m, nil

	case msg.CopyExpired:
		updated, cmd := m.chat.Update(v)
		m.chat = updated.(model.ChatModel)
		return m, cmd

	case msg.Copied:
		updated, cmd := m.chat.Update(v)
		m.chat = updated.(model.ChatModel)
		if v.Err != nil {
			m.toasts.Add(v.Err.Error(), model.ToastError)
		} else {
			m.toasts.Add("Copied "+v.Label, model.ToastInfo)
		}
		return m, cmd

	case spinner.TickMsg:
		if m.state != StateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(v)
		m.status.SetSpinner(m.spinner.View())
		return m, cmd

	case msg.TickMsg:
		m.toasts.Tick()
		return m, tickCmd()
	}

	if m.state == StateIdle {
		updated, cmd := m.chat.Update(raw)
		m.chat = updated.(model.ChatModel)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.state == StateConnecting {
		return m.renderConnecting()
	}
	sections := []string{m.banner.View(), m.chat.View()}
	if m.state == StatePicking {
		sections = append(sections, m.picker.View())
	}
	if t := m.toasts.View(m.width); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, m.status.View(), style.Rule(m.width))
	if !m.attach.IsEmpty() {
		sections = append(sections, m.attach.View())
	}
	if m.state != StatePicking {
		sections = append(sections, m.input.View())
	}
	if m.confirmQuit {
		sections = append(sections, "  Press Ctrl+C again to quit, or any key to cancel.")
	}
	return strings.Join(sections, "\n")
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		if key.Matches(k, m.keys.Cancel) {
			m.Close()
			return m, tea.Quit
		}
		m.confirmQuit = false
		return m, nil
	}
	switch m.state {
	case StateIdle:
		return m.handleIdleKey(k)
	case StateProcessing:
		return m.handleProcessingKey(k)
	case StatePicking:
		updated, cmd := m.picker.Update(k)
		m.picker = updated.(model.PickerModel)
		return m, cmd
	case StateConnecting:
		if key.Matches(k, m.keys.Cancel) || key.Matches(k, m.keys.QuitEOF) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleIdleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.attach.InDeleteMode() {
		var cmd tea.Cmd
		m.attach, cmd = m.attach.Update(k)
		if m.attach.IsEmpty() {
			m.attach.ExitDeleteMode()
		}
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.Escape):
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.Cancel):
		if m.input.Value() == "" {
			m.confirmQuit = true
			return m, nil
		}
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			m.Close()
			return m, tea.Quit
		}
	case key.Matches(k, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Submit(text)
		return m.submitInput(text)
	case key.Matches(k, m.keys.CopyCode):
		return m.copyCode(0)
	case key.Matches(k, m.keys.FocusPrev):
		m.chat.MoveFocus(-1)
		return m, nil
	case key.Matches(k, m.keys.FocusNext):
		m.chat.MoveFocus(+1)
		return m, nil
	case key.Matches(k, m.keys.Attachments):
		m.attach.EnterDeleteMode()
		return m, nil
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		updated, cmd := m.chat.Update(k)
		m.chat = updated.(model.ChatModel)
		return m, cmd
	}
	updated, cmd := m.input.Update(k)
	m.input = updated.(model.InputModel)
	m.chat.SetSize(m.width, m.chatHeight())
	return m, cmd
}

func (m Model) handleProcessingKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Cancel), key.Matches(k, m.keys.Escape):
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m = m.stopProcessing()
		m.chat.AddSystemMessage("Request cancelled.")
		return m, m.input.Focus()
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		updated, cmd := m.chat.Update(k)
		m.chat = updated.(model.ChatModel)
		return m, cmd
	case key.Matches(k, m.keys.CopyCode):
		return m.copyCode(0)
	}
	return m, nil
}

// submitPrompt sends text (plus attachment info lines) to the backend.
func (m Model) submitPrompt(text string) (Model, tea.Cmd) {
	body := m.attach.Decorate(text)
	m.chat.AddUserMessage(body)
	m.attach.Clear()

	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = config.Defaults().Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	m.cancel = cancel
	m.state = StateProcessing
	m.status.SetActive(true)
	m.input.Blur()
	m.chat.SetSize(m.width, m.chatHeight())

	req := client.SendMessageRequest{
		SessionID:     m.sessionID,
		Message:       body,
		AgentType:     m.cfg.Agent,
		TemplateID:    m.templateID,
		ModelProvider: m.cfg.ModelProvider,
		ModelName:     m.cfg.ModelName,
	}
	m.templateID = ""
	c := m.client
	send := func() tea.Msg {
		defer cancel()
		resp, err := c.SendMessage(ctx, req)
		return msg.SendResult{Response: resp, Err: err}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m Model) stopProcessing() Model {
	m.state = StateIdle
	m.status.SetActive(false)
	m.chat.SetSize(m.width, m.chatHeight())
	return m
}

func (m Model) handleSend(r msg.SendResult) (Model, tea.Cmd) {
	if m.state != StateProcessing {
		// Reply to a cancelled request.
		return m, nil
	}
	m.cancel = nil
	m = m.stopProcessing()
	if r.Err != nil {
		m.log.Warn("send message failed", zap.Error(r.Err))
		m.chat.AddErrorMessage(fmt.Sprintf("Send failed: %v", r.Err))
		return m, m.input.Focus()
	}
	resp := r.Response
	m.sessionID = resp.SessionID
	m.status.SetSession(resp.SessionID)
	if resp.Message.AgentType != "" {
		m.status.SetAgent(resp.Message.AgentType)
	}
	actions := resp.SuggestedActions
	if len(actions) == 0 {
		actions = resp.Message.SuggestedActions
	}
	m.chat.AddAgentMessage(replyOf(resp.Message, actions))
	m.log.Debug("reply received",
		zap.String("session", resp.SessionID),
		zap.String("agent", resp.Message.AgentType),
		zap.Int("files", len(resp.Message.CreatedFiles())))
	return m, m.input.Focus()
}

func replyOf(cm client.ChatMessage, actions []string) model.AgentReply {
	return model.AgentReply{
		ID:        cm.ID,
		Content:   truncateReply(cm.Content),
		AgentType: cm.AgentType,
		Timestamp: cm.Time(),
		Files:     cm.CreatedFiles(),
		Actions:   actions,
	}
}

const truncatedNotice = "\n\n... (response truncated at 100KB)"

// truncateReply cuts content to maxMessageSize on a rune boundary. A cut that
// leaves a fence or inline code open closes it first, so the notice is never
// part of copyable code.
func truncateReply(content string) string {
	if len(content) <= maxMessageSize {
		return content
	}
	n := maxMessageSize
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}
	cut := content[:n]
	spans := format.Tokenize(cut)
	switch last := spans[len(spans)-1]; {
	case last.Kind == format.SpanCodeBlock && (len(last.Source) < 6 || !strings.HasSuffix(last.Source, "```")):
		if !strings.HasSuffix(cut, "\n") {
			cut += "\n"
		}
		cut += "```"
	case last.Kind == format.SpanInlineCode && !strings.HasSuffix(last.Source, "`"):
		cut += "`"
	}
	return cut + truncatedNotice
}

func (m Model) handleHealth(h msg.HealthResult) (Model, tea.Cmd) {
	if h.Err != nil {
		m.log.Warn("backend unreachable", zap.String("url", m.client.BaseURL), zap.Error(h.Err))
		m.status.SetConnected(false)
		m.state = StateConnecting
		return m, tea.Tick(healthRetry, func(time.Time) tea.Msg { return retryHealth{} })
	}
	m.banner.SetHealth(h)
	m.status.SetConnected(true)
	if m.state == StateConnecting {
		m.state = StateIdle
	}
	m.chat.SetSize(m.width, m.chatHeight())
	return m, m.input.Focus()
}

func (m Model) handleHistory(r msg.HistoryResult) (Model, tea.Cmd) {
	if r.Err != nil {
		if client.IsNotFound(r.Err) {
			m.chat.AddErrorMessage("Session not found: " + r.SessionID)
		} else {
			m.chat.AddErrorMessage(fmt.Sprintf("Load session failed: %v", r.Err))
		}
		return m, nil
	}
	m.chat.Clear()
	m.sessionID = r.SessionID
	m.status.SetSession(r.SessionID)
	for _, cm := range r.Messages {
		if cm.Role == client.RoleUser {
			m.chat.AddUserMessage(cm.Content)
			continue
		}
		m.chat.AddAgentMessage(replyOf(cm, cm.SuggestedActions))
	}
	m.toasts.Add(fmt.Sprintf("Loaded %d messages", len(r.Messages)), model.ToastInfo)
	return m, nil
}

// openPicker switches focus to the picker.
func (m Model) openPicker(kind model.PickerKind, title string, items []model.PickerItem) (Model, tea.Cmd) {
	m.picker.Open(kind, title, items)
	m.state = StatePicking
	m.input.Blur()
	m.chat.SetSize(m.width, m.chatHeight())
	return m, nil
}

func (m Model) handleSessions(r msg.SessionsResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List sessions failed: %v", r.Err))
		return m, nil
	}
	items := make([]model.PickerItem, len(r.Sessions))
	for i, s := range r.Sessions {
		title := s.Title
		if title == "" {
			title = "Untitled chat"
		}
		items[i] = model.PickerItem{
			ID:     s.ID,
			Title:  title,
			Detail: strings.TrimSpace(s.ActiveAgent + " " + s.UpdatedAt),
			Active: s.ID == m.sessionID,
		}
	}
	return m.openPicker(model.PickSession, "Chat sessions", items)
}

func (m Model) handleProjects(r msg.ProjectsResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List projects failed: %v", r.Err))
		return m, nil
	}
	items := make([]model.PickerItem, len(r.Projects))
	for i, p := range r.Projects {
		items[i] = model.PickerItem{
			ID:     p.ID,
			Title:  p.Name,
			Group:  p.Status,
			Detail: fmt.Sprintf("%d%%  %s", p.Progress, strings.Join(p.TechStack, ", ")),
			Active: p.ID == m.projectID,
		}
	}
	return m.openPicker(model.PickProject, "Projects", items)
}

func (m Model) handleProjectCreated(r msg.ProjectCreated) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("Create project failed: %v", r.Err))
		return m, nil
	}
	m.projectID = r.Project.ID
	m.status.SetProject(r.Project.Name)
	m.toasts.Add("Created project "+r.Project.Name, model.ToastInfo)
	return m, nil
}

func (m Model) handleTemplates(r msg.TemplatesResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List templates failed: %v", r.Err))
		return m, nil
	}
	items := make([]model.PickerItem, len(r.Templates))
	for i, t := range r.Templates {
		items[i] = model.PickerItem{
			ID:     t.ID,
			Title:  strings.TrimSpace(t.Icon + " " + t.Name),
			Group:  t.Category,
			Detail: t.Description,
		}
	}
	return m.openPicker(model.PickTemplate, "Templates", items)
}

// handleTemplate seeds the input with the template prompt; the next send
// carries the template id.
func (m Model) handleTemplate(r msg.TemplateResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("Load template failed: %v", r.Err))
		return m, nil
	}
	m.templateID = r.Template.ID
	m.input.SetValue(r.Template.Prompt)
	m.toasts.Add("Template "+r.Template.Name+" loaded, edit and press Enter", model.ToastInfo)
	return m, m.input.Focus()
}

func (m Model) handleAgents(r msg.AgentsResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List agents failed: %v", r.Err))
		return m, nil
	}
	m.agents = r.Agents
	m.banner.SetAgentCount(len(r.Agents))
	items := []model.PickerItem{{ID: "", Title: "auto", Detail: "let the backend choose", Active: m.cfg.Agent == ""}}
	for _, a := range r.Agents {
		items = append(items, model.PickerItem{
			ID:     a.Type,
			Title:  a.Name,
			Detail: a.Specialization,
			Active: a.Type == m.cfg.Agent,
		})
	}
	return m.openPicker(model.PickAgent, "Agents", items)
}

func (m Model) handleModels(r msg.ModelsResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List models failed: %v", r.Err))
		return m, nil
	}
	items := make([]model.PickerItem, len(r.Models))
	for i, mi := range r.Models {
		detail := mi.Description
		if mi.IsFree {
			detail = "free  " + detail
		}
		title := mi.DisplayName
		if title == "" {
			title = mi.Name
		}
		items[i] = model.PickerItem{
			ID:     mi.Provider + "/" + mi.Name,
			Title:  title,
			Group:  mi.Provider,
			Detail: detail,
			Active: mi.Provider == m.cfg.ModelProvider && mi.Name == m.cfg.ModelName,
		}
	}
	return m.openPicker(model.PickModel, "Models", items)
}

func (m Model) handleKeys(r msg.KeysResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("List API keys failed: %v", r.Err))
		return m, nil
	}
	if len(r.Keys) == 0 {
		m.chat.AddSystemMessage("No API keys stored. Add one with /keys add <provider> <key>.")
		return m, nil
	}
	var sb strings.Builder
	sb.WriteString("API keys:")
	for _, k := range r.Keys {
		state := "inactive"
		if k.IsActive {
			state = "active"
		}
		fmt.Fprintf(&sb, "\n  %-10s %s  %s  %s", k.Provider, k.Masked(), state, k.ID)
	}
	m.chat.AddSystemMessage(sb.String())
	return m, nil
}

func (m Model) handleExport(r msg.ExportResult) (Model, tea.Cmd) {
	if r.Err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("Export failed: %v", r.Err))
		return m, nil
	}
	verb := "Committed"
	if r.Result.Created {
		verb = "Initialised repository and committed"
	}
	m.chat.AddSystemMessage(fmt.Sprintf("%s %d file(s) to %s (%s)",
		verb, len(r.Result.Files), r.Result.Dir, shortHash(r.Result.Commit)))
	return m, nil
}

func (m Model) handlePick(c model.PickerChoice) (Model, tea.Cmd) {
	m.state = StateIdle
	m.chat.SetSize(m.width, m.chatHeight())
	focus := m.input.Focus()

	switch c.Kind {
	case model.PickSession:
		return m, tea.Batch(focus, m.loadSession(c.Item.ID))
	case model.PickProject:
		m.projectID = c.Item.ID
		m.status.SetProject(c.Item.Title)
		return m, tea.Batch(focus, m.openProject(c.Item.ID))
	case model.PickTemplate:
		return m, tea.Batch(focus, m.loadTemplate(c.Item.ID))
	case model.PickAgent:
		m = m.setAgent(c.Item.ID)
	case model.PickModel:
		provider, name, _ := strings.Cut(c.Item.ID, "/")
		m = m.setModel(provider, name)
	case model.PickTheme:
		m = m.setTheme(c.Item.ID)
	}
	return m, focus
}

func (m Model) setAgent(agent string) Model {
	m.cfg.Agent = agent
	label := agent
	if label == "" {
		label = "auto"
	}
	m.status.SetAgent(agent)
	m.toasts.Add("Agent: "+label, model.ToastInfo)
	return m.persist()
}

func (m Model) setModel(provider, name string) Model {
	m.cfg.ModelProvider = provider
	m.cfg.ModelName = name
	m.status.SetProviderInfo(provider, name)
	m.banner.SetModel(provider, name)
	m.toasts.Add("Model: "+provider+" / "+name, model.ToastInfo)
	return m.persist()
}

func (m Model) setTheme(name string) Model {
	if !style.SetTheme(name) {
		m.toasts.Add("Unknown theme "+name, model.ToastError)
		return m
	}
	m.cfg.Theme = name
	m.chat.SetSize(m.width, m.chatHeight())
	m.toasts.Add("Theme: "+name, model.ToastInfo)
	return m.persist()
}

// persist writes the config back; a failure only warns.
func (m Model) persist() Model {
	if m.profileDir == "" {
		return m
	}
	if err := config.Save(m.profileDir, m.cfg); err != nil {
		m.log.Warn("save config failed", zap.Error(err))
		m.toasts.Add("Could not save settings", model.ToastWarning)
	}
	return m
}

// chatHeight is what remains after the fixed sections.
func (m Model) chatHeight() int {
	reserved := countLines(m.banner.View()) + countLines(m.status.View()) + 1
	if m.state == StatePicking {
		reserved += countLines(m.picker.View())
	} else {
		reserved += countLines(m.input.View())
	}
	if !m.attach.IsEmpty() {
		reserved += countLines(m.attach.View())
	}
	reserved += m.toasts.Count()
	h := m.height - reserved
	if h < 5 {
		h = 5
	}
	return h
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func (m Model) renderConnecting() string {
	title := style.BannerTitle.Render("  OSA Builder " + model.Version)
	label := lipgloss.NewStyle().Foreground(style.Muted).Render("  Connecting to " + m.client.BaseURL + "…")
	return title + "\n\n" + label
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
