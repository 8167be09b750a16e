package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
	"github.com/miosa/osa-builder/client"
	"github.com/miosa/osa-builder/config"
	"github.com/miosa/osa-builder/export"
	"github.com/miosa/osa-builder/model"
	"github.com/miosa/osa-builder/msg"
	"github.com/miosa/osa-builder/style"
)

const requestTimeout = 30 * time.Second

// commands drives Tab completion and /help.
var commands = []model.Command{
	{Name: "/help", Usage: "show commands and keys"},
	{Name: "/new", Usage: "start a new chat session"},
	{Name: "/sessions", Usage: "pick a previous session"},
	{Name: "/session", Args: "<id>", Usage: "load a session's history"},
	{Name: "/do", Args: "<n>", Usage: "send suggested action n"},
	{Name: "/agent", Args: "[type|auto]", Usage: "choose the agent for new messages"},
	{Name: "/model", Args: "[provider/name]", Usage: "choose the model"},
	{Name: "/theme", Args: "[name]", Usage: "switch color theme"},
	{Name: "/renderer", Args: "<native|glamour>", Usage: "switch message renderer"},
	{Name: "/projects", Usage: "pick a project"},
	{Name: "/project", Args: "new <name> | <description>", Usage: "create a project"},
	{Name: "/templates", Usage: "pick a starter template"},
	{Name: "/template", Args: "<id>", Usage: "load a template prompt"},
	{Name: "/keys", Args: "[add <provider> <key> | rm <id>]", Usage: "manage provider API keys"},
	{Name: "/attach", Args: "<path>", Usage: "attach a file to the next message"},
	{Name: "/files", Usage: "list files created in this session"},
	{Name: "/expand", Args: "<n>", Usage: "expand or collapse created file n"},
	{Name: "/copyfile", Args: "<n>", Usage: "copy created file n"},
	{Name: "/save", Args: "<n> [dir]", Usage: "write created file n to disk"},
	{Name: "/export", Args: "<dir>", Usage: "save all created files and commit them"},
	{Name: "/copy", Args: "[n]", Usage: "copy code block n, or the focused one"},
	{Name: "/clear", Usage: "clear the screen"},
	{Name: "/quit", Usage: "exit"},
}

// submitInput dispatches a submitted line: slash commands run locally, any
// other text is sent to the assistant.
func (m Model) submitInput(text string) (Model, tea.Cmd) {
	if !strings.HasPrefix(text, "/") {
		return m.submitPrompt(text)
	}
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	m.log.Debug("command", zap.String("name", name))

	switch name {
	case "/quit", "/exit":
		m.Close()
		return m, tea.Quit
	case "/help":
		m.chat.AddSystemMessage(m.helpText())
	case "/clear":
		m.chat.Clear()
	case "/new":
		m.chat.Clear()
		m.sessionID = ""
		m.status.SetSession("")
		m.toasts.Add("New session", model.ToastInfo)
	case "/sessions":
		return m, m.listSessions()
	case "/session":
		if arg == "" {
			m.chat.AddSystemMessage("Current session: " + orNone(m.sessionID))
			return m, nil
		}
		return m, m.loadSession(arg)
	case "/do":
		return m.doAction(arg)
	case "/agent":
		switch arg {
		case "":
			return m, m.listAgents()
		case "auto":
			m = m.setAgent("")
		default:
			m = m.setAgent(arg)
		}
	case "/model":
		if arg == "" {
			return m, m.listModels()
		}
		provider, name, ok := strings.Cut(arg, "/")
		if !ok || provider == "" || name == "" {
			m.chat.AddErrorMessage("Usage: /model <provider>/<name>")
			return m, nil
		}
		m = m.setModel(provider, name)
	case "/theme":
		if arg == "" {
			return m.openPicker(model.PickTheme, "Themes", themeItems())
		}
		m = m.setTheme(arg)
	case "/renderer":
		if arg != config.RendererNative && arg != config.RendererGlamour {
			m.chat.AddErrorMessage("Usage: /renderer <native|glamour>")
			return m, nil
		}
		m.cfg.Renderer = arg
		m.chat.SetRenderer(arg)
		m = m.persist()
	case "/projects":
		return m, m.listProjects()
	case "/project":
		return m.projectCommand(arg)
	case "/templates":
		return m, m.listTemplates()
	case "/template":
		if arg == "" {
			return m, m.listTemplates()
		}
		return m, m.loadTemplate(arg)
	case "/keys":
		return m.keysCommand(arg)
	case "/attach":
		if arg == "" {
			m.chat.AddErrorMessage("Usage: /attach <path>")
			return m, nil
		}
		if err := m.attach.Add(arg); err != nil {
			m.chat.AddErrorMessage(err.Error())
			return m, nil
		}
		m.chat.SetSize(m.width, m.chatHeight())
	case "/files":
		m.chat.AddSystemMessage(filesText(m.chat.AllFiles()))
	case "/expand":
		n, err := number(arg)
		if err == nil {
			_, err = m.chat.ToggleFile(n)
		}
		if err != nil {
			m.chat.AddErrorMessage(err.Error())
		}
	case "/copyfile":
		n, err := number(arg)
		if err != nil {
			m.chat.AddErrorMessage(err.Error())
			return m, nil
		}
		cmd, err := m.chat.CopyFile(n)
		if err != nil {
			m.toasts.Add(err.Error(), model.ToastError)
			return m, nil
		}
		return m, cmd
	case "/save":
		return m.saveFile(arg)
	case "/export":
		return m.exportFiles(arg)
	case "/copy":
		n := 0
		if arg != "" {
			var err error
			if n, err = number(arg); err != nil {
				m.chat.AddErrorMessage(err.Error())
				return m, nil
			}
		}
		return m.copyCode(n)
	default:
		m.chat.AddErrorMessage("Unknown command " + name + ". Type /help for the list.")
	}
	return m, nil
}

// copyCode copies block n of the newest reply, or the focused block when n
// is zero. The confirmation toast follows msg.Copied.
func (m Model) copyCode(n int) (Model, tea.Cmd) {
	var (
		cmd tea.Cmd
		err error
	)
	if n == 0 {
		cmd, err = m.chat.CopyFocused()
	} else {
		cmd, err = m.chat.CopyBlock(n)
	}
	if err != nil {
		m.toasts.Add(err.Error(), model.ToastError)
		return m, nil
	}
	return m, cmd
}

func (m Model) doAction(arg string) (Model, tea.Cmd) {
	n, err := number(arg)
	if err != nil {
		m.chat.AddErrorMessage(err.Error())
		return m, nil
	}
	action, err := m.chat.Action(n)
	if err != nil {
		m.chat.AddErrorMessage(err.Error())
		return m, nil
	}
	return m.submitPrompt(action)
}

func (m Model) projectCommand(arg string) (Model, tea.Cmd) {
	rest, ok := strings.CutPrefix(arg, "new ")
	if !ok {
		m.chat.AddErrorMessage("Usage: /project new <name> | <description>")
		return m, nil
	}
	name, desc, _ := strings.Cut(rest, "|")
	name, desc = strings.TrimSpace(name), strings.TrimSpace(desc)
	if name == "" {
		m.chat.AddErrorMessage("Project name is required")
		return m, nil
	}
	req := client.CreateProjectRequest{Name: name, Description: desc, TemplateID: m.templateID}
	c := m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := c.CreateProject(ctx, req)
		return msg.ProjectCreated{Project: p, Err: err}
	}
}

func (m Model) keysCommand(arg string) (Model, tea.Cmd) {
	fields := strings.Fields(arg)
	c := m.client
	switch {
	case len(fields) == 0:
		return m, m.listKeys()

	case fields[0] == "add":
		if len(fields) < 3 {
			m.chat.AddErrorMessage("Usage: /keys add <provider> <key> [display name]")
			return m, nil
		}
		req := client.CreateAPIKeyRequest{Provider: fields[1], Key: fields[2], DisplayName: strings.Join(fields[3:], " ")}
		if err := client.ValidateAPIKey(req.Provider, req.Key); err != nil {
			m.chat.AddErrorMessage(err.Error())
			return m, nil
		}
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if _, err := c.CreateAPIKey(ctx, req); err != nil {
				return msg.KeysResult{Err: err}
			}
			keys, err := c.ListAPIKeys(ctx)
			return msg.KeysResult{Keys: keys, Err: err}
		}

	case fields[0] == "rm" && len(fields) == 2:
		id := fields[1]
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := c.DeleteAPIKey(ctx, id); err != nil {
				return msg.KeysResult{Err: err}
			}
			keys, err := c.ListAPIKeys(ctx)
			return msg.KeysResult{Keys: keys, Err: err}
		}
	}
	m.chat.AddErrorMessage("Usage: /keys [add <provider> <key> | rm <id>]")
	return m, nil
}

// saveFile writes created file n into dir (default: the working directory).
func (m Model) saveFile(arg string) (Model, tea.Cmd) {
	num, dir, _ := strings.Cut(arg, " ")
	n, err := number(num)
	if err != nil {
		m.chat.AddErrorMessage(err.Error())
		return m, nil
	}
	f, i, err := m.chat.File(n)
	if err != nil {
		m.chat.AddErrorMessage(err.Error())
		return m, nil
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	path, err := attachments.Save(dir, f, i)
	if err != nil {
		m.chat.AddErrorMessage(fmt.Sprintf("Save failed: %v", err))
		return m, nil
	}
	m.toasts.Add("Saved "+path, model.ToastInfo)
	return m, nil
}

func (m Model) exportFiles(dir string) (Model, tea.Cmd) {
	if dir == "" {
		m.chat.AddErrorMessage("Usage: /export <dir>")
		return m, nil
	}
	files := m.chat.AllFiles()
	opts := export.Options{
		AuthorName:  m.cfg.Export.AuthorName,
		AuthorEmail: m.cfg.Export.AuthorEmail,
	}
	if m.sessionID != "" {
		opts.Message = fmt.Sprintf("Export session %s (%d files)", m.sessionID, len(files))
	}
	log := m.log
	return m, func() tea.Msg {
		res, err := export.Export(dir, files, opts, log)
		return msg.ExportResult{Result: res, Err: err}
	}
}

func (m Model) helpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, c := range commands {
		usage := c.Name
		if c.Args != "" {
			usage += " " + c.Args
		}
		fmt.Fprintf(&sb, "\n  %-42s %s", usage, c.Usage)
	}
	sb.WriteString("\n\nKeys:")
	for _, b := range m.keys.bindings() {
		h := b.Help()
		fmt.Fprintf(&sb, "\n  %-12s %s", h.Key, h.Desc)
	}
	return sb.String()
}

func filesText(files []attachments.File) string {
	if len(files) == 0 {
		return "No files created in this session yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Created files (%d):", len(files))
	for i, f := range files {
		name := f.DisplayName(i)
		fmt.Fprintf(&sb, "\n  %s %s  %s", attachments.KindOf(name).Icon(), name, attachments.TypeLabel(name))
		if f.Content != "" {
			fmt.Fprintf(&sb, ", %s", attachments.HumanSize(f.Size()))
		}
	}
	return sb.String()
}

func themeItems() []model.PickerItem {
	items := make([]model.PickerItem, len(style.ThemeNames))
	for i, n := range style.ThemeNames {
		items[i] = model.PickerItem{ID: n, Title: n, Active: n == style.CurrentThemeName}
	}
	return items
}

func number(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive number, got %q", s)
	}
	return n, nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// -- backend commands --

func (m Model) checkHealth() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		h, err := c.Health(ctx)
		if err != nil {
			return msg.HealthResult{Err: err}
		}
		r := msg.HealthResult{Status: h.Status}
		if agents, err := c.ListAgents(ctx); err == nil {
			r.Agents = len(agents)
		}
		return r
	}
}

func (m Model) loadSession(id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msgs, err := c.SessionMessages(ctx, id)
		return msg.HistoryResult{SessionID: id, Messages: msgs, Err: err}
	}
}

// openProject loads the chat attached to a project, if it has one.
func (m Model) openProject(id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := c.GetProject(ctx, id)
		if err != nil {
			return msg.HistoryResult{SessionID: id, Err: fmt.Errorf("open project: %w", err)}
		}
		if p.ChatSessionID == "" {
			return nil
		}
		msgs, err := c.SessionMessages(ctx, p.ChatSessionID)
		return msg.HistoryResult{SessionID: p.ChatSessionID, Messages: msgs, Err: err}
	}
}

func (m Model) listSessions() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := c.ListSessions(ctx)
		return msg.SessionsResult{Sessions: s, Err: err}
	}
}

func (m Model) listProjects() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := c.ListProjects(ctx)
		return msg.ProjectsResult{Projects: p, Err: err}
	}
}

func (m Model) listTemplates() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := c.ListTemplates(ctx)
		return msg.TemplatesResult{Templates: t, Err: err}
	}
}

func (m Model) loadTemplate(id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := c.GetTemplate(ctx, id)
		return msg.TemplateResult{Template: t, Err: err}
	}
}

func (m Model) listAgents() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		a, err := c.ListAgents(ctx)
		return msg.AgentsResult{Agents: a, Err: err}
	}
}

func (m Model) listModels() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ms, err := c.ListModels(ctx)
		return msg.ModelsResult{Models: ms, Err: err}
	}
}

func (m Model) listKeys() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		k, err := c.ListAPIKeys(ctx)
		return msg.KeysResult{Keys: k, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}
