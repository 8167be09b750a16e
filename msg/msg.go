// Package msg defines the tea.Msg types dispatched within the builder TUI.
// It imports only leaf packages (client types, export, format) so model and
// app can both depend on it.
package msg

import (
	"github.com/miosa/osa-builder/client"
	"github.com/miosa/osa-builder/export"
	"github.com/miosa/osa-builder/format"
)

// -- Lifecycle --

// HealthResult from the initial health check.
type HealthResult struct {
	Status string
	Agents int
	Err    error
}

// -- User input --

// SubmitInput when the user presses Enter.
type SubmitInput struct {
	Text string
}

// -- HTTP responses --

// SendResult from POST /chat/send.
type SendResult struct {
	Response *client.SendMessageResponse
	Err      error
}

// HistoryResult from GET /chat/session/{id}/messages.
type HistoryResult struct {
	SessionID string
	Messages  []client.ChatMessage
	Err       error
}

// SessionsResult from GET /chat/sessions.
type SessionsResult struct {
	Sessions []client.ChatSession
	Err      error
}

// ProjectsResult from GET /projects.
type ProjectsResult struct {
	Projects []client.Project
	Err      error
}

// ProjectCreated from POST /projects.
type ProjectCreated struct {
	Project *client.Project
	Err     error
}

// TemplatesResult from GET /templates.
type TemplatesResult struct {
	Templates []client.Template
	Err       error
}

// TemplateResult from GET /templates/{id}.
type TemplateResult struct {
	Template *client.Template
	Err      error
}

// AgentsResult from GET /agents.
type AgentsResult struct {
	Agents []client.AgentInfo
	Err    error
}

// ModelsResult from GET /models.
type ModelsResult struct {
	Models []client.ModelInfo
	Err    error
}

// KeysResult from GET /api-keys.
type KeysResult struct {
	Keys []client.APIKey
	Err  error
}

// -- Local actions --

// Copied reports a finished clipboard write. On success the chat sets the
// copied flag of ID on Tracker.
type Copied struct {
	Tracker *format.Tracker
	ID      string
	Label   string // "go code block" or a file name
	Err     error
}

// CopyExpired is sent when a copied flag resets so the chat re-renders.
type CopyExpired struct {
	ID string
}

// ExportResult from /export.
type ExportResult struct {
	Result *export.Result
	Err    error
}

// -- UI events --

// TickMsg for periodic timer updates.
type TickMsg struct{}
