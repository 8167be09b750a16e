package client

import (
	"encoding/json"
	"time"

	"github.com/miosa/osa-builder/attachments"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HealthResponse from GET /api/health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  map[string]any `json:"services"`
}

// ChatMessage is one stored message of a session.
type ChatMessage struct {
	ID               string          `json:"id"`
	SessionID        string          `json:"session_id"`
	Role             string          `json:"role"`
	Content          string          `json:"content"`
	AgentType        string          `json:"agent_type,omitempty"`
	Timestamp        string          `json:"timestamp,omitempty"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	SuggestedActions []string        `json:"suggested_actions,omitempty"`
}

// CreatedFiles decodes metadata.created_files. Malformed metadata yields nil.
func (m ChatMessage) CreatedFiles() []attachments.File {
	if len(m.Metadata) == 0 {
		return nil
	}
	var meta struct {
		CreatedFiles []attachments.File `json:"created_files"`
	}
	if err := json.Unmarshal(m.Metadata, &meta); err != nil {
		return nil
	}
	return meta.CreatedFiles
}

// Time parses Timestamp; the zero time is returned when it is absent or
// malformed. The backend emits naive UTC timestamps without a zone.
func (m ChatMessage) Time() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, m.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SendMessageRequest for POST /api/chat/send.
type SendMessageRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Message       string `json:"message"`
	AgentType     string `json:"agent_type,omitempty"`
	TemplateID    string `json:"template_id,omitempty"`
	ModelProvider string `json:"model_provider"`
	ModelName     string `json:"model_name"`
}

// SendMessageResponse from POST /api/chat/send.
type SendMessageResponse struct {
	SessionID        string      `json:"session_id"`
	Message          ChatMessage `json:"message"`
	SuggestedActions []string    `json:"suggested_actions"`
}

// ChatSession from GET /api/chat/sessions.
type ChatSession struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	ActiveAgent   string `json:"active_agent"`
	ModelProvider string `json:"model_provider"`
	ModelName     string `json:"model_name"`
}

// Project statuses.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectBuilding   = "building"
	ProjectCompleted  = "completed"
	ProjectDeployed   = "deployed"
	ProjectFailed     = "failed"
)

// Project from /api/projects.
type Project struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	TemplateID    string   `json:"template_id,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Progress      int      `json:"progress"`
	TechStack     []string `json:"tech_stack"`
	RepositoryURL string   `json:"repository_url,omitempty"`
	DeploymentURL string   `json:"deployment_url,omitempty"`
	ChatSessionID string   `json:"chat_session_id,omitempty"`
}

// CreateProjectRequest for POST /api/projects.
type CreateProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TemplateID  string   `json:"template_id,omitempty"`
	TechStack   []string `json:"tech_stack"`
}

// UpdateProjectRequest for PUT /api/projects/{id}. Nil fields are left
// unchanged by the backend.
type UpdateProjectRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *string `json:"status,omitempty"`
	Progress      *int    `json:"progress,omitempty"`
	RepositoryURL *string `json:"repository_url,omitempty"`
	DeploymentURL *string `json:"deployment_url,omitempty"`
}

// Template from /api/templates.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Category    string   `json:"category"`
	Prompt      string   `json:"prompt"`
	TechStack   []string `json:"tech_stack"`
	Features    []string `json:"features"`
}

// AgentInfo from GET /api/agents.
type AgentInfo struct {
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Specialization string   `json:"specialization"`
	Capabilities   []string `json:"capabilities"`
}

// ModelInfo from GET /api/models.
type ModelInfo struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IsFree      bool   `json:"is_free"`
	Description string `json:"description"`
}

// APIKey from /api/api-keys. The backend returns the key itself; use Masked
// for display.
type APIKey struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Key         string `json:"api_key"`
	DisplayName string `json:"display_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateAPIKeyRequest for POST /api/api-keys.
type CreateAPIKeyRequest struct {
	Provider    string `json:"provider"`
	Key         string `json:"api_key"`
	DisplayName string `json:"display_name,omitempty"`
}

// UpdateAPIKeyRequest for PUT /api/api-keys/{id}.
type UpdateAPIKeyRequest struct {
	Key         *string `json:"api_key,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
