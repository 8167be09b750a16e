package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client talks to the builder backend. All endpoints live under <BaseURL>/api.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Log        *zap.Logger
}

// New returns a Client with the given request timeout. Agent replies can take
// minutes, so the timeout is generous by default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Log: zap.NewNop(),
	}
}

func (c *Client) SetToken(token string) {
	c.Token = token
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &health, nil
}

// SendMessage posts a user message and returns the agent reply. An empty
// SessionID makes the backend open a new session.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	var result SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/chat/send", req, &result); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &result, nil
}

func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var msgs []ChatMessage
	if err := c.do(ctx, http.MethodGet, "/chat/session/"+url.PathEscape(sessionID)+"/messages", nil, &msgs); err != nil {
		return nil, fmt.Errorf("session messages: %w", err)
	}
	return msgs, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := c.do(ctx, http.MethodGet, "/chat/sessions", nil, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if req.TechStack == nil {
		req.TechStack = []string{}
	}
	var p Project
	if err := c.do(ctx, http.MethodPost, "/projects", req, &p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), req, &p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := c.do(ctx, http.MethodGet, "/templates", nil, &templates); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var t Template
	if err := c.do(ctx, http.MethodGet, "/templates/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

func (c *Client) ListAgents(ctx context.Context) ([]AgentInfo, error) {
	var agents []AgentInfo
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &agents); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	if err := c.do(ctx, http.MethodGet, "/models", nil, &models); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if err := c.do(ctx, http.MethodGet, "/api-keys", nil, &keys); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// CreateAPIKey validates req before sending it.
func (c *Client) CreateAPIKey(ctx context.Context, req CreateAPIKeyRequest) (*APIKey, error) {
	req.Key = strings.TrimSpace(req.Key)
	if err := ValidateAPIKey(req.Provider, req.Key); err != nil {
		return nil, err
	}
	var k APIKey
	if err := c.do(ctx, http.MethodPost, "/api-keys", req, &k); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &k, nil
}

func (c *Client) UpdateAPIKey(ctx context.Context, id string, req UpdateAPIKeyRequest) (*APIKey, error) {
	if req.Key != nil {
		key := strings.TrimSpace(*req.Key)
		if len(key) < MinKeyLength {
			return nil, ErrKeyTooShort
		}
		req.Key = &key
	}
	var k APIKey
	if err := c.do(ctx, http.MethodPut, "/api-keys/"+url.PathEscape(id), req, &k); err != nil {
		return nil, fmt.Errorf("update api key: %w", err)
	}
	return &k, nil
}

func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api-keys/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return nil
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/api"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger().Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", req.Header.Get("X-Request-ID")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
