// Package client is the Go SDK for the taskdeck API: a thin HTTP client,
// an in-process workspace store and the workspace bootstrap procedure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource yields the bearer token for a single request. Token attachment
// is per-request rather than a process-wide default header, so separate
// sessions never share credentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// TokenFunc adapts a function to a TokenSource
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// APIError is a non-2xx HTTP response. Transport failures are returned as
// plain wrapped errors, never as APIError.
type APIError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

// envelope mirrors the server's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// Client talks to the taskdeck API. It performs no retries and no token
// refresh; errors are surfaced unchanged to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets the per-request token source
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates an API client for the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs a single request. 2xx responses decode the envelope's data
// into out (when out is non-nil); non-2xx responses return *APIError;
// transport failures return a wrapped error with no status.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("Request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Body: respBody}
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.Error != nil {
			var msg string
			if json.Unmarshal(env.Error, &msg) == nil {
				apiErr.Message = msg
			} else {
				apiErr.Message = string(env.Error)
			}
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Data == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// --- Auth ---

// RegisterInput is the sign-up request body
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	InvitationToken string `json:"invitation_token,omitempty"`
}

// RegisterResult reports the created account
type RegisterResult struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	InvitationAccepted bool      `json:"invitationAccepted"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	var out RegisterResult
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	var out domain.TokenPair
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var out domain.TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.Do(ctx, http.MethodPost, "/api/auth/refresh", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Workspaces ---

func (c *Client) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	var out struct {
		Workspaces []domain.Workspace `json:"workspaces"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out.Workspaces, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	var out domain.Workspace
	if err := c.Do(ctx, http.MethodPost, "/api/workspaces", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureDefaultWorkspace idempotently provisions the caller's default
// workspace. Use the package-level EnsureDefaultWorkspace for the retrying
// bootstrap variant.
func (c *Client) EnsureDefaultWorkspace(ctx context.Context) (*domain.Workspace, error) {
	var out struct {
		Workspace *domain.Workspace `json:"workspace"`
	}
	if err := c.Do(ctx, http.MethodPost, "/api/workspaces/ensure-default", nil, &out); err != nil {
		return nil, err
	}
	return out.Workspace, nil
}

func (c *Client) WorkspaceLimits(ctx context.Context) (*domain.WorkspaceLimits, error) {
	var out domain.WorkspaceLimits
	if err := c.Do(ctx, http.MethodGet, "/api/workspaces/limits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateWorkspace(ctx context.Context, id uuid.UUID, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	var out domain.Workspace
	if err := c.Do(ctx, http.MethodPatch, "/api/workspaces/"+id.String(), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	return c.Do(ctx, http.MethodDelete, "/api/workspaces/"+id.String(), nil, nil)
}

func (c *Client) InviteMember(ctx context.Context, workspaceID uuid.UUID, input domain.MemberInvite) error {
	path := fmt.Sprintf("/api/workspaces/%s/members", workspaceID)
	return c.Do(ctx, http.MethodPost, path, input, nil)
}

func (c *Client) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	path := fmt.Sprintf("/api/workspaces/%s/members/%s", workspaceID, userID)
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	path := fmt.Sprintf("/api/workspaces/%s/members/%s/role", workspaceID, userID)
	return c.Do(ctx, http.MethodPatch, path, map[string]string{"role": role}, nil)
}

// --- Projects and folders ---

func (c *Client) CreateProject(ctx context.Context, input domain.ProjectCreate) (*domain.Project, error) {
	var out domain.Project
	if err := c.Do(ctx, http.MethodPost, "/api/projects", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var out domain.Project
	if err := c.Do(ctx, http.MethodGet, "/api/projects/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, input domain.ProjectUpdate) (*domain.Project, error) {
	var out domain.Project
	if err := c.Do(ctx, http.MethodPut, "/api/projects/"+id.String(), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.Do(ctx, http.MethodDelete, "/api/projects/"+id.String(), nil, nil)
}

func (c *Client) CreateFolder(ctx context.Context, projectID uuid.UUID, input domain.FolderCreate) (*domain.Folder, error) {
	var out domain.Folder
	path := fmt.Sprintf("/api/projects/%s/folders", projectID)
	if err := c.Do(ctx, http.MethodPost, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFolder(ctx context.Context, projectID, folderID uuid.UUID, input domain.FolderUpdate) (*domain.Folder, error) {
	var out domain.Folder
	path := fmt.Sprintf("/api/projects/%s/folders/%s", projectID, folderID)
	if err := c.Do(ctx, http.MethodPut, path, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFolder(ctx context.Context, projectID, folderID uuid.UUID) error {
	path := fmt.Sprintf("/api/projects/%s/folders/%s", projectID, folderID)
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// --- Tasks ---

func (c *Client) CreateTask(ctx context.Context, input domain.TaskCreate) (*domain.Task, error) {
	var out domain.Task
	if err := c.Do(ctx, http.MethodPost, "/api/tasks", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskDetail is a task with its owning project
type TaskDetail struct {
	domain.Task
	Project *domain.Project `json:"project,omitempty"`
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*TaskDetail, error) {
	var out TaskDetail
	if err := c.Do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, input domain.TaskUpdate) (*domain.Task, error) {
	var out domain.Task
	if err := c.Do(ctx, http.MethodPut, "/api/tasks/"+id.String(), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTasks(ctx context.Context, ids []uuid.UUID) error {
	return c.Do(ctx, http.MethodDelete, "/api/tasks", domain.TaskBulkDelete{TasksIDs: ids}, nil)
}

// --- Comments ---

func (c *Client) CreateComment(ctx context.Context, input domain.CommentCreate) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.Do(ctx, http.MethodPost, "/api/comments", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComments(ctx context.Context, taskID uuid.UUID) ([]domain.Comment, error) {
	var out struct {
		Comments []domain.Comment `json:"comments"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/comments/task/"+taskID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *Client) UpdateComment(ctx context.Context, id uuid.UUID, input domain.CommentUpdate) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.Do(ctx, http.MethodPut, "/api/comments/"+id.String(), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return c.Do(ctx, http.MethodDelete, "/api/comments/"+id.String(), nil, nil)
}

// --- Notifications ---

func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var out struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return c.Do(ctx, http.MethodPatch, "/api/notifications/"+id.String()+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Do(ctx, http.MethodPatch, "/api/notifications/read-all", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return c.Do(ctx, http.MethodDelete, "/api/notifications/"+id.String(), nil, nil)
}
