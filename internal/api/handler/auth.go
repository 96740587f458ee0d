package handler

import (
	"encoding/json"
	"net/http"

	"github.com/burnsbros/taskdeck/internal/api/middleware"
	"github.com/burnsbros/taskdeck/internal/api/response"
	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService      *service.AuthService
	workspaceService *service.WorkspaceService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, workspaceService *service.WorkspaceService) *AuthHandler {
	return &AuthHandler{authService: authService, workspaceService: workspaceService}
}

// Register handles user registration. An invitation token in the body joins
// the new account to the inviting workspace; otherwise the default workspace
// is provisioned.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	result, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if !result.InvitationAccepted {
		if _, err := h.workspaceService.EnsureDefault(r.Context(), result.User.ID); err != nil {
			// Sign-up already succeeded; the client retries provisioning.
			writeServiceError(w, err)
			return
		}
	}

	response.Created(w, map[string]any{
		"id":                 result.User.ID,
		"email":              result.User.Email,
		"invitationAccepted": result.InvitationAccepted,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "invalid refresh token")
		return
	}

	response.OK(w, tokens)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if user == nil {
		response.Unauthorized(w, "user not found")
		return
	}

	response.OK(w, user)
}
