package handler

import (
	"net/http"
	"strconv"

	"github.com/burnsbros/taskdeck/internal/api/middleware"
	"github.com/burnsbros/taskdeck/internal/api/response"
	"github.com/burnsbros/taskdeck/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's recent notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.notificationService.List(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{"notifications": notifications})
}

// MarkRead marks a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		response.BadRequest(w, "invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), userID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{"read": true})
}

// MarkAllRead marks every notification of the user as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{"read": true})
}

// Delete removes a notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		response.BadRequest(w, "invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(r.Context(), userID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
