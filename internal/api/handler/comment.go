package handler

import (
	"encoding/json"
	"net/http"

	"github.com/burnsbros/taskdeck/internal/api/middleware"
	"github.com/burnsbros/taskdeck/internal/api/response"
	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create adds a comment to a task
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.CommentCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, comment)
}

// ListByTask lists a task's comments
func (h *CommentHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		response.BadRequest(w, "invalid task ID")
		return
	}

	comments, err := h.commentService.ListByTask(r.Context(), userID, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{"comments": comments})
}

// Update rewrites a comment
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		response.BadRequest(w, "invalid comment ID")
		return
	}

	var input domain.CommentUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	comment, err := h.commentService.Update(r.Context(), userID, commentID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, comment)
}

// Delete removes a comment
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		response.BadRequest(w, "invalid comment ID")
		return
	}

	if err := h.commentService.Delete(r.Context(), userID, commentID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
