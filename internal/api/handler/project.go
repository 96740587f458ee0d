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

// ProjectHandler handles project and folder endpoints
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func projectID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	return id, err == nil
}

// Create handles project creation
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, project)
}

// Get returns a project with folders and tasks
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	project, err := h.projectService.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, project)
}

// Update handles a partial project update
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	var input domain.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	project, err := h.projectService.Update(r.Context(), userID, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, project)
}

// Delete handles project deletion
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	if err := h.projectService.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// CreateFolder adds a folder to a project
func (h *ProjectHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	var input domain.FolderCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	folder, err := h.projectService.CreateFolder(r.Context(), userID, id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, folder)
}

// UpdateFolder renames or reorders a folder
func (h *ProjectHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "folderID"))
	if err != nil {
		response.BadRequest(w, "invalid folder ID")
		return
	}

	var input domain.FolderUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	folder, err := h.projectService.UpdateFolder(r.Context(), userID, id, folderID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, folder)
}

// DeleteFolder removes a folder; its tasks move to the project root
func (h *ProjectHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := projectID(r)
	if !ok {
		response.BadRequest(w, "invalid project ID")
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "folderID"))
	if err != nil {
		response.BadRequest(w, "invalid folder ID")
		return
	}

	if err := h.projectService.DeleteFolder(r.Context(), userID, id, folderID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
