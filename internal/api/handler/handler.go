package handler

import (
	"errors"
	"net/http"

	"github.com/burnsbros/taskdeck/internal/api/response"
	"github.com/burnsbros/taskdeck/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// writeServiceError maps service errors to HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrAdminRequired),
		errors.Is(err, service.ErrOwnerRequired),
		errors.Is(err, service.ErrWorkspaceLimit):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrCannotRemoveOwner),
		errors.Is(err, service.ErrFolderMismatch),
		errors.Is(err, service.ErrInvitationExpired),
		errors.Is(err, service.ErrInvitationInvalid):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal error")
	}
}

// validationErrors turns validator output into a field → message map
func validationErrors(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "field is required"
		case "email":
			fields[e.Field()] = "invalid email format"
		case "min":
			fields[e.Field()] = "must be at least " + e.Param()
		case "max":
			fields[e.Field()] = "must be at most " + e.Param()
		case "oneof":
			fields[e.Field()] = "must be one of: " + e.Param()
		case "url":
			fields[e.Field()] = "invalid URL"
		default:
			fields[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return fields
}
