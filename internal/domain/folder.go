package domain

import (
	"time"

	"github.com/google/uuid"
)

// Folder is an optional grouping of tasks within a project
type Folder struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Position    int       `json:"position"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FolderCreate represents folder creation data
type FolderCreate struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Position    *int    `json:"position,omitempty" validate:"omitempty,min=0"`
}

// FolderUpdate represents partial folder update data
type FolderUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Position    *int    `json:"position,omitempty" validate:"omitempty,min=0"`
}
