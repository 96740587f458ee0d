package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses
const (
	ProjectPlanning  = "PLANNING"
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectCompleted = "COMPLETED"
	ProjectCancelled = "CANCELLED"
)

// Priorities, shared by projects and tasks
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Project is a named body of work inside a workspace
type Project struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspaceId"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	Progress    int          `json:"progress"`
	TeamLead    *uuid.UUID   `json:"team_lead,omitempty"`
	Members     []Membership `json:"members"`
	Folders     []Folder     `json:"folders"`
	Tasks       []Task       `json:"tasks"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ProjectCreate represents project creation data
type ProjectCreate struct {
	WorkspaceID uuid.UUID  `json:"workspaceId" validate:"required"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	Priority    string     `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	TeamLead    *uuid.UUID `json:"team_lead,omitempty"`
}

// ProjectUpdate represents partial project update data
type ProjectUpdate struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Progress    *int       `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	TeamLead    *uuid.UUID `json:"team_lead,omitempty"`
}
