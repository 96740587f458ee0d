package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Task types
const (
	TaskFeature       = "FEATURE"
	TaskBug           = "BUG"
	TaskChore         = "CHORE"
	TaskImprovement   = "IMPROVEMENT"
	TaskResearch      = "RESEARCH"
	TaskDocumentation = "DOCUMENTATION"
)

// Task statuses
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskInReview   = "IN_REVIEW"
	TaskDone       = "DONE"
	TaskCancelled  = "CANCELLED"
)

// Task is the atomic unit of work. FolderID nil means the task sits at the
// project root; when set it must reference a folder of the same project.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	FolderID    *uuid.UUID `json:"folderId,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Assignees   []Assignee `json:"assignees"`
	Links       []TaskLink `json:"links"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Assignee wraps the assigned user. Entries are unique by user ID.
type Assignee struct {
	User User `json:"user"`
}

// TaskLink is a URL attached to a task
type TaskLink struct {
	ID    uuid.UUID `json:"id"`
	URL   string    `json:"url"`
	Title *string   `json:"title,omitempty"`
}

// TaskLinkCreate represents a link attached at task creation or update
type TaskLinkCreate struct {
	URL   string  `json:"url" validate:"required,url,max=2048"`
	Title *string `json:"title,omitempty" validate:"omitempty,max=255"`
}

// TaskCreate represents task creation data
type TaskCreate struct {
	ProjectID   uuid.UUID        `json:"projectId" validate:"required"`
	FolderID    *uuid.UUID       `json:"folderId,omitempty"`
	Title       string           `json:"title" validate:"required,max=500"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=10000"`
	Type        string           `json:"type,omitempty" validate:"omitempty,oneof=FEATURE BUG CHORE IMPROVEMENT RESEARCH DOCUMENTATION"`
	Status      string           `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
	Priority    string           `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Assignees   []uuid.UUID      `json:"assignees,omitempty"`
	Links       []TaskLinkCreate `json:"links,omitempty" validate:"omitempty,dive"`
}

// TaskUpdate represents partial task update data. FolderID uses a double
// pointer so callers can distinguish "leave alone" from "move to root".
type TaskUpdate struct {
	FolderID    **uuid.UUID      `json:"folderId,omitempty"`
	Title       *string          `json:"title,omitempty" validate:"omitempty,max=500"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=10000"`
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=FEATURE BUG CHORE IMPROVEMENT RESEARCH DOCUMENTATION"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW DONE CANCELLED"`
	Priority    *string          `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Assignees   *[]uuid.UUID     `json:"assignees,omitempty"`
	Links       []TaskLinkCreate `json:"links,omitempty" validate:"omitempty,dive"`
}

// taskUpdateAlias carries TaskUpdate's fields without its methods so
// UnmarshalJSON does not recurse.
type taskUpdateAlias TaskUpdate

// UnmarshalJSON decodes folderId by hand: an absent key leaves FolderID
// nil, an explicit null yields a non-nil outer pointer with a nil inner
// pointer (move to project root). The generic decoder collapses both
// cases to nil.
func (u *TaskUpdate) UnmarshalJSON(data []byte) error {
	var raw struct {
		taskUpdateAlias
		FolderID json.RawMessage `json:"folderId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = TaskUpdate(raw.taskUpdateAlias)

	switch {
	case raw.FolderID == nil:
		u.FolderID = nil
	case string(raw.FolderID) == "null":
		var root *uuid.UUID
		u.FolderID = &root
	default:
		var id uuid.UUID
		if err := json.Unmarshal(raw.FolderID, &id); err != nil {
			return err
		}
		inner := &id
		u.FolderID = &inner
	}

	return nil
}

// TaskBulkDelete identifies tasks for multi-select deletion
type TaskBulkDelete struct {
	TasksIDs []uuid.UUID `json:"tasksIds" validate:"required,min=1"`
}
