package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user comment on a task
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	TaskID    uuid.UUID     `json:"taskId"`
	Content   string        `json:"content"`
	User      User          `json:"user"`
	Links     []CommentLink `json:"links"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CommentLink is a URL referenced by a comment
type CommentLink struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// CommentCreate represents comment creation data
type CommentCreate struct {
	TaskID  uuid.UUID `json:"taskId" validate:"required"`
	Content string    `json:"content" validate:"required,max=10000"`
}

// CommentUpdate represents comment update data
type CommentUpdate struct {
	Content string `json:"content" validate:"required,max=10000"`
}
