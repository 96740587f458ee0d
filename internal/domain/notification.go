package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotifyTaskAssigned   = "TASK_ASSIGNED"
	NotifyTaskUpdated    = "TASK_UPDATED"
	NotifyCommentAdded   = "COMMENT_ADDED"
	NotifyMemberInvited  = "MEMBER_INVITED"
	NotifyMemberRemoved  = "MEMBER_REMOVED"
	NotifyProjectUpdated = "PROJECT_UPDATED"
)

// Notification is a per-user event record surfaced in the notification feed
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
