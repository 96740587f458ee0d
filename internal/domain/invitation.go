package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invitation is the payload carried inside an invitation token. Tokens are
// sealed server-side; the recipient only ever sees the opaque string.
type Invitation struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Message     string    `json:"message,omitempty"`
	InvitedBy   uuid.UUID `json:"invited_by"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the invitation is past its expiry.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
