package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWorkspaceSlug identifies the application-wide fallback workspace.
// Selection falls back to it when a user has no persisted choice.
const DefaultWorkspaceSlug = "the-burns-brothers"

// Workspace is the top-level tenant container for projects and members
type Workspace struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description,omitempty"`
	OwnerID     uuid.UUID    `json:"ownerId"`
	Members     []Membership `json:"members"`
	Projects    []Project    `json:"projects"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Membership is the role-bearing link between a user and a workspace or project
type Membership struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
	User User      `json:"user"`
}

// Role constants
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleMember     = "MEMBER"
)

// ValidRole reports whether role is one of the assignable membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// WorkspaceUpdate represents workspace update data
type WorkspaceUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// WorkspaceLimits reports how many workspaces the user has against their quota
type WorkspaceLimits struct {
	CurrentWorkspaces  int  `json:"currentWorkspaces"`
	MaxWorkspaces      int  `json:"maxWorkspaces"`
	CanCreateMore      bool `json:"canCreateMore"`
	CanCreateUnlimited bool `json:"canCreateUnlimited"`
}

// MemberInvite represents a workspace member invitation request
type MemberInvite struct {
	Email   string `json:"email" validate:"required,email"`
	Role    string `json:"role" validate:"required,oneof=ADMIN MEMBER"`
	Message string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// MemberRoleUpdate changes an existing member's role
type MemberRoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}
