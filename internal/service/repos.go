package service

import (
	"context"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
)

// Repository interfaces implemented by the postgres package. Services depend
// on these so tests can substitute mocks.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
}

type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	GetByOwnerAndSlug(ctx context.Context, ownerID uuid.UUID, slug string) (*domain.Workspace, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, update *domain.WorkspaceUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, workspaceID, userID uuid.UUID, role string) error
	GetMemberRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error)
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.Membership, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Project, error)
	Update(ctx context.Context, id uuid.UUID, update *domain.ProjectUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateFolder(ctx context.Context, folder *domain.Folder) error
	GetFolder(ctx context.Context, id uuid.UUID) (*domain.Folder, error)
	ListFolders(ctx context.Context, projectID uuid.UUID) ([]domain.Folder, error)
	NextFolderPosition(ctx context.Context, projectID uuid.UUID) (int, error)
	UpdateFolder(ctx context.Context, id uuid.UUID, update *domain.FolderUpdate) error
	DeleteFolder(ctx context.Context, id uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, update *domain.TaskUpdate) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
	ProjectIDsOf(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Comment, error)
	Update(ctx context.Context, id uuid.UUID, content string, links []domain.CommentLink) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
