package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/config"
	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/burnsbros/taskdeck/internal/repository/redis"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

// Sentinel errors matched by handlers
var (
	ErrAccessDenied       = errors.New("access denied")
	ErrAdminRequired      = errors.New("admin access required")
	ErrOwnerRequired      = errors.New("owner access required")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrWorkspaceLimit     = errors.New("workspace limit reached")
	ErrCannotRemoveOwner  = errors.New("cannot remove owner")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotFound           = errors.New("not found")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrInvitationInvalid  = errors.New("invalid invitation")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// WorkspaceService handles workspace operations
type WorkspaceService struct {
	workspaceRepo WorkspaceRepository
	projectRepo   ProjectRepository
	taskRepo      TaskRepository
	limitsCache   *redis.LimitsCache
	cfg           config.WorkspaceConfig
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo WorkspaceRepository,
	projectRepo ProjectRepository,
	taskRepo TaskRepository,
	limitsCache *redis.LimitsCache,
	cfg config.WorkspaceConfig,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		limitsCache:   limitsCache,
		cfg:           cfg,
	}
}

// Create creates a new workspace with the creator as owner
func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	limits, err := s.Limits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !limits.CanCreateMore {
		return nil, ErrWorkspaceLimit
	}

	wsSlug, err := s.uniqueSlug(ctx, userID, input.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	workspace := &domain.Workspace{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        wsSlug,
		Description: input.Description,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	if err := s.workspaceRepo.AddMember(ctx, workspace.ID, userID, domain.RoleSuperAdmin); err != nil {
		return nil, fmt.Errorf("failed to add owner: %w", err)
	}

	s.invalidateLimits(ctx, userID)

	return s.assemble(ctx, workspace.ID)
}

// EnsureDefault idempotently creates the user's default workspace. Repeated
// calls return the same workspace.
func (s *WorkspaceService) EnsureDefault(ctx context.Context, userID uuid.UUID) (*domain.Workspace, error) {
	existing, err := s.workspaceRepo.GetByOwnerAndSlug(ctx, userID, domain.DefaultWorkspaceSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to look up default workspace: %w", err)
	}
	if existing != nil {
		return s.assemble(ctx, existing.ID)
	}

	now := time.Now()
	workspace := &domain.Workspace{
		ID:        uuid.New(),
		Name:      s.cfg.DefaultName,
		Slug:      domain.DefaultWorkspaceSlug,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create default workspace: %w", err)
	}

	if err := s.workspaceRepo.AddMember(ctx, workspace.ID, userID, domain.RoleSuperAdmin); err != nil {
		return nil, fmt.Errorf("failed to add owner: %w", err)
	}

	s.invalidateLimits(ctx, userID)

	log.Info().Str("workspace_id", workspace.ID.String()).Str("user_id", userID.String()).
		Msg("Created default workspace")

	return s.assemble(ctx, workspace.ID)
}

// ListByUser retrieves all workspaces for a user with nested projects,
// folders and tasks
func (s *WorkspaceService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	for i := range workspaces {
		if err := s.hydrateProjects(ctx, &workspaces[i]); err != nil {
			return nil, err
		}
	}

	return workspaces, nil
}

// GetByID retrieves a workspace by ID with access check
func (s *WorkspaceService) GetByID(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	isMember, err := s.workspaceRepo.IsMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrAccessDenied
	}

	return s.assemble(ctx, workspaceID)
}

// Update updates a workspace (admin or owner)
func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID uuid.UUID, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	if err := s.requireRole(ctx, workspaceID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.Update(ctx, workspaceID, &input); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return s.assemble(ctx, workspaceID)
}

// Delete deletes a workspace (owner only)
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return ErrWorkspaceNotFound
	}
	if workspace.OwnerID != userID {
		return ErrOwnerRequired
	}

	if err := s.workspaceRepo.Delete(ctx, workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	s.invalidateLimits(ctx, userID)
	return nil
}

// Limits reports the user's workspace quota
func (s *WorkspaceService) Limits(ctx context.Context, userID uuid.UUID) (*domain.WorkspaceLimits, error) {
	if s.limitsCache != nil {
		if cached, err := s.limitsCache.Get(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	count, err := s.workspaceRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlimited := s.cfg.MaxPerUser <= 0
	limits := &domain.WorkspaceLimits{
		CurrentWorkspaces:  count,
		MaxWorkspaces:      s.cfg.MaxPerUser,
		CanCreateMore:      unlimited || count < s.cfg.MaxPerUser,
		CanCreateUnlimited: unlimited,
	}

	if s.limitsCache != nil {
		if err := s.limitsCache.Set(ctx, userID, limits); err != nil {
			log.Debug().Err(err).Msg("Failed to cache workspace limits")
		}
	}

	return limits, nil
}

// AddMember adds a user to a workspace with the given role
func (s *WorkspaceService) AddMember(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	if role != domain.RoleMember && role != domain.RoleAdmin {
		return ErrInvalidRole
	}
	return s.workspaceRepo.AddMember(ctx, workspaceID, userID, role)
}

// RemoveMember removes a member from a workspace (admin or owner; the owner
// cannot be removed)
func (s *WorkspaceService) RemoveMember(ctx context.Context, requesterID, workspaceID, userID uuid.UUID) error {
	if err := s.requireRole(ctx, workspaceID, requesterID, domain.RoleAdmin); err != nil {
		return err
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return ErrWorkspaceNotFound
	}
	if workspace.OwnerID == userID {
		return ErrCannotRemoveOwner
	}

	return s.workspaceRepo.RemoveMember(ctx, workspaceID, userID)
}

// UpdateMemberRole changes a member's role (admin or owner; the owner's role
// is fixed)
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, requesterID, workspaceID, userID uuid.UUID, role string) error {
	if err := s.requireRole(ctx, workspaceID, requesterID, domain.RoleAdmin); err != nil {
		return err
	}

	if role != domain.RoleMember && role != domain.RoleAdmin {
		return ErrInvalidRole
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return ErrWorkspaceNotFound
	}
	if workspace.OwnerID == userID {
		return ErrCannotRemoveOwner
	}

	return s.workspaceRepo.UpdateMemberRole(ctx, workspaceID, userID, role)
}

// IsMember checks if a user is a member of a workspace
func (s *WorkspaceService) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	return s.workspaceRepo.IsMember(ctx, workspaceID, userID)
}

// requireRole verifies the user holds at least the given role in the
// workspace. SUPER_ADMIN satisfies every check.
func (s *WorkspaceService) requireRole(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	got, err := s.workspaceRepo.GetMemberRole(ctx, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to get member role: %w", err)
	}
	if got == "" {
		return ErrAccessDenied
	}
	if got == domain.RoleSuperAdmin {
		return nil
	}
	if role == domain.RoleAdmin && got != domain.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}

// uniqueSlug derives a slug from the workspace name, unique per owner
func (s *WorkspaceService) uniqueSlug(ctx context.Context, ownerID uuid.UUID, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "workspace"
	}

	candidate := base
	for i := 2; ; i++ {
		existing, err := s.workspaceRepo.GetByOwnerAndSlug(ctx, ownerID, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// assemble loads a workspace with members and the full project tree
func (s *WorkspaceService) assemble(ctx context.Context, workspaceID uuid.UUID) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, ErrWorkspaceNotFound
	}

	if err := s.hydrateProjects(ctx, workspace); err != nil {
		return nil, err
	}

	return workspace, nil
}

// hydrateProjects loads projects, folders and tasks under a workspace.
// Project.Tasks holds every task of the project; Folder.Tasks additionally
// groups the subset assigned to that folder.
func (s *WorkspaceService) hydrateProjects(ctx context.Context, workspace *domain.Workspace) error {
	projects, err := s.projectRepo.ListByWorkspace(ctx, workspace.ID)
	if err != nil {
		return err
	}

	for i := range projects {
		folders, err := s.projectRepo.ListFolders(ctx, projects[i].ID)
		if err != nil {
			return err
		}

		tasks, err := s.taskRepo.ListByProject(ctx, projects[i].ID)
		if err != nil {
			return err
		}

		for fi := range folders {
			folders[fi].Tasks = []domain.Task{}
			for _, task := range tasks {
				if task.FolderID != nil && *task.FolderID == folders[fi].ID {
					folders[fi].Tasks = append(folders[fi].Tasks, task)
				}
			}
		}

		projects[i].Folders = folders
		projects[i].Tasks = tasks
		if projects[i].Members == nil {
			projects[i].Members = []domain.Membership{}
		}
	}

	if projects == nil {
		projects = []domain.Project{}
	}
	workspace.Projects = projects
	return nil
}

func (s *WorkspaceService) invalidateLimits(ctx context.Context, userID uuid.UUID) {
	if s.limitsCache == nil {
		return
	}
	if err := s.limitsCache.Invalidate(ctx, userID); err != nil {
		log.Debug().Err(err).Msg("Failed to invalidate limits cache")
	}
}
