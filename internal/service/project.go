package service

import (
	"context"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
)

// ProjectService handles project and folder operations
type ProjectService struct {
	projectRepo   ProjectRepository
	workspaceRepo WorkspaceRepository
	taskRepo      TaskRepository
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo ProjectRepository, workspaceRepo WorkspaceRepository, taskRepo TaskRepository) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		taskRepo:      taskRepo,
	}
}

// Create creates a project in a workspace the user belongs to
func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, input domain.ProjectCreate) (*domain.Project, error) {
	isMember, err := s.workspaceRepo.IsMember(ctx, input.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrAccessDenied
	}

	status := input.Status
	if status == "" {
		status = domain.ProjectPlanning
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New(),
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		TeamLead:    input.TeamLead,
		Members:     []domain.Membership{},
		Folders:     []domain.Folder{},
		Tasks:       []domain.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// Get retrieves a project with folders and tasks, checking access
func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.authorize(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	folders, err := s.projectRepo.ListFolders(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for fi := range folders {
		folders[fi].Tasks = []domain.Task{}
		for _, task := range tasks {
			if task.FolderID != nil && *task.FolderID == folders[fi].ID {
				folders[fi].Tasks = append(folders[fi].Tasks, task)
			}
		}
	}

	project.Folders = folders
	project.Tasks = tasks
	if project.Members == nil {
		project.Members = []domain.Membership{}
	}

	return project, nil
}

// Update applies a partial update and returns the refreshed project
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, input domain.ProjectUpdate) (*domain.Project, error) {
	if _, err := s.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, projectID, &input); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.Get(ctx, userID, projectID)
}

// Delete deletes a project and everything under it
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.authorize(ctx, userID, projectID); err != nil {
		return err
	}

	return s.projectRepo.Delete(ctx, projectID)
}

// CreateFolder creates a folder in a project. When no position is given the
// folder is appended after the existing ones.
func (s *ProjectService) CreateFolder(ctx context.Context, userID, projectID uuid.UUID, input domain.FolderCreate) (*domain.Folder, error) {
	if _, err := s.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}

	position := 0
	if input.Position != nil {
		position = *input.Position
	} else {
		next, err := s.projectRepo.NextFolderPosition(ctx, projectID)
		if err != nil {
			return nil, err
		}
		position = next
	}

	now := time.Now()
	folder := &domain.Folder{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        input.Name,
		Description: input.Description,
		Position:    position,
		Tasks:       []domain.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.CreateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// UpdateFolder applies a partial update to a folder
func (s *ProjectService) UpdateFolder(ctx context.Context, userID, projectID, folderID uuid.UUID, input domain.FolderUpdate) (*domain.Folder, error) {
	if _, err := s.authorize(ctx, userID, projectID); err != nil {
		return nil, err
	}

	folder, err := s.projectRepo.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.ProjectID != projectID {
		return nil, ErrNotFound
	}

	if err := s.projectRepo.UpdateFolder(ctx, folderID, &input); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}

	return s.projectRepo.GetFolder(ctx, folderID)
}

// DeleteFolder removes a folder; its tasks drop back to the project root
func (s *ProjectService) DeleteFolder(ctx context.Context, userID, projectID, folderID uuid.UUID) error {
	if _, err := s.authorize(ctx, userID, projectID); err != nil {
		return err
	}

	folder, err := s.projectRepo.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if folder == nil || folder.ProjectID != projectID {
		return ErrNotFound
	}

	return s.projectRepo.DeleteFolder(ctx, folderID)
}

// authorize resolves a project and checks the user's workspace membership
func (s *ProjectService) authorize(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	isMember, err := s.workspaceRepo.IsMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, ErrAccessDenied
	}

	return project, nil
}
