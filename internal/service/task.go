package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Task-specific sentinel errors
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrFolderMismatch = errors.New("folder does not belong to project")
)

// TaskService handles task operations
type TaskService struct {
	taskRepo      TaskRepository
	projectRepo   ProjectRepository
	workspaceRepo WorkspaceRepository
	userRepo      UserRepository
	notifications *NotificationService
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo TaskRepository,
	projectRepo ProjectRepository,
	workspaceRepo WorkspaceRepository,
	userRepo UserRepository,
	notifications *NotificationService,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// TaskWithProject pairs a task with its owning project for the detail view
type TaskWithProject struct {
	domain.Task
	Project *domain.Project `json:"project,omitempty"`
}

// Create creates a task. The folder, when given, must belong to the target
// project, and assignees are deduplicated by user ID.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input domain.TaskCreate) (*domain.Task, error) {
	if err := s.authorizeProject(ctx, userID, input.ProjectID); err != nil {
		return nil, err
	}

	if input.FolderID != nil {
		folder, err := s.projectRepo.GetFolder(ctx, *input.FolderID)
		if err != nil {
			return nil, err
		}
		if folder == nil || folder.ProjectID != input.ProjectID {
			return nil, ErrFolderMismatch
		}
	}

	assignees, err := s.resolveAssignees(ctx, input.Assignees)
	if err != nil {
		return nil, err
	}

	taskType := input.Type
	if taskType == "" {
		taskType = domain.TaskFeature
	}
	status := input.Status
	if status == "" {
		status = domain.TaskTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	links := make([]domain.TaskLink, 0, len(input.Links))
	for _, l := range input.Links {
		links = append(links, domain.TaskLink{ID: uuid.New(), URL: l.URL, Title: l.Title})
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   input.ProjectID,
		FolderID:    input.FolderID,
		Title:       input.Title,
		Description: input.Description,
		Type:        taskType,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		Assignees:   assignees,
		Links:       links,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifyAssignees(ctx, userID, task, domain.NotifyTaskAssigned,
		fmt.Sprintf("You were assigned to %q", task.Title))

	return task, nil
}

// Get retrieves a task with its owning project
func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*TaskWithProject, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	if err := s.authorizeProject(ctx, userID, task.ProjectID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &TaskWithProject{Task: *task, Project: project}, nil
}

// Update applies a partial update and returns the refreshed task
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, input domain.TaskUpdate) (*domain.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if existing == nil {
		return nil, ErrTaskNotFound
	}

	if err := s.authorizeProject(ctx, userID, existing.ProjectID); err != nil {
		return nil, err
	}

	if input.FolderID != nil && *input.FolderID != nil {
		folder, err := s.projectRepo.GetFolder(ctx, **input.FolderID)
		if err != nil {
			return nil, err
		}
		if folder == nil || folder.ProjectID != existing.ProjectID {
			return nil, ErrFolderMismatch
		}
	}

	if err := s.taskRepo.Update(ctx, taskID, &input); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if input.Assignees != nil {
		s.notifyAssignees(ctx, userID, task, domain.NotifyTaskAssigned,
			fmt.Sprintf("You were assigned to %q", task.Title))
	}

	return task, nil
}

// DeleteMany deletes all listed tasks after checking the caller can reach
// every owning project
func (s *TaskService) DeleteMany(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	projectIDs, err := s.taskRepo.ProjectIDsOf(ctx, ids)
	if err != nil {
		return err
	}

	for _, projectID := range projectIDs {
		if err := s.authorizeProject(ctx, userID, projectID); err != nil {
			return err
		}
	}

	return s.taskRepo.DeleteMany(ctx, ids)
}

// resolveAssignees loads users for the given IDs, dropping duplicates and
// unknown IDs
func (s *TaskService) resolveAssignees(ctx context.Context, ids []uuid.UUID) ([]domain.Assignee, error) {
	if len(ids) == 0 {
		return []domain.Assignee{}, nil
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignees: %w", err)
	}

	assignees := make([]domain.Assignee, 0, len(users))
	for _, user := range users {
		assignees = append(assignees, domain.Assignee{User: user})
	}

	return assignees, nil
}

// authorizeProject checks the user can reach the project's workspace
func (s *TaskService) authorizeProject(ctx context.Context, userID, projectID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}

	isMember, err := s.workspaceRepo.IsMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return ErrAccessDenied
	}

	return nil
}

// notifyAssignees fans a notification out to every assignee except the actor
func (s *TaskService) notifyAssignees(ctx context.Context, actorID uuid.UUID, task *domain.Task, notifType, message string) {
	if s.notifications == nil {
		return
	}
	for _, a := range task.Assignees {
		if a.User.ID == actorID {
			continue
		}
		if err := s.notifications.Notify(ctx, a.User.ID, notifType, message); err != nil {
			log.Debug().Err(err).Str("user_id", a.User.ID.String()).Msg("Failed to create notification")
		}
	}
}
