package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrCommentNotFound = errors.New("comment not found")

// urlPattern matches http(s) URLs embedded in comment text
var urlPattern = regexp.MustCompile(`https?://[^\s<>"'),\]]+`)

// CommentService handles task comments
type CommentService struct {
	commentRepo   CommentRepository
	taskRepo      TaskRepository
	projectRepo   ProjectRepository
	workspaceRepo WorkspaceRepository
	notifications *NotificationService
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo CommentRepository,
	taskRepo TaskRepository,
	projectRepo ProjectRepository,
	workspaceRepo WorkspaceRepository,
	notifications *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		notifications: notifications,
	}
}

// Create adds a comment to a task. URLs in the content are extracted into
// comment links so the client can render previews.
func (s *CommentService) Create(ctx context.Context, userID uuid.UUID, input domain.CommentCreate) (*domain.Comment, error) {
	task, err := s.authorizeTask(ctx, userID, input.TaskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        uuid.New(),
		TaskID:    input.TaskID,
		Content:   input.Content,
		User:      domain.User{ID: userID},
		Links:     extractLinks(input.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.notifyAssignees(ctx, userID, task,
		fmt.Sprintf("New comment on %q", task.Title))

	// Reload for the full user record
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return created, nil
}

// ListByTask lists a task's comments, oldest first
func (s *CommentService) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]domain.Comment, error) {
	if _, err := s.authorizeTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTask(ctx, taskID)
}

// Update rewrites a comment's content. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, userID, commentID uuid.UUID, input domain.CommentUpdate) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.User.ID != userID {
		return nil, ErrAccessDenied
	}

	if err := s.commentRepo.Update(ctx, commentID, input.Content, extractLinks(input.Content)); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.commentRepo.GetByID(ctx, commentID)
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.User.ID != userID {
		return ErrAccessDenied
	}

	return s.commentRepo.Delete(ctx, commentID)
}

// authorizeTask loads the task and checks workspace membership
func (s *CommentService) authorizeTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	project, err := s.projectRepo.GetByID(ctx, task.ProjectID)
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

	return task, nil
}

func (s *CommentService) notifyAssignees(ctx context.Context, actorID uuid.UUID, task *domain.Task, message string) {
	if s.notifications == nil {
		return
	}
	for _, a := range task.Assignees {
		if a.User.ID == actorID {
			continue
		}
		if err := s.notifications.Notify(ctx, a.User.ID, domain.NotifyCommentAdded, message); err != nil {
			log.Debug().Err(err).Str("user_id", a.User.ID.String()).Msg("Failed to create notification")
		}
	}
}

// extractLinks pulls every URL out of comment text
func extractLinks(content string) []domain.CommentLink {
	matches := urlPattern.FindAllString(content, -1)
	links := make([]domain.CommentLink, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, url := range matches {
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, domain.CommentLink{ID: uuid.New(), URL: url})
	}
	return links
}
