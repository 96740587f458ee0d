package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TaskRepository handles task data access
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a task with its assignees and links in one transaction
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tasks (id, project_id, folder_id, title, description, type, status,
		                   priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.Exec(ctx, query,
		task.ID,
		task.ProjectID,
		task.FolderID,
		task.Title,
		task.Description,
		task.Type,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	for _, a := range task.Assignees {
		_, err = tx.Exec(ctx,
			`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			task.ID, a.User.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to add assignee: %w", err)
		}
	}

	for _, l := range task.Links {
		_, err = tx.Exec(ctx,
			`INSERT INTO task_links (id, task_id, url, title) VALUES ($1, $2, $3, $4)`,
			l.ID, task.ID, l.URL, l.Title,
		)
		if err != nil {
			return fmt.Errorf("failed to add link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetByID retrieves a task with its assignees and links
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, project_id, folder_id, title, description, type, status,
		       priority, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.FolderID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := r.hydrate(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject retrieves all tasks of a project with assignees and links
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	query := `
		SELECT id, project_id, folder_id, title, description, type, status,
		       priority, due_date, created_at, updated_at
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.FolderID,
			&task.Title,
			&task.Description,
			&task.Type,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	for i := range tasks {
		if err := r.hydrate(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// Update applies a partial update to a task; assignees and links, when
// present, replace the existing sets
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, update *domain.TaskUpdate) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    type = COALESCE($4, type),
		    status = COALESCE($5, status),
		    priority = COALESCE($6, priority),
		    due_date = COALESCE($7, due_date),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err = tx.Exec(ctx, query, id,
		update.Title,
		update.Description,
		update.Type,
		update.Status,
		update.Priority,
		update.DueDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	// Outer pointer present means the caller wants the folder changed, a nil
	// inner pointer moves the task back to the project root.
	if update.FolderID != nil {
		_, err = tx.Exec(ctx, `UPDATE tasks SET folder_id = $2 WHERE id = $1`, id, *update.FolderID)
		if err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}
	}

	if update.Assignees != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear assignees: %w", err)
		}
		for _, userID := range *update.Assignees {
			_, err = tx.Exec(ctx,
				`INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to add assignee: %w", err)
			}
		}
	}

	if update.Links != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM task_links WHERE task_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear links: %w", err)
		}
		for _, l := range update.Links {
			_, err = tx.Exec(ctx,
				`INSERT INTO task_links (id, task_id, url, title) VALUES ($1, $2, $3, $4)`,
				uuid.New(), id, l.URL, l.Title,
			)
			if err != nil {
				return fmt.Errorf("failed to add link: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// DeleteMany deletes all tasks whose IDs are in ids
func (r *TaskRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM tasks WHERE id = ANY($1)`

	_, err := r.db.Pool.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}

	return nil
}

// ProjectIDsOf returns the distinct project IDs owning the given tasks
func (r *TaskRepository) ProjectIDsOf(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT DISTINCT project_id FROM tasks WHERE id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task projects: %w", err)
	}
	defer rows.Close()

	var projectIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project ID: %w", err)
		}
		projectIDs = append(projectIDs, id)
	}

	return projectIDs, nil
}

// hydrate loads assignees and links onto a task
func (r *TaskRepository) hydrate(ctx context.Context, task *domain.Task) error {
	assigneeQuery := `
		SELECT u.id, u.name, u.email, u.image
		FROM task_assignees ta
		INNER JOIN users u ON ta.user_id = u.id
		WHERE ta.task_id = $1
		ORDER BY u.name ASC
	`

	rows, err := r.db.Pool.Query(ctx, assigneeQuery, task.ID)
	if err != nil {
		return fmt.Errorf("failed to list assignees: %w", err)
	}
	defer rows.Close()

	task.Assignees = []domain.Assignee{}
	for rows.Next() {
		var a domain.Assignee
		if err := rows.Scan(&a.User.ID, &a.User.Name, &a.User.Email, &a.User.Image); err != nil {
			return fmt.Errorf("failed to scan assignee: %w", err)
		}
		task.Assignees = append(task.Assignees, a)
	}
	rows.Close()

	linkQuery := `
		SELECT id, url, title FROM task_links WHERE task_id = $1 ORDER BY id
	`

	linkRows, err := r.db.Pool.Query(ctx, linkQuery, task.ID)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}
	defer linkRows.Close()

	task.Links = []domain.TaskLink{}
	for linkRows.Next() {
		var l domain.TaskLink
		if err := linkRows.Scan(&l.ID, &l.URL, &l.Title); err != nil {
			return fmt.Errorf("failed to scan link: %w", err)
		}
		task.Links = append(task.Links, l)
	}

	return nil
}
