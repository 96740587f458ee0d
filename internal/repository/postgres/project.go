package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProjectRepository handles project and folder data access
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, workspace_id, name, description, status, priority,
		                      start_date, end_date, progress, team_lead, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		project.ID,
		project.WorkspaceID,
		project.Name,
		project.Description,
		project.Status,
		project.Priority,
		project.StartDate,
		project.EndDate,
		project.Progress,
		project.TeamLead,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID without nested folders or tasks
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT id, workspace_id, name, description, status, priority,
		       start_date, end_date, progress, team_lead, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.WorkspaceID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.Priority,
		&project.StartDate,
		&project.EndDate,
		&project.Progress,
		&project.TeamLead,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListByWorkspace retrieves all projects in a workspace, without nested data
func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Project, error) {
	query := `
		SELECT id, workspace_id, name, description, status, priority,
		       start_date, end_date, progress, team_lead, created_at, updated_at
		FROM projects
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.WorkspaceID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.Priority,
			&project.StartDate,
			&project.EndDate,
			&project.Progress,
			&project.TeamLead,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// Update applies a partial update to a project
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, update *domain.ProjectUpdate) error {
	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    status = COALESCE($4, status),
		    priority = COALESCE($5, priority),
		    start_date = COALESCE($6, start_date),
		    end_date = COALESCE($7, end_date),
		    progress = COALESCE($8, progress),
		    team_lead = COALESCE($9, team_lead),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id,
		update.Name,
		update.Description,
		update.Status,
		update.Priority,
		update.StartDate,
		update.EndDate,
		update.Progress,
		update.TeamLead,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// Delete deletes a project
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// CreateFolder creates a folder inside a project
func (r *ProjectRepository) CreateFolder(ctx context.Context, folder *domain.Folder) error {
	query := `
		INSERT INTO folders (id, project_id, name, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		folder.ID,
		folder.ProjectID,
		folder.Name,
		folder.Description,
		folder.Position,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

// GetFolder retrieves a folder by ID
func (r *ProjectRepository) GetFolder(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	query := `
		SELECT id, project_id, name, description, position, created_at, updated_at
		FROM folders
		WHERE id = $1
	`

	var folder domain.Folder
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ProjectID,
		&folder.Name,
		&folder.Description,
		&folder.Position,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// ListFolders retrieves all folders of a project ordered by position
func (r *ProjectRepository) ListFolders(ctx context.Context, projectID uuid.UUID) ([]domain.Folder, error) {
	query := `
		SELECT id, project_id, name, description, position, created_at, updated_at
		FROM folders
		WHERE project_id = $1
		ORDER BY position ASC, created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	folders := []domain.Folder{}
	for rows.Next() {
		var folder domain.Folder
		if err := rows.Scan(
			&folder.ID,
			&folder.ProjectID,
			&folder.Name,
			&folder.Description,
			&folder.Position,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	return folders, nil
}

// NextFolderPosition returns the position for a newly appended folder
func (r *ProjectRepository) NextFolderPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(position) + 1, 0) FROM folders WHERE project_id = $1`

	var position int
	if err := r.db.Pool.QueryRow(ctx, query, projectID).Scan(&position); err != nil {
		return 0, fmt.Errorf("failed to get next folder position: %w", err)
	}

	return position, nil
}

// UpdateFolder applies a partial update to a folder
func (r *ProjectRepository) UpdateFolder(ctx context.Context, id uuid.UUID, update *domain.FolderUpdate) error {
	query := `
		UPDATE folders
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    position = COALESCE($4, position),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id, update.Name, update.Description, update.Position)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}

	return nil
}

// DeleteFolder deletes a folder; its tasks fall back to the project root
func (r *ProjectRepository) DeleteFolder(ctx context.Context, id uuid.UUID) error {
	// Tasks referencing the folder are detached, not deleted
	if _, err := r.db.Pool.Exec(ctx, `UPDATE tasks SET folder_id = NULL WHERE folder_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach folder tasks: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	return nil
}
