package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/burnsbros/taskdeck/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CommentRepository handles comment data access
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a comment with its extracted links
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO comments (id, task_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.Exec(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.User.ID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	for _, l := range comment.Links {
		_, err = tx.Exec(ctx,
			`INSERT INTO comment_links (id, comment_id, url) VALUES ($1, $2, $3)`,
			l.ID, comment.ID, l.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to add comment link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.content, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.image
		FROM comments c
		INNER JOIN users u ON c.user_id = u.id
		WHERE c.id = $1
	`

	var comment domain.Comment
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.TaskID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.User.ID,
		&comment.User.Name,
		&comment.User.Email,
		&comment.User.Image,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if err := r.loadLinks(ctx, &comment); err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListByTask retrieves all comments of a task, oldest first
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.content, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.image
		FROM comments c
		INNER JOIN users u ON c.user_id = u.id
		WHERE c.task_id = $1
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TaskID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.User.ID,
			&comment.User.Name,
			&comment.User.Email,
			&comment.User.Image,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	for i := range comments {
		if err := r.loadLinks(ctx, &comments[i]); err != nil {
			return nil, err
		}
	}

	return comments, nil
}

// Update replaces a comment's content and links
func (r *CommentRepository) Update(ctx context.Context, id uuid.UUID, content string, links []domain.CommentLink) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = NOW() WHERE id = $1`,
		id, content,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM comment_links WHERE comment_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear comment links: %w", err)
	}
	for _, l := range links {
		_, err = tx.Exec(ctx,
			`INSERT INTO comment_links (id, comment_id, url) VALUES ($1, $2, $3)`,
			l.ID, id, l.URL,
		)
		if err != nil {
			return fmt.Errorf("failed to add comment link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Delete deletes a comment
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (r *CommentRepository) loadLinks(ctx context.Context, comment *domain.Comment) error {
	query := `SELECT id, url FROM comment_links WHERE comment_id = $1 ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query, comment.ID)
	if err != nil {
		return fmt.Errorf("failed to list comment links: %w", err)
	}
	defer rows.Close()

	comment.Links = []domain.CommentLink{}
	for rows.Next() {
		var l domain.CommentLink
		if err := rows.Scan(&l.ID, &l.URL); err != nil {
			return fmt.Errorf("failed to scan comment link: %w", err)
		}
		comment.Links = append(comment.Links, l)
	}

	return nil
}
