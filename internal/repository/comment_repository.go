package repository

import (
	"context"
	"dochub/internal/domain"
	"fmt"
	"github.com/jmoiron/sqlx"
)

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

type commentRow struct {
	domain.Comment
	AuthorEmail          string  `db:"author_email"`
	AuthorFirstName      string  `db:"author_first_name"`
	AuthorLastName       string  `db:"author_last_name"`
	AuthorProfilePicture *string `db:"author_profile_picture"`
}

func (row commentRow) toDomain() domain.Comment {
	c := row.Comment
	c.Author = summaryOf(c.AuthorID, row.AuthorEmail, row.AuthorFirstName, row.AuthorLastName, row.AuthorProfilePicture)
	return c
}

const commentSelect = `
    SELECT
        c.id, c.document_id, c.author_id, c.content, c.created_at, c.updated_at,
        u.email AS author_email,
        u.first_name AS author_first_name,
        u.last_name AS author_last_name,
        u.profile_picture AS author_profile_picture
    FROM comments c
    JOIN users u ON u.id = c.author_id`

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
        INSERT INTO comments (document_id, author_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.DocumentID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var row commentRow
	if err := r.db.GetContext(ctx, &row, commentSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, wrapNotFound(err, "comment")
	}
	comment := row.toDomain()
	return &comment, nil
}

// ListByDocument возвращает комментарии в порядке создания
func (r *CommentRepository) ListByDocument(ctx context.Context, documentID int64) ([]domain.Comment, error) {
	var rows []commentRow
	query := commentSelect + ` WHERE c.document_id = $1 ORDER BY c.created_at, c.id`
	if err := r.db.SelectContext(ctx, &rows, query, documentID); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
        UPDATE comments
        SET content = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2
        RETURNING updated_at`

	if err := r.db.QueryRowContext(ctx, query, comment.Content, comment.ID).Scan(&comment.UpdatedAt); err != nil {
		return wrapNotFound(err, "comment")
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return checkAffected(result, "comment")
}
