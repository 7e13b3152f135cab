package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

var ErrContentRequired = errors.New("content is required")

const selectComment = `
		SELECT c.id, c.blog_id, c.user_id, c.content, c.parent_comment_id, c.created_at, u.id, u.email, u.profile_image
		FROM comments c
		LEFT JOIN users u ON c.user_id = u.id`

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*Comment, error) {
	var (
		c            Comment
		parentID     uuid.NullUUID
		authorID     uuid.NullUUID
		authorEmail  sql.NullString
		profileImage sql.NullString
	)

	err := row.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &parentID, &c.CreatedAt, &authorID, &authorEmail, &profileImage)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentCommentID = &parentID.UUID
	}

	if authorID.Valid {
		c.User = &userservice.Profile{
			ID:           authorID.UUID,
			Email:        authorEmail.String,
			ProfileImage: profileImage.String,
		}
	}

	return &c, nil
}

func (m *CommentModel) insert(ctx context.Context, blogID, userID uuid.UUID, content string, parentID *uuid.UUID) (uuid.UUID, error) {
	query := `
		INSERT INTO comments (blog_id, user_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var parent uuid.NullUUID
	if parentID != nil {
		parent = uuid.NullUUID{UUID: *parentID, Valid: true}
	}

	var id uuid.UUID

	err := m.db.QueryRowContext(ctx, query, blogID, userID, content, parent).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (m *CommentModel) getCommentById(ctx context.Context, id uuid.UUID) (*Comment, error) {
	query := selectComment + `
		WHERE c.id = $1`

	c, err := scanComment(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return c, nil
}

// getTopLevelComments returns the blog's comments without a parent, newest first.
func (m *CommentModel) getTopLevelComments(ctx context.Context, blogID uuid.UUID) ([]Comment, error) {
	query := selectComment + `
		WHERE c.blog_id = $1 AND c.parent_comment_id IS NULL
		ORDER BY c.created_at DESC, c.id DESC`

	return m.queryComments(ctx, query, blogID)
}

// getReplies returns the direct replies of every given parent in one round trip, oldest first.
func (m *CommentModel) getReplies(ctx context.Context, parentIDs []uuid.UUID) ([]Comment, error) {
	if len(parentIDs) == 0 {
		return []Comment{}, nil
	}

	ids := make([]string, len(parentIDs))
	for i, id := range parentIDs {
		ids[i] = id.String()
	}

	query := selectComment + `
		WHERE c.parent_comment_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC, c.id ASC`

	return m.queryComments(ctx, query, pq.Array(ids))
}

func (m *CommentModel) queryComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// deleteCommentWithReplies removes the comment and its direct replies atomically and returns how many rows went.
func (m *CommentModel) deleteCommentWithReplies(ctx context.Context, id uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE parent_comment_id = $1`, id)
	if err != nil {
		return 0, err
	}

	replies, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if rows == 0 {
		return 0, common.ErrRecordNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return rows + replies, nil
}
