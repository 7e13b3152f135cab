package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/common"
)

var (
	ErrUserForeignKey = errors.New("user_id does not exist")
	ErrImageRequired  = errors.New("blog image is required")
)

const selectBlog = `
		SELECT b.id, b.title, b.description, b.image, b.created_at, b.updated_at, u.id, u.email, u.profile_image
		FROM blogs b
		JOIN users u ON b.user_id = u.id`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*Blog, error) {
	var blog Blog

	err := row.Scan(&blog.ID, &blog.Title, &blog.Description, &blog.Image, &blog.CreatedAt, &blog.UpdatedAt, &blog.User.ID, &blog.User.Email, &blog.User.ProfileImage)
	if err != nil {
		return nil, err
	}

	return &blog, nil
}

// insert stores a new blog. updated_at starts equal to created_at.
func (m *BlogModel) insert(ctx context.Context, title, description, image string, userID uuid.UUID) (uuid.UUID, error) {
	query := `
		INSERT INTO blogs (title, description, image, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id uuid.UUID

	err := m.db.QueryRowContext(ctx, query, title, description, image, userID).Scan(&id)
	if err != nil {
		switch {
		case common.ForeignKeyError(err, "blogs_user_id_fkey"):
			return uuid.Nil, ErrUserForeignKey
		default:
			return uuid.Nil, err
		}
	}

	return id, nil
}

// getBlogById is a method to get a blog by its ID joining the users table to get the owner's public profile.
func (m *BlogModel) getBlogById(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := selectBlog + `
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// updateBlog applies the non-empty fields and always moves updated_at forward.
func (m *BlogModel) updateBlog(ctx context.Context, id uuid.UUID, title, description, image string) (*Blog, error) {
	query := `
		WITH b AS (
			UPDATE blogs
			SET title = COALESCE(NULLIF($2, ''), title),
				description = COALESCE(NULLIF($3, ''), description),
				image = COALESCE(NULLIF($4, ''), image),
				updated_at = now()
			WHERE id = $1
			RETURNING id, user_id, title, description, image, created_at, updated_at
		)
		SELECT b.id, b.title, b.description, b.image, b.created_at, b.updated_at, u.id, u.email, u.profile_image
		FROM b
		JOIN users u ON b.user_id = u.id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id, title, description, image))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) getBlogsByUserId(ctx context.Context, userID uuid.UUID) ([]Blog, error) {
	query := selectBlog + `
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC`

	return m.queryBlogs(ctx, query, userID)
}

// getBlogs returns every blog newest first. A nil limit means no limit.
func (m *BlogModel) getBlogs(ctx context.Context, limit, offset *int) ([]Blog, error) {
	query := selectBlog + `
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $1 OFFSET $2`

	return m.queryBlogs(ctx, query, limit, offset)
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
