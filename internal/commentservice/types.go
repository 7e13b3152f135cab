package commentservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

// Comment is a single stored comment. User is nil when the author no longer exists.
type Comment struct {
	ID              uuid.UUID            `json:"id"`
	BlogID          uuid.UUID            `json:"blog_id"`
	User            *userservice.Profile `json:"user"`
	UserID          uuid.UUID            `json:"-"`
	Content         string               `json:"content"`
	ParentCommentID *uuid.UUID           `json:"parent_comment_id"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CommentThread is a top-level comment and its direct replies, oldest reply first.
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies"`
}

type CreateCommentRequest struct {
	BlogID  uuid.UUID
	UserID  uuid.UUID
	Content string
	// ParentCommentID is the raw client value; empty means a top-level comment.
	ParentCommentID string
}

// BlogLookup resolves the blog a comment is attached to.
type BlogLookup interface {
	GetBlogByID(ctx context.Context, id uuid.UUID) (*blogservice.Blog, error)
}

// CommentCreatedEvent is published on common.CommentCreatedKey so the blog owner can be notified.
type CommentCreatedEvent struct {
	OwnerEmail     string `json:"owner_email"`
	BlogTitle      string `json:"blog_title"`
	CommenterEmail string `json:"commenter_email"`
	Content        string `json:"content"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m      *CommentModel
	blogs  BlogLookup
	mb     common.MessageProducer
	logger *slog.Logger
}
