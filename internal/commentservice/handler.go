package commentservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/common"
)

func NewCommentService(db *sql.DB, blogs BlogLookup, mb common.MessageProducer, logger *slog.Logger) *CommentService {
	return &CommentService{
		m:      newCommentModel(db),
		blogs:  blogs,
		mb:     mb,
		logger: logger,
	}
}

// CreateComment stores a comment on an existing blog. The parent comment is not checked for existence.
func (s *CommentService) CreateComment(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	content := strings.TrimSpace(common.SanitizeMarkdown(req.Content))

	if content == "" {
		return nil, ErrContentRequired
	}

	v := common.NewValidator()

	var parentID *uuid.UUID
	if raw := strings.TrimSpace(req.ParentCommentID); raw != "" {
		id, err := uuid.Parse(raw)
		v.Check(err == nil, "parentCommentId", "must be a valid id")
		if err == nil {
			parentID = &id
		}
	}

	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.blogs.GetBlogByID(ctx, req.BlogID)
	if err != nil {
		return nil, err
	}

	id, err := s.m.insert(ctx, req.BlogID, req.UserID, content, parentID)
	if err != nil {
		return nil, err
	}

	c, err := s.m.getCommentById(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishCommentCreated(ctx, blog, c)

	return c, nil
}

// publishCommentCreated notifies the blog owner, never the owner commenting on their own blog.
func (s *CommentService) publishCommentCreated(ctx context.Context, blog *blogservice.Blog, c *Comment) {
	if s.mb == nil || c.User == nil {
		return
	}

	if common.Authorize(blog.User.ID.String(), c.UserID.String()) == common.Allow {
		return
	}

	data, err := json.Marshal(CommentCreatedEvent{
		OwnerEmail:     blog.User.Email,
		BlogTitle:      blog.Title,
		CommenterEmail: c.User.Email,
		Content:        c.Content,
	})
	if err != nil {
		s.logger.Error("could not marshal comment.created event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, data, common.CommentCreatedKey, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish comment.created event", slog.String("comment_id", c.ID.String()), slog.String("error", err.Error()))
	}
}

// DeleteComment removes a comment owned by userID together with its direct replies.
func (s *CommentService) DeleteComment(ctx context.Context, id, userID uuid.UUID) error {
	c, err := s.m.getCommentById(ctx, id)
	if err != nil {
		return err
	}

	if common.Authorize(c.UserID.String(), userID.String()) == common.Deny {
		return common.ErrNotOwner
	}

	removed, err := s.m.deleteCommentWithReplies(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Debug("comment deleted", slog.String("comment_id", id.String()), slog.Int64("removed", removed))

	return nil
}

// GetCommentTree returns the blog's top-level comments newest first, each with its direct replies oldest first.
func (s *CommentService) GetCommentTree(ctx context.Context, blogID uuid.UUID) ([]CommentThread, error) {
	_, err := s.blogs.GetBlogByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	parents, err := s.m.getTopLevelComments(ctx, blogID)
	if err != nil {
		return nil, err
	}

	replies, err := s.m.getReplies(ctx, commentIDs(parents))
	if err != nil {
		return nil, err
	}

	return buildThreads(parents, replies), nil
}
