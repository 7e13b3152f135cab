package blogservice

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
)

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, func() error) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := imagestore.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cleanup := func() error {
		cache.Flush()
		_, err := db.Exec("DELETE FROM blogs; DELETE FROM users")
		return err
	}

	return NewBlogService(db, cache, store, logger), db, cleanup
}

// imageExists reports whether the local store still holds the referenced file.
func imageExists(t *testing.T, s *BlogService, ref string) bool {
	store := s.images.(*imagestore.LocalStore)
	_, err := os.Stat(filepath.Join(store.Dir(), filepath.FromSlash(strings.TrimPrefix(ref, "/uploads/"))))
	return err == nil
}

func createTestUser(t *testing.T, db *sql.DB, email string) uuid.UUID {
	var id uuid.UUID
	err := db.QueryRow("INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id", email, []byte("hash")).Scan(&id)
	require.NoError(t, err)
	return id
}

func testImage(t *testing.T) *imagestore.Upload {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	return &imagestore.Upload{Filename: "cover.png", ContentType: "image/png", Data: buf.Bytes()}
}

func createTestBlog(t *testing.T, s *BlogService, userID uuid.UUID, title string) *Blog {
	blog, err := s.CreateBlog(context.Background(), &CreateBlogRequest{
		Title:       title,
		Description: "A description",
		UserID:      userID,
		Image:       testImage(t),
	})
	require.NoError(t, err)
	return blog
}

func TestCreateBlog(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	userID := createTestUser(t, db, "owner@example.com")

	testCases := []struct {
		name        string
		req         *CreateBlogRequest
		expectedErr error
	}{
		{
			name: "valid blog",
			req: &CreateBlogRequest{
				Title:       "My first blog",
				Description: "  Hello <script>alert(1)</script>world\n",
				UserID:      userID,
				Image:       testImage(t),
			},
		},
		{
			name:        "missing image",
			req:         &CreateBlogRequest{Title: "Title", Description: "desc", UserID: userID},
			expectedErr: ErrImageRequired,
		},
		{
			name:        "empty fields",
			req:         &CreateBlogRequest{UserID: userID, Image: testImage(t)},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided", "description": "must be provided"}},
		},
		{
			name: "whitespace title",
			req: &CreateBlogRequest{
				Title:       "   ",
				Description: "desc",
				UserID:      userID,
				Image:       testImage(t),
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name: "unsupported image",
			req: &CreateBlogRequest{
				Title:       "Title",
				Description: "desc",
				UserID:      userID,
				Image:       &imagestore.Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
			},
			expectedErr: imagestore.ErrUnsupportedImage,
		},
		{
			name: "unknown owner",
			req: &CreateBlogRequest{
				Title:       "Title",
				Description: "desc",
				UserID:      uuid.New(),
				Image:       testImage(t),
			},
			expectedErr: ErrUserForeignKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blog, err := s.CreateBlog(context.Background(), tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if tc.expectedErr == nil {
				require.NotNil(t, blog)
				assert.NotEqual(t, uuid.Nil, blog.ID)
				assert.Equal(t, tc.req.Title, blog.Title)
				assert.Equal(t, "Hello world", blog.Description)
				assert.Equal(t, userID, blog.User.ID)
				assert.Equal(t, "owner@example.com", blog.User.Email)
				assert.Contains(t, blog.Image, "/uploads/blogs/blog-")
				assert.True(t, imageExists(t, s, blog.Image))
				assert.Equal(t, blog.CreatedAt, blog.UpdatedAt)
			}
		})
	}
}

func TestGetBlogByID(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	userID := createTestUser(t, db, "owner@example.com")
	blog := createTestBlog(t, s, userID, "Cached blog")

	testCases := []struct {
		name        string
		id          uuid.UUID
		expectedErr error
	}{
		{
			name: "existing blog",
			id:   blog.ID,
		},
		{
			name:        "missing blog",
			id:          uuid.New(),
			expectedErr: common.ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.GetBlogByID(context.Background(), tc.id)
			assert.Equal(t, tc.expectedErr, err)

			if tc.expectedErr == nil {
				assert.Equal(t, blog.Title, got.Title)

				_, ok := s.c.Get(common.CacheKeyBlog(tc.id))
				assert.True(t, ok)
			}
		})
	}
}

var errBadPayload = errors.New("request body contains badly-formed JSON")

func TestUpdateBlog(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	ownerID := createTestUser(t, db, "owner@example.com")
	otherID := createTestUser(t, db, "other@example.com")
	blog := createTestBlog(t, s, ownerID, "Original title")

	// warm the cache so the update has something to invalidate
	_, err := s.GetBlogByID(context.Background(), blog.ID)
	require.NoError(t, err)

	testCases := []struct {
		name                string
		req                 *UpdateBlogRequest
		expectedErr         error
		expectedTitle       string
		expectedDescription string
		imageChanged        bool
	}{
		{
			name:        "not the owner",
			req:         &UpdateBlogRequest{ID: blog.ID, UserID: otherID, Title: "Hijacked"},
			expectedErr: common.ErrNotOwner,
		},
		{
			name:        "missing blog",
			req:         &UpdateBlogRequest{ID: uuid.New(), UserID: ownerID, Title: "Anything"},
			expectedErr: common.ErrRecordNotFound,
		},
		{
			name:        "unreadable payload from another user",
			req:         &UpdateBlogRequest{ID: blog.ID, UserID: otherID, PayloadErr: errBadPayload},
			expectedErr: common.ErrNotOwner,
		},
		{
			name:        "unreadable payload from the owner",
			req:         &UpdateBlogRequest{ID: blog.ID, UserID: ownerID, PayloadErr: errBadPayload},
			expectedErr: errBadPayload,
		},
		{
			name:                "title only",
			req:                 &UpdateBlogRequest{ID: blog.ID, UserID: ownerID, Title: "New title"},
			expectedTitle:       "New title",
			expectedDescription: "A description",
		},
		{
			name:                "empty fields are ignored",
			req:                 &UpdateBlogRequest{ID: blog.ID, UserID: ownerID, Title: "", Description: ""},
			expectedTitle:       "New title",
			expectedDescription: "A description",
		},
		{
			name:                "new image",
			req:                 &UpdateBlogRequest{ID: blog.ID, UserID: ownerID, Description: "Changed", Image: testImage(t)},
			expectedTitle:       "New title",
			expectedDescription: "Changed",
			imageChanged:        true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := s.m.getBlogById(context.Background(), blog.ID)
			require.NoError(t, err)

			got, err := s.UpdateBlog(context.Background(), tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if tc.expectedErr != nil {
				after, err := s.m.getBlogById(context.Background(), blog.ID)
				require.NoError(t, err)
				assert.Equal(t, before.Title, after.Title)
				return
			}

			assert.Equal(t, tc.expectedTitle, got.Title)
			assert.Equal(t, tc.expectedDescription, got.Description)
			assert.True(t, got.UpdatedAt.After(got.CreatedAt))
			assert.Equal(t, tc.imageChanged, got.Image != before.Image)
			assert.True(t, imageExists(t, s, got.Image))
			assert.Equal(t, !tc.imageChanged, imageExists(t, s, before.Image))

			_, ok := s.c.Get(common.CacheKeyBlog(blog.ID))
			assert.False(t, ok)
		})
	}
}

func TestDeleteBlog(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	ownerID := createTestUser(t, db, "owner@example.com")
	otherID := createTestUser(t, db, "other@example.com")
	blog := createTestBlog(t, s, ownerID, "Short lived")

	testCases := []struct {
		name        string
		id          uuid.UUID
		userID      uuid.UUID
		expectedErr error
	}{
		{
			name:        "not the owner",
			id:          blog.ID,
			userID:      otherID,
			expectedErr: common.ErrNotOwner,
		},
		{
			name:   "owner",
			id:     blog.ID,
			userID: ownerID,
		},
		{
			name:        "already deleted",
			id:          blog.ID,
			userID:      ownerID,
			expectedErr: common.ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.DeleteBlog(context.Background(), tc.id, tc.userID)
			assert.Equal(t, tc.expectedErr, err)
		})
	}

	_, err := s.GetBlogByID(context.Background(), blog.ID)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
	assert.False(t, imageExists(t, s, blog.Image))
}

func TestGetBlogs(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	defer cleanup()

	userID := createTestUser(t, db, "owner@example.com")
	otherID := createTestUser(t, db, "other@example.com")
	first := createTestBlog(t, s, userID, "First")
	second := createTestBlog(t, s, otherID, "Second")
	third := createTestBlog(t, s, userID, "Third")

	one, zero, minus := 1, 0, -1

	testCases := []struct {
		name        string
		limit       *int
		offset      *int
		expectedIDs []uuid.UUID
		expectedErr error
	}{
		{
			name:        "all blogs newest first",
			expectedIDs: []uuid.UUID{third.ID, second.ID, first.ID},
		},
		{
			name:        "limit and offset",
			limit:       &one,
			offset:      &one,
			expectedIDs: []uuid.UUID{second.ID},
		},
		{
			name:        "zero limit",
			limit:       &zero,
			expectedErr: common.ValidationError{Errors: map[string]string{"limit": "must be greater than zero"}},
		},
		{
			name:        "negative offset",
			offset:      &minus,
			expectedErr: common.ValidationError{Errors: map[string]string{"offset": "must not be negative"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blogs, err := s.GetBlogs(context.Background(), tc.limit, tc.offset)
			assert.Equal(t, tc.expectedErr, err)

			if tc.expectedErr == nil {
				ids := make([]uuid.UUID, 0, len(blogs))
				for _, b := range blogs {
					ids = append(ids, b.ID)
				}
				assert.Equal(t, tc.expectedIDs, ids)
			}
		})
	}

	t.Run("by user", func(t *testing.T) {
		blogs, err := s.GetBlogsByUserID(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, blogs, 2)
		assert.Equal(t, third.ID, blogs[0].ID)
		assert.Equal(t, first.ID, blogs[1].ID)

		blogs, err = s.GetBlogsByUserID(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Empty(t, blogs)
	})
}
