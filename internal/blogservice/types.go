package blogservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/imagestore"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type Blog struct {
	ID          uuid.UUID           `json:"id"`
	User        userservice.Profile `json:"user"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	// Image is the storage reference returned by the image store.
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	c      *common.Cache
	images imagestore.Store
	logger *slog.Logger
}

type CreateBlogRequest struct {
	Title       string
	Description string
	UserID      uuid.UUID
	Image       *imagestore.Upload
}

// UpdateBlogRequest carries the fields to change. Empty strings and a nil Image leave the stored value untouched.
type UpdateBlogRequest struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Image       *imagestore.Upload
	// PayloadErr is a failure to read the submitted fields. It is reported only after the owner check passes.
	PayloadErr error
}
