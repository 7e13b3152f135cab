package userservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/common"
)

const (
	AccessTokenTime time.Duration = 7 * 24 * time.Hour
)

type UserService struct {
	m      *DBModel
	mb     common.MessageProducer
	tokens *TokenManager
	logger *slog.Logger
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image"`
	Password     Password  `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public identity attached to blogs and comments.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserCreatedEvent is published on common.UserCreatedKey after registration.
type UserCreatedEvent struct {
	Email string
}
