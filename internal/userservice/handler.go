package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sushihentaime/bloghub/internal/common"
)

func NewUserService(db *sql.DB, mb common.MessageProducer, tokens *TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		mb:     mb,
		tokens: tokens,
		logger: logger,
	}
}

// CreateUser creates a new user account, publishes a user.created event and returns an access token.
func (s *UserService) CreateUser(ctx context.Context, email, password, profileImage string) (string, *User, error) {
	email = strings.TrimSpace(email)

	v := common.NewValidator()
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return "", nil, v.ValidationError()
	}

	u := User{
		Email:        email,
		ProfileImage: profileImage,
		Password:     Password{Plain: password},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return "", nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(&u)
	if err != nil {
		return "", nil, err
	}

	s.publishUserCreated(ctx, &u)

	return token, &u, nil
}

// publishUserCreated is best effort: the account already exists, so a broker failure only costs the welcome mail.
func (s *UserService) publishUserCreated(ctx context.Context, u *User) {
	if s.mb == nil {
		return
	}

	data, err := json.Marshal(UserCreatedEvent{Email: u.Email})
	if err != nil {
		s.logger.Error("could not marshal user.created event", slog.String("error", err.Error()))
		return
	}

	err = s.mb.Publish(ctx, data, common.UserCreatedKey, common.BlogExchange)
	if err != nil {
		s.logger.Error("could not publish user.created event", slog.String("email", u.Email), slog.String("error", err.Error()))
	}
}

// LoginUser checks the credentials and returns a fresh access token.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (string, *User, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return "", nil, v.ValidationError()
	}

	u, err := s.m.getUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return "", nil, common.ErrInvalidCredentials
		default:
			return "", nil, err
		}
	}

	ok, err := u.Password.compare(password)
	if err != nil {
		return "", nil, err
	}

	if !ok {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// GetUserByID returns the stored user, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.m.getUserByID(ctx, id)
}

// VerifyToken authenticates a bearer token into a caller identity.
func (s *UserService) VerifyToken(token string) (*User, error) {
	return s.tokens.Verify(token)
}
