package userservice

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/bloghub/internal/common"
)

func setupTestEnvironment(t *testing.T) (*UserService, *common.MockMessageProducer, *sql.DB, func() error) {
	db := common.TestDB("file://../../migrations", t)
	mb := new(common.MockMessageProducer)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM users")
		return err
	}

	return NewUserService(db, mb, NewTokenManager("test-secret", time.Hour), logger), mb, db, cleanup
}

func TestCreateUser(t *testing.T) {
	s, mb, db, cleanup := setupTestEnvironment(t)

	mb.On("Publish", mock.Anything, mock.Anything, common.UserCreatedKey, common.BlogExchange).Return(nil)

	testCases := []struct {
		name        string
		email       string
		password    string
		setup       func(db *sql.DB) error
		expectedErr error
	}{
		{
			name:     "valid user",
			email:    "testuser@example.com",
			password: "Test_1234!",
		},
		{
			name:        "invalid email",
			email:       "test",
			password:    "Test_1234!",
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be a valid email address"}},
		},
		{
			name:        "empty payload",
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be provided", "password": "must be provided"}},
		},
		{
			name:     "duplicate email",
			email:    "testuser@example.com",
			password: "Test_1234!",
			setup: func(db *sql.DB) error {
				_, err := db.Exec("INSERT INTO users (email, password) VALUES ($1, $2)", "testuser@example.com", []byte("hash"))
				return err
			},
			expectedErr: common.ErrDuplicateEmail,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setup != nil {
				require.NoError(t, tc.setup(db))
			}

			token, u, err := s.CreateUser(context.Background(), tc.email, tc.password, "")
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotEmpty(t, token)
				assert.Equal(t, tc.email, u.Email)

				caller, err := s.VerifyToken(token)
				assert.NoError(t, err)
				assert.Equal(t, u.ID, caller.ID)
			}

			t.Cleanup(func() {
				assert.NoError(t, cleanup())
			})
		})
	}

	mb.AssertNumberOfCalls(t, "Publish", 1)
}

func TestLoginUser(t *testing.T) {
	s, mb, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, created, err := s.CreateUser(context.Background(), "testuser@example.com", "Test_1234!", "/uploads/avatar.png")
	require.NoError(t, err)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{name: "valid credentials", email: "testuser@example.com", password: "Test_1234!"},
		{name: "wrong password", email: "testuser@example.com", password: "Wrong_1234!", expectedErr: common.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "Test_1234!", expectedErr: common.ErrInvalidCredentials},
		{
			name:        "missing password",
			email:       "testuser@example.com",
			expectedErr: common.ValidationError{Errors: map[string]string{"password": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, u, err := s.LoginUser(context.Background(), tc.email, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotEmpty(t, token)
				assert.Equal(t, created.ID, u.ID)
				assert.Equal(t, "/uploads/avatar.png", u.ProfileImage)
			}
		})
	}
}

func TestGetUserByID(t *testing.T) {
	s, mb, _, cleanup := setupTestEnvironment(t)
	defer cleanup()

	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, created, err := s.CreateUser(context.Background(), "testuser@example.com", "Test_1234!", "")
	require.NoError(t, err)

	u, err := s.GetUserByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.Email, u.Email)

	_, err = s.GetUserByID(context.Background(), uuid.New())
	assert.Equal(t, common.ErrRecordNotFound, err)
}
