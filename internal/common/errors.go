package common

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrNotOwner           = errors.New("user not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("duplicate email")
)
