package domain

import "errors"

var (
	ErrNotFound    = errors.New("not_found")
	ErrInvalidUser = errors.New("invalid_user")
)
