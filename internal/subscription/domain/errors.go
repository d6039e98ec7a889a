package domain

import "errors"

var (
	ErrInvalidUser = errors.New("invalid_user")
)
