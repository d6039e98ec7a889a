package domain

import "errors"

var (
	ErrQuotaExceeded     = errors.New("quota_exceeded")
	ErrRateLimited       = errors.New("rate_limited")
	ErrInvalidCredential = errors.New("invalid_credential")
	ErrMalformedInput    = errors.New("malformed_input")
	ErrTimeout           = errors.New("timeout")
	ErrEmptyResponse     = errors.New("empty_response")
)
