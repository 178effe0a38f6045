package domain

import "errors"

// Error taxonomy. Every error leaving a service wraps exactly one of these.
var (
	ErrFetch        = errors.New("failed to fetch data")
	ErrWrite        = errors.New("failed to save data")
	ErrUpload       = errors.New("failed to upload file")
	ErrConfig       = errors.New("service is not configured")
	ErrValidation   = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)
