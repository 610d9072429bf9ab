package service

import "errors"

// Sentinel errors the handlers translate to HTTP status codes.
var (
	// ErrValidation covers missing or malformed input. Maps to 400.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both absent rows and rows owned by another user,
	// deliberately undifferentiated so existence is not leaked. Maps to 404.
	ErrNotFound = errors.New("not found")
)
