// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Upload guard errors: detected locally, never reach the network.
	ErrFileTooLarge        = errors.New("File size too large")
	ErrFileTypeInvalid     = errors.New("File type not valid")
	ErrProcessTypeMismatch = errors.New("process type does not match file type")

	// Upload transfer errors.
	ErrStorageQuotaExceeded = errors.New("Storage limit exceeded")
	ErrNetwork              = errors.New("Network Error")
	ErrIndexingRejected     = errors.New("Error while indexing file")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
