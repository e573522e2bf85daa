package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a missing or malformed field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState indicates an operation not allowed in the entity's current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict indicates a concurrent mutation applied first.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrSignatureInvalid indicates a webhook payload whose signature did not verify.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrProviderUnavailable indicates the payment provider call failed.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
