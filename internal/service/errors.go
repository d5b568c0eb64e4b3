package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Validation Errors =====
var (
	ErrEmailRequired   = errors.New("email is required")
	ErrIDRequired      = errors.New("account id is required")
	ErrInvalidID       = errors.New("invalid account id")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	ErrInvalidInput    = errors.New("invalid input")
)

// ===== Account Errors =====
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCredentialCheck    = errors.New("credential verification failed")
)
