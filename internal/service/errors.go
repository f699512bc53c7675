package service

import "errors"

// Service error taxonomy. Handlers map these onto HTTP statuses; everything
// else surfaces as a generic internal failure.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so login failures never reveal whether a username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken signals the username uniqueness constraint fired.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrInvalidToken signals a malformed, tampered or expired bearer token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnknownIdentity signals a valid token whose subject is no longer
	// registered.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrNotFound covers both "resource does not exist" and "resource is
	// owned by someone else". The two cases are merged so mutation attempts
	// never leak ownership information.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID signals a malformed resource identifier, rejected before
	// any store call.
	ErrInvalidID = errors.New("invalid id")
)
