package user

import "clipsync/internal/domain/apperr"

var (
	ErrNotFound    = apperr.New(apperr.ErrNotFound, "user not found")
	ErrInvalidAuth = apperr.New(apperr.ErrUnauthenticated, "invalid credentials")
	ErrLoginTaken  = apperr.New(apperr.ErrConflict, "login already taken")
)
