package backup

import "clipsync/internal/domain/apperr"

var (
	ErrConfigNotFound    = apperr.New(apperr.ErrNotFound, "backup config not found")
	ErrDuplicateProvider = apperr.New(apperr.ErrConflict, "backup config for this provider already exists")
	ErrDisabled          = apperr.New(apperr.ErrInvalidArgument, "backup is not enabled")
	ErrNoCredentials     = apperr.New(apperr.ErrInvalidArgument, "provider credentials are required")
	ErrEmptyUpdate       = apperr.New(apperr.ErrInvalidArgument, "nothing to update")
)
