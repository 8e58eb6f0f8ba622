package clipboard

import "clipsync/internal/domain/apperr"

var (
	ErrItemNotFound    = apperr.New(apperr.ErrNotFound, "clipboard item not found")
	ErrEmptyContent    = apperr.New(apperr.ErrInvalidArgument, "content is required")
	ErrContentTooLarge = apperr.New(apperr.ErrInvalidArgument, "content exceeds 10MB")
	ErrNulContent      = apperr.New(apperr.ErrInvalidArgument, "content must not contain NUL characters")
	ErrEmptyPatch      = apperr.New(apperr.ErrInvalidArgument, "nothing to update")
	ErrEmptyQuery      = apperr.New(apperr.ErrInvalidArgument, "search query is required")
)
