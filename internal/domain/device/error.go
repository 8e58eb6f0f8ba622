package device

import "clipsync/internal/domain/apperr"

var ErrSessionNotFound = apperr.New(apperr.ErrNotFound, "device not found")
