package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", New(ErrUnauthenticated, "bad token"), http.StatusUnauthorized},
		{"not found wrapped", fmt.Errorf("get item: %w", New(ErrNotFound, "item not found")), http.StatusNotFound},
		{"invalid", ErrInvalidArgument, http.StatusBadRequest},
		{"conflict", New(ErrConflict, "exists"), http.StatusConflict},
		{"upstream", New(ErrUpstream, "dropbox: 500"), http.StatusBadGateway},
		{"rate limited", New(ErrRateLimited, "slow down"), http.StatusTooManyRequests},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "item not found", Message(fmt.Errorf("wrap: %w", New(ErrNotFound, "item not found"))))
	assert.Equal(t, "internal error", Message(errors.New("pq: relation does not exist")))
	assert.Equal(t, "conflict", Message(New(ErrConflict, "")))
}

func TestError_Is(t *testing.T) {
	err := New(ErrNotFound, "device not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}
