package user

import (
	"strings"
	"testing"

	"clipsync/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_CheckLogin(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name        string
		login       string
		expectedErr string
	}{
		{name: "valid", login: "user123"},
		{name: "underscore dash dot", login: "user_na-me.x"},
		{name: "cyrillic letters", login: "пользователь"},
		{name: "too short", login: "ab", expectedErr: "login must be 3 to 32 characters"},
		{name: "too long", login: strings.Repeat("a", 33), expectedErr: "login must be 3 to 32 characters"},
		{name: "space", login: "user name", expectedErr: "login can only contain"},
		{name: "at sign", login: "user@name", expectedErr: "login can only contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CheckLogin(tt.login)
			if tt.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestPolicy_CheckPassword(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name        string
		password    string
		expectedErr string
	}{
		{name: "valid", password: "Passw0rd!"},
		{name: "too short", password: "Pa0!", expectedErr: "at least 8"},
		{name: "no lower", password: "PASSW0RD!", expectedErr: "lowercase"},
		{name: "no upper", password: "passw0rd!", expectedErr: "uppercase"},
		{name: "no digit", password: "Password!", expectedErr: "digit"},
		{name: "no special", password: "Passw0rdX", expectedErr: "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CheckPassword(tt.password)
			if tt.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestPolicy_RelaxedPassword(t *testing.T) {
	p := DefaultPolicy()
	p.RequireMixed = false

	assert.NoError(t, p.CheckPassword("simplepassword"))
	assert.Error(t, p.CheckPassword("short"))
}
