package user

import (
	"fmt"
	"unicode"

	"clipsync/internal/domain/apperr"
)

// Policy - требования к логину и паролю при регистрации.
type Policy struct {
	MinLoginLen    int
	MaxLoginLen    int
	MinPasswordLen int
	// RequireMixed требует строчную, заглавную букву, цифру и спецсимвол.
	RequireMixed bool
}

func DefaultPolicy() Policy {
	return Policy{
		MinLoginLen:    3,
		MaxLoginLen:    32,
		MinPasswordLen: 8,
		RequireMixed:   true,
	}
}

func (p Policy) Check(login, password string) error {
	if err := p.CheckLogin(login); err != nil {
		return err
	}
	return p.CheckPassword(password)
}

func (p Policy) CheckLogin(login string) error {
	n := len([]rune(login))
	if n < p.MinLoginLen || n > p.MaxLoginLen {
		return invalid("login must be %d to %d characters", p.MinLoginLen, p.MaxLoginLen)
	}
	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return invalid("login can only contain letters, digits, '_', '-', '.'")
		}
	}
	return nil
}

func (p Policy) CheckPassword(password string) error {
	if len([]rune(password)) < p.MinPasswordLen {
		return invalid("password must be at least %d characters", p.MinPasswordLen)
	}
	if !p.RequireMixed {
		return nil
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !lower:
		return invalid("password must contain a lowercase letter")
	case !upper:
		return invalid("password must contain an uppercase letter")
	case !digit:
		return invalid("password must contain a digit")
	case !special:
		return invalid("password must contain a special character")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperr.New(apperr.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
