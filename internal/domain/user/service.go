package user

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, login, password string) (int, error)
	Authenticate(ctx context.Context, login, password string) (User, error)
	Profile(ctx context.Context, userID int) (User, error)
}

type Service struct {
	repo   Repository
	policy Policy
	log    *slog.Logger
}

func NewService(repo Repository, policy Policy, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		log:    log.With("component", "user_service"),
	}
}

func (s *Service) Register(ctx context.Context, login, password string) (int, error) {
	if err := s.policy.Check(login, password); err != nil {
		s.log.Debug("registration rejected", "login", login, "error", err)
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, login, string(hash))
	if err != nil {
		if errors.Is(err, ErrLoginTaken) {
			return 0, err
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Authenticate не различает неизвестный логин и неверный пароль.
func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	if s.policy.CheckLogin(login) != nil {
		return User{}, ErrInvalidAuth
	}

	u, err := s.repo.FindByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidAuth
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidAuth
	}
	return u, nil
}

func (s *Service) Profile(ctx context.Context, userID int) (User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
