package user

import "context"

type Repository interface {
	// Create возвращает ErrLoginTaken, если логин занят.
	Create(ctx context.Context, login, passwordHash string) (int, error)
	FindByLogin(ctx context.Context, login string) (User, error)
	FindByID(ctx context.Context, id int) (User, error)
}
