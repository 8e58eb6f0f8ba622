package backup

import (
	"context"
	"time"
)

type Repository interface {
	// Create возвращает ErrDuplicateProvider, если у пользователя уже есть такой провайдер.
	Create(ctx context.Context, cfg *Config) error
	List(ctx context.Context, userID int) ([]Config, error)
	Get(ctx context.Context, userID int, id string) (*Config, error)
	Update(ctx context.Context, cfg *Config) error
	Delete(ctx context.Context, userID int, id string) error
	MarkExported(ctx context.Context, id string, at time.Time) error
	// ListAutomatic возвращает включенные настройки с auto_backup.
	ListAutomatic(ctx context.Context) ([]Config, error)
}

// Sink выгружает снимок во внешнее хранилище.
type Sink interface {
	Export(ctx context.Context, cfg Config, snap Snapshot) error
}
