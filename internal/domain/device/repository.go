package device

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert создает или обновляет запись по ключу (UserID, DeviceID) и привязывает
	// к ней ConnectionID.
	Upsert(ctx context.Context, s *Session) error
	// Touch обновляет LastActive записи, привязанной к соединению. Отсутствие
	// привязки ошибкой не считается.
	Touch(ctx context.Context, connID string, at time.Time) error
	FindByConnection(ctx context.Context, connID string) (*Session, error)
	// ClearConnection снимает привязку, только если она все еще указывает на connID.
	ClearConnection(ctx context.Context, connID string) error
	ListByUser(ctx context.Context, userID int) ([]Session, error)
	Delete(ctx context.Context, userID int, deviceID string) error
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}
