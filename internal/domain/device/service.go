package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, userID int, connID, addr string, d Descriptor) (*Session, error)
	Heartbeat(ctx context.Context, connID string) error
	Lookup(ctx context.Context, connID string) (*Session, bool, error)
	Release(ctx context.Context, connID string) error
	List(ctx context.Context, userID int) ([]Session, error)
	Remove(ctx context.Context, userID int, deviceID string) error
	Sweep(ctx context.Context) (int64, error)
}

// Registry - реестр присутствия устройств.
type Registry struct {
	repo      Repository
	retention time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func NewRegistry(repo Repository, retention time.Duration, log *slog.Logger) *Registry {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Registry{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		log:       log.With("component", "device_registry"),
	}
}

func (r *Registry) Register(ctx context.Context, userID int, connID, addr string, d Descriptor) (*Session, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		UserID:       userID,
		DeviceID:     d.DeviceID,
		DeviceName:   d.DeviceName,
		Platform:     d.Platform,
		Browser:      d.Browser,
		LastActive:   r.now(),
		IPAddress:    addr,
		ConnectionID: connID,
	}
	if err := r.repo.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("upsert device: %w", err)
	}

	r.log.Debug("device registered", "user_id", userID, "device_id", s.DeviceID, "conn_id", connID)
	return s, nil
}

func (r *Registry) Heartbeat(ctx context.Context, connID string) error {
	if connID == "" {
		return nil
	}
	if err := r.repo.Touch(ctx, connID, r.now()); err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	return nil
}

// Lookup ищет устройство по соединению. Отсутствие привязки - не ошибка.
func (r *Registry) Lookup(ctx context.Context, connID string) (*Session, bool, error) {
	if connID == "" {
		return nil, false, nil
	}
	s, err := r.repo.FindByConnection(ctx, connID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find device by connection: %w", err)
	}
	return s, true, nil
}

func (r *Registry) Release(ctx context.Context, connID string) error {
	if connID == "" {
		return nil
	}
	if err := r.repo.ClearConnection(ctx, connID); err != nil {
		return fmt.Errorf("clear connection: %w", err)
	}
	return nil
}

func (r *Registry) List(ctx context.Context, userID int) ([]Session, error) {
	sessions, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return sessions, nil
}

func (r *Registry) Remove(ctx context.Context, userID int, deviceID string) error {
	if deviceID == "" {
		return ErrSessionNotFound
	}
	return r.repo.Delete(ctx, userID, deviceID)
}

// Sweep удаляет записи, неактивные дольше срока хранения.
func (r *Registry) Sweep(ctx context.Context) (int64, error) {
	n, err := r.repo.PurgeStale(ctx, r.now().Add(-r.retention))
	if err != nil {
		return 0, fmt.Errorf("purge stale devices: %w", err)
	}
	if n > 0 {
		r.log.Info("stale devices purged", "count", n)
	}
	return n, nil
}

// RunSweeper периодически вызывает Sweep до отмены ctx.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.log.Error("sweep failed", "error", err)
			}
		}
	}
}
