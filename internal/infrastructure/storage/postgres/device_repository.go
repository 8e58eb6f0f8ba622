package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipsync/internal/domain/device"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const deviceColumns = `user_id, device_id, device_name, platform, browser, last_active,
		       ip_address, connection_id, created_at, updated_at`

type DeviceRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDeviceRepository(pool *pgxpool.Pool, log *slog.Logger) *DeviceRepository {
	return &DeviceRepository{
		pool: pool,
		log:  log.With("component", "device_repository"),
	}
}

// Upsert перепривязывает запись к новому соединению. Другие записи с тем же
// connection_id не трогаются: идентификаторы соединений уникальны.
func (r *DeviceRepository) Upsert(ctx context.Context, s *device.Session) error {
	const query = `
		INSERT INTO device_sessions
			(user_id, device_id, device_name, platform, browser, last_active, ip_address, connection_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			device_name   = EXCLUDED.device_name,
			platform      = EXCLUDED.platform,
			browser       = EXCLUDED.browser,
			last_active   = EXCLUDED.last_active,
			ip_address    = EXCLUDED.ip_address,
			connection_id = EXCLUDED.connection_id,
			updated_at    = NOW()
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		s.UserID, s.DeviceID, s.DeviceName, s.Platform, s.Browser, s.LastActive, s.IPAddress,
		nullable(s.ConnectionID),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.log.Error("failed to upsert device", "user_id", s.UserID, "device_id", s.DeviceID, "error", err)
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) Touch(ctx context.Context, connID string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE device_sessions SET last_active = $1, updated_at = NOW() WHERE connection_id = $2`,
		at, connID)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) FindByConnection(ctx context.Context, connID string) (*device.Session, error) {
	query := `SELECT ` + deviceColumns + ` FROM device_sessions WHERE connection_id = $1`

	s, err := scanDevice(r.pool.QueryRow(ctx, query, connID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, device.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}
	return s, nil
}

func (r *DeviceRepository) ClearConnection(ctx context.Context, connID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE device_sessions SET connection_id = NULL, updated_at = NOW() WHERE connection_id = $1`,
		connID)
	if err != nil {
		return fmt.Errorf("clear connection: %w", err)
	}
	return nil
}

func (r *DeviceRepository) ListByUser(ctx context.Context, userID int) ([]device.Session, error) {
	query := `SELECT ` + deviceColumns + ` FROM device_sessions
		WHERE user_id = $1 ORDER BY last_active DESC, device_id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	sessions := []device.Session{}
	for rows.Next() {
		s, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *DeviceRepository) Delete(ctx context.Context, userID int, deviceID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM device_sessions WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return device.ErrSessionNotFound
	}
	return nil
}

func (r *DeviceRepository) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM device_sessions WHERE last_active < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge devices: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanDevice(row pgx.Row) (*device.Session, error) {
	var s device.Session
	var connID *string
	err := row.Scan(
		&s.UserID, &s.DeviceID, &s.DeviceName, &s.Platform, &s.Browser, &s.LastActive,
		&s.IPAddress, &connID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if connID != nil {
		s.ConnectionID = *connID
	}
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
