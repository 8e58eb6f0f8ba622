package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipsync/internal/domain/backup"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const backupColumns = `id, user_id, provider, enabled, last_backup, settings,
		       access_token, refresh_token, expires_at, created_at, updated_at`

// Sealer шифрует токены провайдеров перед записью в базу.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type BackupRepository struct {
	pool   *pgxpool.Pool
	sealer Sealer
	log    *slog.Logger
}

func NewBackupRepository(pool *pgxpool.Pool, sealer Sealer, log *slog.Logger) *BackupRepository {
	return &BackupRepository{
		pool:   pool,
		sealer: sealer,
		log:    log.With("component", "backup_repository"),
	}
}

func (r *BackupRepository) Create(ctx context.Context, cfg *backup.Config) error {
	const query = `
		INSERT INTO backup_configs
			(id, user_id, provider, enabled, settings, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	access, refresh, err := r.seal(cfg.Credentials)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx, query,
		cfg.ID, cfg.UserID, string(cfg.Provider), cfg.Enabled, cfg.Settings,
		access, refresh, cfg.Credentials.ExpiresAt,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return backup.ErrDuplicateProvider
		}
		r.log.Error("failed to create backup config", "user_id", cfg.UserID, "error", err)
		return fmt.Errorf("insert backup config: %w", err)
	}
	return nil
}

func (r *BackupRepository) List(ctx context.Context, userID int) ([]backup.Config, error) {
	query := `SELECT ` + backupColumns + ` FROM backup_configs WHERE user_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, userID)
}

func (r *BackupRepository) Get(ctx context.Context, userID int, id string) (*backup.Config, error) {
	query := `SELECT ` + backupColumns + ` FROM backup_configs WHERE id = $1 AND user_id = $2`

	cfg, err := scanBackup(r.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, backup.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get backup config: %w", err)
	}
	if err := r.open(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *BackupRepository) Update(ctx context.Context, cfg *backup.Config) error {
	const query = `
		UPDATE backup_configs SET
			enabled = $1, settings = $2, access_token = $3, refresh_token = $4,
			expires_at = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at`

	access, refresh, err := r.seal(cfg.Credentials)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx, query,
		cfg.Enabled, cfg.Settings, access, refresh,
		cfg.Credentials.ExpiresAt, cfg.ID, cfg.UserID,
	).Scan(&cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return backup.ErrConfigNotFound
	}
	if err != nil {
		return fmt.Errorf("update backup config: %w", err)
	}
	return nil
}

func (r *BackupRepository) Delete(ctx context.Context, userID int, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM backup_configs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete backup config: %w", err)
	}
	if result.RowsAffected() == 0 {
		return backup.ErrConfigNotFound
	}
	return nil
}

func (r *BackupRepository) MarkExported(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE backup_configs SET last_backup = $1, updated_at = NOW() WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

func (r *BackupRepository) ListAutomatic(ctx context.Context) ([]backup.Config, error) {
	query := `SELECT ` + backupColumns + ` FROM backup_configs
		WHERE enabled AND (settings->>'auto_backup')::boolean IS TRUE`
	return r.query(ctx, query)
}

func (r *BackupRepository) query(ctx context.Context, query string, args ...any) ([]backup.Config, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query backup configs: %w", err)
	}
	defer rows.Close()

	var configs []backup.Config
	for rows.Next() {
		cfg, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup config: %w", err)
		}
		if err := r.open(cfg); err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

func (r *BackupRepository) seal(c backup.ProviderCredentials) (access, refresh string, err error) {
	if access, err = r.sealer.Seal(c.AccessToken); err != nil {
		return "", "", fmt.Errorf("seal access token: %w", err)
	}
	if refresh, err = r.sealer.Seal(c.RefreshToken); err != nil {
		return "", "", fmt.Errorf("seal refresh token: %w", err)
	}
	return access, refresh, nil
}

func (r *BackupRepository) open(cfg *backup.Config) error {
	var err error
	if cfg.Credentials.AccessToken, err = r.sealer.Open(cfg.Credentials.AccessToken); err != nil {
		return fmt.Errorf("open access token of %s: %w", cfg.ID, err)
	}
	if cfg.Credentials.RefreshToken, err = r.sealer.Open(cfg.Credentials.RefreshToken); err != nil {
		return fmt.Errorf("open refresh token of %s: %w", cfg.ID, err)
	}
	return nil
}

func scanBackup(row pgx.Row) (*backup.Config, error) {
	var cfg backup.Config
	var provider string
	err := row.Scan(
		&cfg.ID, &cfg.UserID, &provider, &cfg.Enabled, &cfg.LastBackup, &cfg.Settings,
		&cfg.Credentials.AccessToken, &cfg.Credentials.RefreshToken, &cfg.Credentials.ExpiresAt,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cfg.Provider = backup.Provider(provider)
	return &cfg, nil
}
