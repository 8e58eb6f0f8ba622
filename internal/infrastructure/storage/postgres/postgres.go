package postgres

import (
	"context"
	"errors"
	"fmt"

	"clipsync/internal/app/server/config"
	"clipsync/internal/infrastructure/migration"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

// New подключается к базе, проверяет соединение и применяет миграции.
func New(ctx context.Context, cfg config.DB, log *slog.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migration.NewMigration(cfg, migration.DefaultEngine).Up()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	log.Info("database ready", "schema_version", version)

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
