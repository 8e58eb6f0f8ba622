package postgres

import (
	"context"
	"errors"
	"fmt"

	"clipsync/internal/domain/clipboard"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"
)

type ItemRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewItemRepository(pool *pgxpool.Pool, log *slog.Logger) *ItemRepository {
	return &ItemRepository{
		pool: pool,
		log:  log.With("component", "item_repository"),
	}
}

func (r *ItemRepository) Create(ctx context.Context, item *clipboard.Item) error {
	const query = `
		INSERT INTO clipboard_items (id, user_id, content, type, metadata, tags, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING usage_count, is_pinned, created_at, updated_at`

	if item.Tags == nil {
		item.Tags = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		item.ID, item.UserID, item.Content, string(item.Type), item.Metadata, item.Tags, item.DeviceInfo,
	).Scan(&item.UsageCount, &item.IsPinned, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create item", "user_id", item.UserID, "error", err)
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, userID int, itemID string, patch clipboard.Patch) (*clipboard.Item, error) {
	if patch.Tags != nil && len(patch.Tags) == 0 {
		patch.Tags = []string{}
	}
	query, args := updateQuery(userID, itemID, patch)

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clipboard.ErrItemNotFound
	}
	if err != nil {
		r.log.Error("failed to update item", "item_id", itemID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, userID int, itemID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clipboard_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.log.Error("failed to delete item", "item_id", itemID, "user_id", userID, "error", err)
		return fmt.Errorf("delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return clipboard.ErrItemNotFound
	}
	return nil
}

// IncrementUsage увеличивает счетчик одним оператором, без чтения.
func (r *ItemRepository) IncrementUsage(ctx context.Context, userID int, itemID string) (*clipboard.Item, error) {
	query := `
		UPDATE clipboard_items
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query, itemID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clipboard.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("increment usage: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) List(ctx context.Context, userID int, filter clipboard.ListFilter) ([]clipboard.Item, int, error) {
	query, count, args := listQuery(userID, filter)

	var total int
	if err := r.pool.QueryRow(ctx, count, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items, err := r.query(ctx, query, append(args, filter.Limit, filter.Skip)...)
	if err != nil {
		r.log.Error("failed to list items", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

func (r *ItemRepository) MostUsed(ctx context.Context, userID, limit int) ([]clipboard.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items WHERE user_id = $1` + orderUsage + ` LIMIT $2`
	return r.query(ctx, query, userID, limit)
}

func (r *ItemRepository) Search(ctx context.Context, userID int, q string, limit int) ([]clipboard.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items
		WHERE user_id = $1 AND content ILIKE $2 ESCAPE '\'` + orderUsage + ` LIMIT $3`
	return r.query(ctx, query, userID, containsPattern(q), limit)
}

func (r *ItemRepository) Recent(ctx context.Context, userID, limit int) ([]clipboard.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items WHERE user_id = $1` + orderRecent + ` LIMIT $2`
	return r.query(ctx, query, userID, limit)
}

func (r *ItemRepository) All(ctx context.Context, userID int) ([]clipboard.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM clipboard_items WHERE user_id = $1` + orderRecent
	return r.query(ctx, query, userID)
}

func (r *ItemRepository) CountByType(ctx context.Context, userID int) (map[clipboard.ItemType]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, COUNT(*) FROM clipboard_items WHERE user_id = $1 GROUP BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[clipboard.ItemType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[clipboard.ItemType(typ)] = n
	}
	return counts, rows.Err()
}

func (r *ItemRepository) query(ctx context.Context, query string, args ...any) ([]clipboard.Item, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []clipboard.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*clipboard.Item, error) {
	var item clipboard.Item
	var typ string
	err := row.Scan(
		&item.ID, &item.UserID, &item.Content, &typ, &item.Metadata, &item.UsageCount,
		&item.IsPinned, &item.Tags, &item.DeviceInfo, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Type = clipboard.ItemType(typ)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}
