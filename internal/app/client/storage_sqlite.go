package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipsync/internal/domain/clipboard"

	_ "github.com/mattn/go-sqlite3"
)

const fingerprintKey = "last_fingerprint"

// Mirror - локальная копия истории буфера обмена. Повторное применение одного
// и того же события ничего не меняет. Удаленные элементы запоминаются, чтобы
// запоздавшее clipboard:update или повторный clipboard:new их не вернули.
type Mirror struct {
	db *sql.DB
}

func NewMirror(path string) (*Mirror, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	db.SetMaxOpenConns(1)

	m := &Mirror{db: db}
	if err := m.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}
	return m, nil
}

func (m *Mirror) Close() error {
	return m.db.Close()
}

func (m *Mirror) initTables() error {
	// Время хранится в наносекундах, чтобы сравнение updated_at было точным.
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			metadata TEXT,
			usage_count INTEGER NOT NULL DEFAULT 0,
			is_pinned INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_listing ON items(is_pinned DESC, created_at DESC);

		CREATE TABLE IF NOT EXISTS deleted_items (
			id TEXT PRIMARY KEY,
			deleted_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// Insert добавляет элемент, если его еще нет. Возвращает false для дубликата.
func (m *Mirror) Insert(ctx context.Context, item clipboard.Item) (bool, error) {
	args, err := itemArgs(item)
	if err != nil {
		return false, err
	}
	res, err := m.db.ExecContext(ctx, `
		INSERT INTO items (id, content, type, metadata, usage_count, is_pinned, tags, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM deleted_items WHERE id = ?)
		ON CONFLICT(id) DO NOTHING
	`, append(args, item.ID)...)
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения элемента: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Upsert сохраняет элемент, если он новее локальной версии и не был удален.
func (m *Mirror) Upsert(ctx context.Context, item clipboard.Item) error {
	args, err := itemArgs(item)
	if err != nil {
		return err
	}
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO items (id, content, type, metadata, usage_count, is_pinned, tags, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM deleted_items WHERE id = ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			type = excluded.type,
			metadata = excluded.metadata,
			usage_count = excluded.usage_count,
			is_pinned = excluded.is_pinned,
			tags = excluded.tags,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= items.updated_at
	`, append(args, item.ID)...)
	if err != nil {
		return fmt.Errorf("ошибка обновления элемента: %w", err)
	}
	return nil
}

// Delete удаляет элемент и оставляет отметку об удалении.
func (m *Mirror) Delete(ctx context.Context, id string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ошибка удаления элемента: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deleted_items (id, deleted_at) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("ошибка сохранения отметки удаления: %w", err)
	}
	return tx.Commit()
}

// Deleted сообщает, был ли элемент удален после последней полной выгрузки.
func (m *Mirror) Deleted(ctx context.Context, id string) (bool, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deleted_items WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка чтения отметки удаления: %w", err)
	}
	return n > 0, nil
}

// Replace заменяет содержимое зеркала полной выгрузкой с сервера. Выгрузка
// авторитетна, поэтому отметки об удалении сбрасываются.
func (m *Mirror) Replace(ctx context.Context, items []clipboard.Item) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("ошибка очистки зеркала: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM deleted_items`); err != nil {
		return fmt.Errorf("ошибка очистки отметок удаления: %w", err)
	}
	for _, item := range items {
		args, err := itemArgs(item)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO items (id, content, type, metadata, usage_count, is_pinned, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return fmt.Errorf("ошибка сохранения элемента %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

func (m *Mirror) Get(ctx context.Context, id string) (*clipboard.Item, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, content, type, metadata, usage_count, is_pinned, tags, created_at, updated_at
		FROM items WHERE id = ?
	`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("элемент не найден: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List возвращает элементы в порядке сервера: закрепленные первыми, затем новые.
func (m *Mirror) List(ctx context.Context, limit int) ([]clipboard.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, content, type, metadata, usage_count, is_pinned, tags, created_at, updated_at
		FROM items
		ORDER BY is_pinned DESC, created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения элементов: %w", err)
	}
	defer rows.Close()

	items := []clipboard.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (m *Mirror) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ошибка подсчета элементов: %w", err)
	}
	return n, nil
}

// LastFingerprint возвращает отпечаток последнего увиденного содержимого.
func (m *Mirror) LastFingerprint(ctx context.Context) (string, error) {
	var v string
	err := m.db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, fingerprintKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения состояния: %w", err)
	}
	return v, nil
}

func (m *Mirror) SetLastFingerprint(ctx context.Context, fp string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fingerprintKey, fp)
	if err != nil {
		return fmt.Errorf("ошибка сохранения состояния: %w", err)
	}
	return nil
}

func itemArgs(item clipboard.Item) ([]any, error) {
	var meta sql.NullString
	if item.Metadata != nil {
		data, err := json.Marshal(item.Metadata)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации метаданных: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации тегов: %w", err)
	}
	return []any{
		item.ID, item.Content, string(item.Type), meta, item.UsageCount, item.IsPinned,
		string(tagsJSON), item.CreatedAt.UnixNano(), item.UpdatedAt.UnixNano(),
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*clipboard.Item, error) {
	var (
		item                 clipboard.Item
		itemType, tags       string
		meta                 sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&item.ID, &item.Content, &itemType, &meta, &item.UsageCount,
		&item.IsPinned, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	item.Type = clipboard.ItemType(itemType)
	if meta.Valid {
		item.Metadata = &clipboard.Metadata{}
		if err := json.Unmarshal([]byte(meta.String), item.Metadata); err != nil {
			return nil, fmt.Errorf("ошибка парсинга метаданных: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("ошибка парсинга тегов: %w", err)
	}
	item.CreatedAt = time.Unix(0, createdAt).UTC()
	item.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &item, nil
}
