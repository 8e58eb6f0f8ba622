package postgres

import (
	"fmt"
	"strings"

	"clipsync/internal/domain/clipboard"
)

const itemColumns = `id, user_id, content, type, metadata, usage_count, is_pinned,
		       tags, device_info, created_at, updated_at`

const (
	orderListing = ` ORDER BY is_pinned DESC, created_at DESC, id DESC`
	orderUsage   = ` ORDER BY usage_count DESC, created_at DESC, id DESC`
	orderRecent  = ` ORDER BY created_at DESC, id DESC`
)

// listQuery строит запрос выборки и запрос подсчета с общими условиями.
func listQuery(userID int, f clipboard.ListFilter) (query, count string, args []any) {
	where := ` WHERE user_id = $1`
	args = []any{userID}
	argIndex := 2

	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(f.Type))
		argIndex++
	}
	if f.Pinned != nil {
		where += fmt.Sprintf(" AND is_pinned = $%d", argIndex)
		args = append(args, *f.Pinned)
		argIndex++
	}

	count = `SELECT COUNT(*) FROM clipboard_items` + where
	query = `SELECT ` + itemColumns + ` FROM clipboard_items` + where + orderListing +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	return query, count, args
}

// updateQuery строит UPDATE только для переданных полей.
func updateQuery(userID int, itemID string, p clipboard.Patch) (string, []any) {
	set := []string{"updated_at = NOW()"}
	var args []any
	argIndex := 1

	if p.IsPinned != nil {
		set = append(set, fmt.Sprintf("is_pinned = $%d", argIndex))
		args = append(args, *p.IsPinned)
		argIndex++
	}
	if p.Tags != nil {
		set = append(set, fmt.Sprintf("tags = $%d", argIndex))
		args = append(args, p.Tags)
		argIndex++
	}

	query := fmt.Sprintf(`UPDATE clipboard_items SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(set, ", "), argIndex, argIndex+1, itemColumns)
	args = append(args, itemID, userID)
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern превращает строку в ILIKE-шаблон поиска подстроки.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
