package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clipsync/internal/domain/clipboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := NewMirror(filepath.Join(t.TempDir(), "clipboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func testItem(id, content string, created time.Time) clipboard.Item {
	return clipboard.Item{
		ID:        id,
		Content:   content,
		Type:      clipboard.TypeText,
		Tags:      []string{},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestMirror_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	item := testItem("a", "hello", time.Now())

	inserted, err := m.Insert(ctx, item)
	require.NoError(t, err)
	assert.True(t, inserted)

	item.Content = "changed"
	inserted, err = m.Insert(ctx, item)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMirror_UpsertIgnoresStaleVersion(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	now := time.Now().UTC()

	item := testItem("a", "hello", now)
	item.Metadata = &clipboard.Metadata{Source: "cli"}
	require.NoError(t, m.Upsert(ctx, item))

	newer := item
	newer.IsPinned = true
	newer.Tags = []string{"work"}
	newer.UpdatedAt = now.Add(time.Second)
	require.NoError(t, m.Upsert(ctx, newer))

	stale := item
	stale.IsPinned = false
	require.NoError(t, m.Upsert(ctx, stale))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.IsPinned)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "cli", got.Metadata.Source)
	assert.True(t, newer.UpdatedAt.Equal(got.UpdatedAt))
}

func TestMirror_ListOrder(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	base := time.Now()

	older := testItem("old", "1", base.Add(-time.Hour))
	older.IsPinned = true
	require.NoError(t, m.Upsert(ctx, older))
	require.NoError(t, m.Upsert(ctx, testItem("mid", "2", base.Add(-time.Minute))))
	require.NoError(t, m.Upsert(ctx, testItem("new", "3", base)))

	items, err := m.List(ctx, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"old", "new", "mid"}, ids)

	items, err = m.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMirror_DeleteAndReplace(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	now := time.Now()

	require.NoError(t, m.Upsert(ctx, testItem("a", "1", now)))
	require.NoError(t, m.Delete(ctx, "a"))
	require.NoError(t, m.Delete(ctx, "a"))

	_, err := m.Get(ctx, "a")
	assert.Error(t, err)

	require.NoError(t, m.Upsert(ctx, testItem("stale", "x", now)))
	require.NoError(t, m.Replace(ctx, []clipboard.Item{testItem("b", "2", now), testItem("c", "3", now)}))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = m.Get(ctx, "stale")
	assert.Error(t, err)
}

func TestMirror_DeletedItemIsNotRestored(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)
	now := time.Now()
	item := testItem("a", "1", now)

	_, err := m.Insert(ctx, item)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "a"))

	gone, err := m.Deleted(ctx, "a")
	require.NoError(t, err)
	assert.True(t, gone)

	inserted, err := m.Insert(ctx, item)
	require.NoError(t, err)
	assert.False(t, inserted)

	item.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, m.Upsert(ctx, item))

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// полная выгрузка с сервера сбрасывает отметки
	require.NoError(t, m.Replace(ctx, []clipboard.Item{item}))
	gone, err = m.Deleted(ctx, "a")
	require.NoError(t, err)
	assert.False(t, gone)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMirror_Fingerprint(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t)

	fp, err := m.LastFingerprint(ctx)
	require.NoError(t, err)
	assert.Empty(t, fp)

	require.NoError(t, m.SetLastFingerprint(ctx, "one"))
	require.NoError(t, m.SetLastFingerprint(ctx, "two"))

	fp, err = m.LastFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", fp)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(clipboard.TypeText, "hello")

	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint(clipboard.TypeText, "hello"))
	assert.NotEqual(t, a, Fingerprint(clipboard.TypeHTML, "hello"))
	assert.NotEqual(t, a, Fingerprint(clipboard.TypeText, "hello!"))
}
