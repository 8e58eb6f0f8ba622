package clipboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/clipboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID int, req clipboard.CreateRequest) (*clipboard.Item, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clipboard.Item), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, userID int, itemID string, patch clipboard.Patch) (*clipboard.Item, error) {
	args := m.Called(ctx, userID, itemID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clipboard.Item), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, userID int, itemID string) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockService) IncrementUsage(ctx context.Context, userID int, itemID string) (*clipboard.Item, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clipboard.Item), args.Error(1)
}

func (m *MockService) List(ctx context.Context, userID int, filter clipboard.ListFilter) (clipboard.ListResult, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(clipboard.ListResult), args.Error(1)
}

func (m *MockService) MostUsed(ctx context.Context, userID, limit int) ([]clipboard.Item, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]clipboard.Item), args.Error(1)
}

func (m *MockService) Search(ctx context.Context, userID int, query string, limit int) ([]clipboard.Item, error) {
	args := m.Called(ctx, userID, query, limit)
	return args.Get(0).([]clipboard.Item), args.Error(1)
}

func (m *MockService) Stats(ctx context.Context, userID int) (clipboard.Stats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(clipboard.Stats), args.Error(1)
}

func (m *MockService) Snapshot(ctx context.Context, userID int) ([]clipboard.Item, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]clipboard.Item), args.Error(1)
}

const (
	userID = 123
	itemID = "5f0c6a8e-8b1d-4a43-9e7a-3f7f0b9f6d11"
)

func newHandler(svc clipboard.Servicer) *Handler {
	envelope.Install()
	return NewHandler(svc, slog.Default(), nil)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var e *envelope.Error
	require.ErrorAs(t, err, &e)
	return e.GetStatus()
}

func TestHandler_Create(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		req := clipboard.CreateRequest{Content: "hello", Type: clipboard.TypeText}
		svc.On("Create", mock.Anything, userID, req).Return(&clipboard.Item{ID: itemID, Content: "hello"}, nil)

		out, err := newHandler(svc).create(authCtx, &createInput{Body: req})

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, out.Status)
		assert.True(t, out.Body.Success)
		assert.Equal(t, itemID, out.Body.Data.ID)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Create", mock.Anything, userID, mock.Anything).Return(nil, clipboard.ErrEmptyContent)

		_, err := newHandler(svc).create(authCtx, &createInput{})

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})

	t.Run("Unauthorized", func(t *testing.T) {
		svc := new(MockService)

		_, err := newHandler(svc).create(context.Background(), &createInput{})

		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_List(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)
	pinned := true

	svc := new(MockService)
	want := clipboard.ListFilter{Limit: 10, Skip: 5, Type: clipboard.TypeHTML, Pinned: &pinned}
	svc.On("List", mock.Anything, userID, want).
		Return(clipboard.ListResult{Items: []clipboard.Item{{ID: itemID}}, Total: 6}, nil)

	out, err := newHandler(svc).list(authCtx, &listInput{Limit: 10, Skip: 5, Type: "html", Pinned: "true"})

	require.NoError(t, err)
	assert.Equal(t, 6, out.Body.Data.Total)
	assert.Len(t, out.Body.Data.Items, 1)
	svc.AssertExpectations(t)
}

func TestHandler_Update(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)
	pinned := true
	patch := clipboard.Patch{IsPinned: &pinned}

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Update", mock.Anything, userID, itemID, patch).
			Return(&clipboard.Item{ID: itemID, IsPinned: true}, nil)

		out, err := newHandler(svc).update(authCtx, &updateInput{ID: itemID, Body: patch})

		require.NoError(t, err)
		assert.True(t, out.Body.Data.IsPinned)
	})

	t.Run("ForeignItemIsNotFound", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Update", mock.Anything, userID, itemID, patch).Return(nil, clipboard.ErrItemNotFound)

		_, err := newHandler(svc).update(authCtx, &updateInput{ID: itemID, Body: patch})

		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})
}

func TestHandler_Delete(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)

	svc := new(MockService)
	svc.On("Delete", mock.Anything, userID, itemID).Return(nil)

	out, err := newHandler(svc).delete(authCtx, &idInput{ID: itemID})

	require.NoError(t, err)
	assert.Equal(t, itemID, out.Body.Data.ID)
}

func TestHandler_Use(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)

	svc := new(MockService)
	svc.On("IncrementUsage", mock.Anything, userID, itemID).Return(&clipboard.Item{ID: itemID, UsageCount: 4}, nil)

	out, err := newHandler(svc).use(authCtx, &idInput{ID: itemID})

	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Body.Data.UsageCount)
}

func TestHandler_Search(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, userID, "HeLLo", 0).Return([]clipboard.Item{{ID: itemID}}, nil)

		out, err := newHandler(svc).search(authCtx, &searchInput{Query: "HeLLo"})

		require.NoError(t, err)
		assert.Len(t, out.Body.Data, 1)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Search", mock.Anything, userID, "", 0).Return([]clipboard.Item(nil), clipboard.ErrEmptyQuery)

		_, err := newHandler(svc).search(authCtx, &searchInput{Query: ""})

		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

func TestHandler_StatsAndMostUsed(t *testing.T) {
	authCtx := auth.WithUserID(context.Background(), userID)

	svc := new(MockService)
	svc.On("Stats", mock.Anything, userID).Return(clipboard.Stats{TotalItems: 2}, nil)
	svc.On("MostUsed", mock.Anything, userID, 3).Return([]clipboard.Item{}, errors.New("db down"))
	h := newHandler(svc)

	stats, err := h.stats(authCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Body.Data.TotalItems)

	_, err = h.mostUsed(authCtx, &mostUsedInput{Limit: 3})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}
