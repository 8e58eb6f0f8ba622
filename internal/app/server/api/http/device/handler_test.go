package device

import (
	"context"
	"net/http"
	"testing"
	"time"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, userID int, connID, addr string, d device.Descriptor) (*device.Session, error) {
	args := m.Called(ctx, userID, connID, addr, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Session), args.Error(1)
}

func (m *MockService) Heartbeat(ctx context.Context, connID string) error {
	return m.Called(ctx, connID).Error(0)
}

func (m *MockService) Lookup(ctx context.Context, connID string) (*device.Session, bool, error) {
	args := m.Called(ctx, connID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*device.Session), args.Bool(1), args.Error(2)
}

func (m *MockService) Release(ctx context.Context, connID string) error {
	return m.Called(ctx, connID).Error(0)
}

func (m *MockService) List(ctx context.Context, userID int) ([]device.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]device.Session), args.Error(1)
}

func (m *MockService) Remove(ctx context.Context, userID int, deviceID string) error {
	return m.Called(ctx, userID, deviceID).Error(0)
}

func (m *MockService) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type onlineSet map[string]bool

func (s onlineSet) IsOnline(_ int, connID string) bool { return s[connID] }

func TestHandler_List(t *testing.T) {
	envelope.Install()
	svc := new(MockService)
	now := time.Now()
	svc.On("List", mock.Anything, 7).Return([]device.Session{
		{DeviceID: "laptop", ConnectionID: "c1", LastActive: now},
		{DeviceID: "phone", ConnectionID: "stale", LastActive: now},
		{DeviceID: "tablet", LastActive: now},
	}, nil)

	h := NewHandler(svc, onlineSet{"c1": true}, slog.Default(), nil)
	out, err := h.list(auth.WithUserID(context.Background(), 7), nil)

	require.NoError(t, err)
	require.Len(t, out.Body.Data, 3)
	assert.True(t, out.Body.Data[0].Online)
	assert.False(t, out.Body.Data[1].Online)
	assert.False(t, out.Body.Data[2].Online)
}

func TestHandler_Remove(t *testing.T) {
	envelope.Install()
	svc := new(MockService)
	svc.On("Remove", mock.Anything, 7, "laptop").Return(nil)
	svc.On("Remove", mock.Anything, 7, "ghost").Return(device.ErrSessionNotFound)
	h := NewHandler(svc, nil, slog.Default(), nil)
	ctx := auth.WithUserID(context.Background(), 7)

	out, err := h.remove(ctx, &removeInput{DeviceID: "laptop"})
	require.NoError(t, err)
	assert.Equal(t, "laptop", out.Body.Data.DeviceID)

	_, err = h.remove(ctx, &removeInput{DeviceID: "ghost"})
	var e *envelope.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusNotFound, e.GetStatus())
}
