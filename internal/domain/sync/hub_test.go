package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gosync "sync"
	"testing"

	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type fakeConn struct {
	id     string
	limit  int
	mu     gosync.Mutex
	frames [][]byte
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, limit: 64}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || len(c.frames) >= c.limit {
		return false
	}
	c.frames = append(c.frames, frame)
	return true
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// events возвращает события, полученные после session:ready.
func (c *fakeConn) events(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Envelope
	for _, f := range c.frames {
		var env Envelope
		require.NoError(t, json.Unmarshal(f, &env))
		if env.Event == EventSessionReady {
			continue
		}
		out = append(out, env)
	}
	return out
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

type MockPresence struct {
	mock.Mock
}

func (m *MockPresence) Register(ctx context.Context, userID int, connID, addr string, d device.Descriptor) (*device.Session, error) {
	args := m.Called(ctx, userID, connID, addr, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Session), args.Error(1)
}

func (m *MockPresence) Heartbeat(ctx context.Context, connID string) error {
	args := m.Called(ctx, connID)
	return args.Error(0)
}

func (m *MockPresence) Lookup(ctx context.Context, connID string) (*device.Session, bool, error) {
	args := m.Called(ctx, connID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*device.Session), args.Bool(1), args.Error(2)
}

func (m *MockPresence) Release(ctx context.Context, connID string) error {
	args := m.Called(ctx, connID)
	return args.Error(0)
}

func newTestHub() (*Hub, *MockVerifier, *MockPresence) {
	v := new(MockVerifier)
	p := new(MockPresence)
	return NewHub(v, p, slog.Default()), v, p
}

func registerDevice(t *testing.T, h *Hub, p *MockPresence, s *Session, deviceID string) {
	t.Helper()
	d := device.Descriptor{DeviceID: deviceID, DeviceName: deviceID, Platform: "linux"}
	p.On("Register", mock.Anything, s.UserID(), s.ID(), mock.Anything, d).
		Return(&device.Session{UserID: s.UserID(), DeviceID: deviceID, DeviceName: deviceID, ConnectionID: s.ID()}, nil).Once()
	require.NoError(t, h.RegisterDevice(context.Background(), s, d))
}

func TestHub_Connect(t *testing.T) {
	t.Run("valid credential joins room", func(t *testing.T) {
		h, v, _ := newTestHub()
		v.On("Validate", mock.Anything, "good").Return(42, nil)
		conn := newFakeConn("c1")

		s, err := h.Connect(context.Background(), "good", conn, "127.0.0.1")

		require.NoError(t, err)
		assert.Equal(t, 42, s.UserID())
		assert.Equal(t, StateAuthenticated, s.State())
		assert.True(t, h.IsOnline(42, "c1"))
		assert.Equal(t, 1, h.Connections())

		require.Len(t, conn.frames, 1)
		var env Envelope
		require.NoError(t, json.Unmarshal(conn.frames[0], &env))
		assert.Equal(t, EventSessionReady, env.Event)
		assert.JSONEq(t, `{"connection_id":"c1"}`, string(env.Data))
	})

	t.Run("invalid credential", func(t *testing.T) {
		h, v, _ := newTestHub()
		v.On("Validate", mock.Anything, "bad").Return(0, apperr.New(apperr.ErrUnauthenticated, "invalid session"))

		s, err := h.Connect(context.Background(), "bad", newFakeConn("c1"), "")

		assert.Nil(t, s)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.False(t, h.IsOnline(0, "c1"))
	})

	t.Run("verifier outage is not unauthenticated", func(t *testing.T) {
		h, v, _ := newTestHub()
		v.On("Validate", mock.Anything, "tok").Return(0, errors.New("connection refused"))

		_, err := h.Authenticate(context.Background(), "tok")

		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("empty credential", func(t *testing.T) {
		h, v, _ := newTestHub()

		_, err := h.Authenticate(context.Background(), "")

		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		v.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})
}

func TestHub_RegisterDevice_BroadcastsToOthers(t *testing.T) {
	h, _, p := newTestHub()
	a, b := newFakeConn("a"), newFakeConn("b")
	sa := h.Join(1, a, "")
	sb := h.Join(1, b, "")

	registerDevice(t, h, p, sa, "laptop")

	assert.Equal(t, StateRegistered, sa.State())
	assert.Empty(t, a.events(t))
	events := b.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, EventDeviceConnected, events[0].Event)
	assert.Contains(t, string(events[0].Data), `"device_id":"laptop"`)
	assert.Equal(t, StateAuthenticated, sb.State())
}

func TestHub_RegisterDevice_InvalidDescriptor(t *testing.T) {
	h, _, p := newTestHub()
	s := h.Join(1, newFakeConn("a"), "")
	p.On("Register", mock.Anything, 1, "a", "", mock.Anything).
		Return(nil, apperr.New(apperr.ErrInvalidArgument, "device_name is required"))

	err := h.RegisterDevice(context.Background(), s, device.Descriptor{DeviceID: "x"})

	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestHub_RegisterDevice_OneDevicePerConnection(t *testing.T) {
	h, _, p := newTestHub()
	s := h.Join(1, newFakeConn("a"), "")
	registerDevice(t, h, p, s, "laptop")

	// повторная регистрация того же устройства обновляет запись
	registerDevice(t, h, p, s, "laptop")
	assert.Equal(t, "laptop", s.DeviceID())

	err := h.RegisterDevice(context.Background(), s, device.Descriptor{DeviceID: "phone", DeviceName: "phone", Platform: "ios"})

	assert.ErrorIs(t, err, ErrDeviceBound)
	assert.Equal(t, "laptop", s.DeviceID())
	p.AssertNumberOfCalls(t, "Register", 2)
}

func TestHub_RegisterDevice_FailedRegisterCanRetry(t *testing.T) {
	h, _, p := newTestHub()
	s := h.Join(1, newFakeConn("a"), "")
	p.On("Register", mock.Anything, 1, "a", "", device.Descriptor{DeviceID: "x"}).
		Return(nil, apperr.New(apperr.ErrInvalidArgument, "device_name is required")).Once()

	err := h.RegisterDevice(context.Background(), s, device.Descriptor{DeviceID: "x"})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Empty(t, s.DeviceID())

	registerDevice(t, h, p, s, "phone")
	assert.Equal(t, "phone", s.DeviceID())
}

func TestHub_Broadcast_NoEcho(t *testing.T) {
	h, _, p := newTestHub()
	conns := []*fakeConn{newFakeConn("a"), newFakeConn("b"), newFakeConn("c")}
	var sessions []*Session
	for _, c := range conns {
		sessions = append(sessions, h.Join(1, c, ""))
	}
	for i, s := range sessions {
		registerDevice(t, h, p, s, fmt.Sprintf("dev-%d", i))
	}
	for _, c := range conns {
		c.frames = nil
	}

	h.Broadcast(1, EventClipboardNew, map[string]string{"id": "item-1"}, "a")

	assert.Empty(t, conns[0].events(t))
	for _, c := range conns[1:] {
		events := c.events(t)
		require.Len(t, events, 1, c.id)
		assert.Equal(t, EventClipboardNew, events[0].Event)
		assert.JSONEq(t, `{"id":"item-1"}`, string(events[0].Data))
	}
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	h, _, _ := newTestHub()
	mine := newFakeConn("mine")
	theirs := newFakeConn("theirs")
	h.Join(1, mine, "")
	h.Join(2, theirs, "")
	mine.frames, theirs.frames = nil, nil

	h.Broadcast(1, EventClipboardDelete, ItemDeleted{ItemID: "x"}, "")

	assert.Len(t, mine.events(t), 1)
	assert.Empty(t, theirs.events(t))
}

func TestHub_Broadcast_FullQueueDropsOnlyForThatMember(t *testing.T) {
	h, _, _ := newTestHub()
	slow := newFakeConn("slow")
	slow.limit = 1
	fast := newFakeConn("fast")
	h.Join(1, slow, "")
	h.Join(1, fast, "")

	h.Broadcast(1, EventClipboardNew, "one", "")
	h.Broadcast(1, EventClipboardNew, "two", "")

	assert.Empty(t, slow.events(t))
	assert.Len(t, fast.events(t), 2)
}

func TestHub_Relay(t *testing.T) {
	h, _, _ := newTestHub()
	a, b := newFakeConn("a"), newFakeConn("b")
	sa := h.Join(1, a, "")
	h.Join(1, b, "")

	err := h.Dispatch(context.Background(), sa, []byte(`{"event":"clipboard:sync","data":{"content":"hi","type":"text"}}`))

	require.NoError(t, err)
	assert.Empty(t, a.events(t))
	events := b.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, EventClipboardNew, events[0].Event)
	assert.JSONEq(t, `{"content":"hi","type":"text"}`, string(events[0].Data))
}

func TestHub_Disconnect(t *testing.T) {
	t.Run("registered device notifies peers and releases", func(t *testing.T) {
		h, _, p := newTestHub()
		a, b := newFakeConn("a"), newFakeConn("b")
		sa := h.Join(1, a, "")
		h.Join(1, b, "")
		registerDevice(t, h, p, sa, "phone")
		b.frames = nil

		p.On("Lookup", mock.Anything, "a").
			Return(&device.Session{DeviceID: "phone", DeviceName: "Pixel"}, true, nil).Once()
		p.On("Release", mock.Anything, "a").Return(nil).Once()

		h.Disconnect(context.Background(), sa)
		h.Disconnect(context.Background(), sa)

		assert.Equal(t, StateClosed, sa.State())
		assert.True(t, a.closed)
		assert.False(t, h.IsOnline(1, "a"))
		events := b.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, EventDeviceDisconnected, events[0].Event)
		assert.JSONEq(t, `{"device_id":"phone","device_name":"Pixel"}`, string(events[0].Data))
		p.AssertExpectations(t)
	})

	t.Run("unbound connection is a silent no-op", func(t *testing.T) {
		h, _, p := newTestHub()
		a, b := newFakeConn("a"), newFakeConn("b")
		sa := h.Join(1, a, "")
		h.Join(1, b, "")
		b.frames = nil
		p.On("Lookup", mock.Anything, "a").Return(nil, false, nil).Once()

		h.Disconnect(context.Background(), sa)

		assert.Empty(t, b.events(t))
		p.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("closed connection receives no broadcasts", func(t *testing.T) {
		h, _, p := newTestHub()
		a := newFakeConn("a")
		sa := h.Join(1, a, "")
		p.On("Lookup", mock.Anything, "a").Return(nil, false, nil)
		h.Disconnect(context.Background(), sa)
		a.closed = false
		a.frames = nil

		h.Broadcast(1, EventClipboardNew, "x", "")

		assert.Empty(t, a.frames)
	})
}

func TestHub_RegisterAfterClose_Rejected(t *testing.T) {
	h, _, p := newTestHub()
	s := h.Join(1, newFakeConn("a"), "")
	p.On("Lookup", mock.Anything, "a").Return(nil, false, nil)
	h.Disconnect(context.Background(), s)

	err := h.RegisterDevice(context.Background(), s, device.Descriptor{DeviceID: "d", DeviceName: "d", Platform: "p"})

	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	p.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHub_Dispatch(t *testing.T) {
	h, _, p := newTestHub()
	s := h.Join(1, newFakeConn("a"), "")
	p.On("Heartbeat", mock.Anything, "a").Return(nil)

	assert.NoError(t, h.Dispatch(context.Background(), s, []byte(`{"event":"heartbeat"}`)))
	assert.ErrorIs(t, h.Dispatch(context.Background(), s, []byte(`not json`)), apperr.ErrInvalidArgument)
	assert.ErrorIs(t, h.Dispatch(context.Background(), s, []byte(`{"event":"nope"}`)), apperr.ErrInvalidArgument)
	assert.ErrorIs(t, h.Dispatch(context.Background(), s, []byte(`{"event":"register:device"}`)), apperr.ErrInvalidArgument)
	p.AssertCalled(t, "Heartbeat", mock.Anything, "a")
}

func TestHub_ConcurrentJoinLeave(t *testing.T) {
	h, _, p := newTestHub()
	p.On("Lookup", mock.Anything, mock.Anything).Return(nil, false, nil)

	var wg gosync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := h.Join(1, newFakeConn(fmt.Sprintf("c%d", i)), "")
			h.Broadcast(1, EventClipboardNew, i, s.ID())
			h.Disconnect(context.Background(), s)
		}(i)
	}
	wg.Wait()

	assert.Empty(t, h.rooms.members(1))
	assert.Zero(t, h.Connections())
}
