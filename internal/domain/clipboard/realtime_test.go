package clipboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	gosync "clipsync/internal/domain/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type recordingConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return true
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) received(t *testing.T) []gosync.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []gosync.Envelope
	for _, f := range c.frames {
		var env gosync.Envelope
		require.NoError(t, json.Unmarshal(f, &env))
		if env.Event != gosync.EventSessionReady {
			out = append(out, env)
		}
	}
	return out
}

func TestService_Create_DeliversToOtherDevicesOfOwner(t *testing.T) {
	log := slog.Default()
	hub := gosync.NewHub(nil, nil, log)
	repo := new(MockRepository)
	svc := NewService(repo, hub, log)

	d1 := &recordingConn{id: "d1"}
	d2 := &recordingConn{id: "d2"}
	e := &recordingConn{id: "e"}
	hub.Join(1, d1, "")
	hub.Join(1, d2, "")
	hub.Join(2, e, "")

	repo.On("Create", mock.Anything, mock.AnythingOfType("*clipboard.Item")).Return(nil)

	ctx := gosync.WithOrigin(context.Background(), "d1")
	item, err := svc.Create(ctx, 1, CreateRequest{Content: "foo"})
	require.NoError(t, err)

	assert.Empty(t, d1.received(t))
	assert.Empty(t, e.received(t))

	events := d2.received(t)
	require.Len(t, events, 1)
	assert.Equal(t, gosync.EventClipboardNew, events[0].Event)

	var got Item
	require.NoError(t, json.Unmarshal(events[0].Data, &got))
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "foo", got.Content)
}
