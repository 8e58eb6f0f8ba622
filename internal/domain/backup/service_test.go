package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/clipboard"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, cfg *Config) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockRepository) List(ctx context.Context, userID int) ([]Config, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Config), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID int, id string) (*Config, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Config), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, cfg *Config) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, userID int, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRepository) MarkExported(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) ListAutomatic(ctx context.Context) ([]Config, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Config), args.Error(1)
}

type MockSnapshotter struct {
	mock.Mock
}

func (m *MockSnapshotter) Snapshot(ctx context.Context, userID int) ([]clipboard.Item, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]clipboard.Item), args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Export(ctx context.Context, cfg Config, snap Snapshot) error {
	return m.Called(ctx, cfg, snap).Error(0)
}

var now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repo  *MockRepository
	items *MockSnapshotter
	sink  *MockSink
}

func newFixture() fixture {
	f := fixture{
		repo:  new(MockRepository),
		items: new(MockSnapshotter),
		sink:  new(MockSink),
	}
	f.svc = NewService(f.repo, f.items, map[Provider]Sink{
		ProviderDropbox: f.sink,
		ProviderFile:    f.sink,
	}, slog.Default())
	f.svc.now = func() time.Time { return now }
	return f
}

func TestService_Create(t *testing.T) {
	t.Run("new config is disabled", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Config) bool {
			return c.UserID == 1 && c.Provider == ProviderDropbox && !c.Enabled && c.Credentials.AccessToken == "tok"
		})).Return(nil)

		cfg, err := f.svc.Create(context.Background(), 1, CreateConfigRequest{
			Provider:    ProviderDropbox,
			Credentials: &ProviderCredentials{AccessToken: "tok"},
		})

		require.NoError(t, err)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, DefaultInterval, cfg.Interval())
	})

	t.Run("duplicate provider", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateProvider)

		_, err := f.svc.Create(context.Background(), 1, CreateConfigRequest{Provider: ProviderDropbox})

		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("invalid provider", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(context.Background(), 1, CreateConfigRequest{Provider: "ftp"})

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("provider without sink", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(context.Background(), 1, CreateConfigRequest{Provider: ProviderOneDrive})

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("interval too short", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(context.Background(), 1, CreateConfigRequest{
			Provider: ProviderFile,
			Settings: &Settings{IntervalMs: 1000},
		})

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})
}

func TestService_Trigger(t *testing.T) {
	id := uuid.NewString()
	items := []clipboard.Item{{ID: "b", Content: "newer"}, {ID: "a", Content: "older"}}

	t.Run("success records last backup", func(t *testing.T) {
		f := newFixture()
		cfg := &Config{ID: id, UserID: 1, Provider: ProviderFile, Enabled: true}
		f.repo.On("Get", mock.Anything, 1, id).Return(cfg, nil)
		f.items.On("Snapshot", mock.Anything, 1).Return(items, nil)
		f.sink.On("Export", mock.Anything, mock.Anything, Snapshot{Timestamp: now, ItemCount: 2, Items: items}).Return(nil)
		f.repo.On("MarkExported", mock.Anything, id, now).Return(nil)

		out, err := f.svc.Trigger(context.Background(), 1, id)

		require.NoError(t, err)
		require.NotNil(t, out.LastBackup)
		assert.Equal(t, now, *out.LastBackup)
		f.sink.AssertExpectations(t)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", mock.Anything, 1, id).Return(&Config{ID: id, Provider: ProviderFile}, nil)

		_, err := f.svc.Trigger(context.Background(), 1, id)

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		f.sink.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", mock.Anything, 2, id).Return(nil, ErrConfigNotFound)

		_, err := f.svc.Trigger(context.Background(), 2, id)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Trigger(context.Background(), 1, "../etc")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("remote provider without token", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", mock.Anything, 1, id).Return(&Config{ID: id, UserID: 1, Provider: ProviderDropbox, Enabled: true}, nil)

		_, err := f.svc.Trigger(context.Background(), 1, id)

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("sink failure is upstream", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", mock.Anything, 1, id).Return(&Config{
			ID: id, UserID: 1, Provider: ProviderDropbox, Enabled: true,
			Credentials: ProviderCredentials{AccessToken: "tok"},
		}, nil)
		f.items.On("Snapshot", mock.Anything, 1).Return([]clipboard.Item{}, nil)
		f.sink.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("401 unauthorized"))

		_, err := f.svc.Trigger(context.Background(), 1, id)

		assert.ErrorIs(t, err, apperr.ErrUpstream)
		f.repo.AssertNotCalled(t, "MarkExported", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Update(t *testing.T) {
	id := uuid.NewString()
	enabled := true

	f := newFixture()
	f.repo.On("Get", mock.Anything, 1, id).Return(&Config{ID: id, UserID: 1, Provider: ProviderFile}, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(c *Config) bool { return c.Enabled })).Return(nil)

	cfg, err := f.svc.Update(context.Background(), 1, id, UpdateConfigRequest{Enabled: &enabled})

	require.NoError(t, err)
	assert.True(t, cfg.Enabled)

	_, err = f.svc.Update(context.Background(), 1, id, UpdateConfigRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestService_RunDue(t *testing.T) {
	f := newFixture()
	last := now.Add(-2 * time.Hour)
	recent := now.Add(-time.Minute)
	configs := []Config{
		{ID: "due", UserID: 1, Provider: ProviderFile, Enabled: true,
			Settings: Settings{AutoBackup: true, IntervalMs: time.Hour.Milliseconds()}, LastBackup: &last},
		{ID: "fresh", UserID: 2, Provider: ProviderFile, Enabled: true,
			Settings: Settings{AutoBackup: true, IntervalMs: time.Hour.Milliseconds()}, LastBackup: &recent},
		{ID: "never", UserID: 3, Provider: ProviderFile, Enabled: true,
			Settings: Settings{AutoBackup: true}},
	}
	f.repo.On("ListAutomatic", mock.Anything).Return(configs, nil)
	f.items.On("Snapshot", mock.Anything, mock.Anything).Return([]clipboard.Item{}, nil)
	f.sink.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.On("MarkExported", mock.Anything, mock.Anything, now).Return(nil)

	f.svc.RunDue(context.Background())

	f.repo.AssertCalled(t, "MarkExported", mock.Anything, "due", now)
	f.repo.AssertCalled(t, "MarkExported", mock.Anything, "never", now)
	f.repo.AssertNotCalled(t, "MarkExported", mock.Anything, "fresh", mock.Anything)
}

func TestConfig_Due(t *testing.T) {
	last := now.Add(-DefaultInterval)
	assert.True(t, Config{Enabled: true, Settings: Settings{AutoBackup: true}, LastBackup: &last}.Due(now))
	assert.False(t, Config{Enabled: false, Settings: Settings{AutoBackup: true}}.Due(now))
	assert.False(t, Config{Enabled: true}.Due(now))
}
