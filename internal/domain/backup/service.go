package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clipsync/internal/domain/apperr"
	"clipsync/internal/domain/clipboard"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const schedulerParallelism = 4

// Snapshotter отдает все элементы пользователя для экспорта.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID int) ([]clipboard.Item, error)
}

type Servicer interface {
	List(ctx context.Context, userID int) ([]Config, error)
	Create(ctx context.Context, userID int, req CreateConfigRequest) (*Config, error)
	Update(ctx context.Context, userID int, id string, req UpdateConfigRequest) (*Config, error)
	Delete(ctx context.Context, userID int, id string) error
	Trigger(ctx context.Context, userID int, id string) (*Config, error)
}

type Service struct {
	repo  Repository
	items Snapshotter
	sinks map[Provider]Sink
	now   func() time.Time
	log   *slog.Logger
}

func NewService(repo Repository, items Snapshotter, sinks map[Provider]Sink, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		items: items,
		sinks: sinks,
		now:   time.Now,
		log:   log.With("component", "backup_service"),
	}
}

func (s *Service) List(ctx context.Context, userID int) ([]Config, error) {
	configs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list backup configs: %w", err)
	}
	if configs == nil {
		configs = []Config{}
	}
	return configs, nil
}

// Create добавляет настройку экспорта. Новая настройка выключена.
func (s *Service) Create(ctx context.Context, userID int, req CreateConfigRequest) (*Config, error) {
	if err := req.Provider.Validate(); err != nil {
		return nil, apperr.New(apperr.ErrInvalidArgument, err.Error())
	}
	if _, ok := s.sinks[req.Provider]; !ok {
		return nil, apperr.New(apperr.ErrInvalidArgument, fmt.Sprintf("provider %s is not available", req.Provider))
	}

	cfg := &Config{
		ID:       uuid.NewString(),
		UserID:   userID,
		Provider: req.Provider,
	}
	if req.Settings != nil {
		if err := validateSettings(*req.Settings); err != nil {
			return nil, err
		}
		cfg.Settings = *req.Settings
	}
	if req.Credentials != nil {
		cfg.Credentials = *req.Credentials
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		if errors.Is(err, ErrDuplicateProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("create backup config: %w", err)
	}
	return cfg, nil
}

func (s *Service) Update(ctx context.Context, userID int, id string, req UpdateConfigRequest) (*Config, error) {
	if req.Empty() {
		return nil, ErrEmptyUpdate
	}
	cfg, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.Settings != nil {
		if err := validateSettings(*req.Settings); err != nil {
			return nil, err
		}
		cfg.Settings = *req.Settings
	}
	if req.Credentials != nil {
		cfg.Credentials = *req.Credentials
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update backup config: %w", err)
	}
	return cfg, nil
}

func (s *Service) Delete(ctx context.Context, userID int, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrConfigNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

// Trigger выполняет экспорт немедленно. Ошибка хранилища возвращается как
// UpstreamFailure, повторов нет.
func (s *Service) Trigger(ctx context.Context, userID int, id string) (*Config, error) {
	cfg, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if err := s.export(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScheduler раз в tick выгружает настройки, у которых подошел срок.
func (s *Service) RunScheduler(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue выгружает все просроченные настройки. Ошибки логируются, следующая
// попытка будет на одном из следующих тиков.
func (s *Service) RunDue(ctx context.Context) {
	configs, err := s.repo.ListAutomatic(ctx)
	if err != nil {
		s.log.Error("list automatic backups", "error", err)
		return
	}

	now := s.now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(schedulerParallelism)
	for i := range configs {
		cfg := configs[i]
		if !cfg.Due(now) {
			continue
		}
		g.Go(func() error {
			if err := s.export(gctx, &cfg); err != nil {
				s.log.Warn("scheduled backup failed",
					"config_id", cfg.ID, "provider", cfg.Provider, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) export(ctx context.Context, cfg *Config) error {
	sink, ok := s.sinks[cfg.Provider]
	if !ok {
		return apperr.New(apperr.ErrInvalidArgument, fmt.Sprintf("provider %s is not available", cfg.Provider))
	}
	if cfg.Provider.Remote() && cfg.Credentials.AccessToken == "" {
		return ErrNoCredentials
	}

	items, err := s.items.Snapshot(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	now := s.now()
	snap := NewSnapshot(items, now)

	if err := sink.Export(ctx, *cfg, snap); err != nil {
		return apperr.New(apperr.ErrUpstream, fmt.Sprintf("%s export failed: %v", cfg.Provider, err))
	}

	if err := s.repo.MarkExported(ctx, cfg.ID, now); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	cfg.LastBackup = &now

	s.log.Info("backup exported",
		"config_id", cfg.ID, "user_id", cfg.UserID, "provider", cfg.Provider, "items", snap.ItemCount)
	return nil
}

func (s *Service) get(ctx context.Context, userID int, id string) (*Config, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrConfigNotFound
	}
	cfg, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get backup config: %w", err)
	}
	return cfg, nil
}

func validateSettings(st Settings) error {
	if st.IntervalMs < 0 {
		return apperr.New(apperr.ErrInvalidArgument, "interval_ms must not be negative")
	}
	if st.IntervalMs > 0 && time.Duration(st.IntervalMs)*time.Millisecond < minInterval {
		return apperr.New(apperr.ErrInvalidArgument, "interval_ms must be at least one minute")
	}
	return nil
}
