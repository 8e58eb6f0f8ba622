package clipboard

import (
	"context"
	"fmt"
	"strings"

	"clipsync/internal/domain/apperr"
	gosync "clipsync/internal/domain/sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const (
	DefaultListLimit     = 50
	DefaultSearchLimit   = 20
	DefaultMostUsedLimit = 10
	MaxLimit             = 500

	statsMostUsed = 5
	statsRecent   = 10
)

// Broadcaster доставляет события остальным устройствам пользователя.
type Broadcaster interface {
	Broadcast(userID int, event string, payload any, except string)
}

type Servicer interface {
	Create(ctx context.Context, userID int, req CreateRequest) (*Item, error)
	Update(ctx context.Context, userID int, itemID string, patch Patch) (*Item, error)
	Delete(ctx context.Context, userID int, itemID string) error
	IncrementUsage(ctx context.Context, userID int, itemID string) (*Item, error)
	List(ctx context.Context, userID int, filter ListFilter) (ListResult, error)
	MostUsed(ctx context.Context, userID, limit int) ([]Item, error)
	Search(ctx context.Context, userID int, query string, limit int) ([]Item, error)
	Stats(ctx context.Context, userID int) (Stats, error)
	Snapshot(ctx context.Context, userID int) ([]Item, error)
}

type Service struct {
	repo        Repository
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewService(repo Repository, broadcaster Broadcaster, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		log:         log.With("component", "clipboard_service"),
	}
}

// Create сохраняет новый элемент и рассылает clipboard:new остальным устройствам.
func (s *Service) Create(ctx context.Context, userID int, req CreateRequest) (*Item, error) {
	if req.Content == "" {
		return nil, ErrEmptyContent
	}
	if len(req.Content) > MaxContentSize {
		return nil, ErrContentTooLarge
	}
	// postgres TEXT не хранит NUL
	if strings.ContainsRune(req.Content, 0) {
		return nil, ErrNulContent
	}
	if req.Type == "" {
		req.Type = TypeText
	}
	if err := req.Type.Validate(); err != nil {
		return nil, apperr.New(apperr.ErrInvalidArgument, err.Error())
	}
	if req.Metadata != nil && req.Metadata.FileSize < 0 {
		return nil, apperr.New(apperr.ErrInvalidArgument, "file_size must not be negative")
	}

	item := &Item{
		ID:         uuid.NewString(),
		UserID:     userID,
		Content:    req.Content,
		Type:       req.Type,
		Metadata:   req.Metadata,
		Tags:       normalizeTags(req.Tags),
		DeviceInfo: req.DeviceInfo,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.notify(ctx, userID, gosync.EventClipboardNew, item)
	return item, nil
}

// Update безусловно выставляет переданные поля (last writer wins).
func (s *Service) Update(ctx context.Context, userID int, itemID string, patch Patch) (*Item, error) {
	itemID, ok := parseID(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if patch.Tags != nil {
		patch.Tags = normalizeTags(patch.Tags)
	}

	item, err := s.repo.Update(ctx, userID, itemID, patch)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, gosync.EventClipboardUpdate, item)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, userID int, itemID string) error {
	itemID, ok := parseID(itemID)
	if !ok {
		return ErrItemNotFound
	}
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		return err
	}

	s.notify(ctx, userID, gosync.EventClipboardDelete, gosync.ItemDeleted{ItemID: itemID})
	return nil
}

// IncrementUsage атомарно увеличивает счетчик. Событие не рассылается.
func (s *Service) IncrementUsage(ctx context.Context, userID int, itemID string) (*Item, error) {
	itemID, ok := parseID(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}
	return s.repo.IncrementUsage(ctx, userID, itemID)
}

func (s *Service) List(ctx context.Context, userID int, filter ListFilter) (ListResult, error) {
	limit, err := normalizeLimit(filter.Limit, DefaultListLimit)
	if err != nil {
		return ListResult{}, err
	}
	if filter.Skip < 0 {
		return ListResult{}, apperr.New(apperr.ErrInvalidArgument, "skip must not be negative")
	}
	if filter.Type != "" {
		if err := filter.Type.Validate(); err != nil {
			return ListResult{}, apperr.New(apperr.ErrInvalidArgument, err.Error())
		}
	}
	filter.Limit = limit

	items, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("list items: %w", err)
	}
	return ListResult{Items: nonNil(items), Total: total, Limit: limit, Skip: filter.Skip}, nil
}

func (s *Service) MostUsed(ctx context.Context, userID, limit int) ([]Item, error) {
	limit, err := normalizeLimit(limit, DefaultMostUsedLimit)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.MostUsed(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("most used items: %w", err)
	}
	return nonNil(items), nil
}

// Search ищет подстроку без учета регистра. Спецсимволы запроса не интерпретируются,
// пробелы считаются частью подстроки.
func (s *Service) Search(ctx context.Context, userID int, query string, limit int) ([]Item, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit, err := normalizeLimit(limit, DefaultSearchLimit)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return nonNil(items), nil
}

func (s *Service) Stats(ctx context.Context, userID int) (Stats, error) {
	counts, err := s.repo.CountByType(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("count items: %w", err)
	}
	mostUsed, err := s.repo.MostUsed(ctx, userID, statsMostUsed)
	if err != nil {
		return Stats{}, fmt.Errorf("most used items: %w", err)
	}
	recent, err := s.repo.Recent(ctx, userID, statsRecent)
	if err != nil {
		return Stats{}, fmt.Errorf("recent items: %w", err)
	}

	stats := Stats{
		ItemsByType: make(map[ItemType]int, len(Types)),
		MostUsed:    nonNil(mostUsed),
		RecentItems: nonNil(recent),
	}
	for _, t := range Types {
		stats.ItemsByType[t] = counts[t]
		stats.TotalItems += counts[t]
	}
	return stats, nil
}

// Snapshot возвращает все элементы пользователя, новые первыми.
func (s *Service) Snapshot(ctx context.Context, userID int) ([]Item, error) {
	items, err := s.repo.All(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot items: %w", err)
	}
	return nonNil(items), nil
}

// notify вызывается после успешной записи. Ошибки доставки запись не откатывают.
func (s *Service) notify(ctx context.Context, userID int, event string, payload any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(userID, event, payload, gosync.OriginFromContext(ctx))
}

// parseID приводит идентификатор к каноническому виду. Некорректный ID
// неотличим от отсутствующего.
func parseID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func normalizeLimit(limit, def int) (int, error) {
	switch {
	case limit < 0:
		return 0, apperr.New(apperr.ErrInvalidArgument, "limit must not be negative")
	case limit == 0:
		return def, nil
	case limit > MaxLimit:
		return MaxLimit, nil
	}
	return limit, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
