package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"clipsync/internal/app/client/config"
	"clipsync/internal/domain/backup"
	"clipsync/internal/domain/clipboard"
	"clipsync/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

const pullPageSize = 500

var (
	ErrNotAuthenticated = errors.New("требуется вход: выполните clipsync auth login")
	ErrDuplicateCapture = errors.New("это содержимое уже отправлено")
)

// App - клиент clipsync: REST API, локальное зеркало и канал реального времени.
type App struct {
	config   *config.Config
	log      *slog.Logger
	http     *httpClient
	mirror   *Mirror
	deviceID string
}

// History - страница истории. Offline означает, что сервер недоступен и
// данные взяты из локального зеркала.
type History struct {
	Items   []clipboard.Item
	Total   int
	Offline bool
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	mirror, err := NewMirror(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации локального зеркала: %w", err)
	}

	deviceID, err := loadDeviceID(cfg.DeviceIDPath)
	if err != nil {
		mirror.Close()
		return nil, fmt.Errorf("ошибка загрузки ID устройства: %w", err)
	}

	app := &App{
		config:   cfg,
		log:      log.With("component", "client"),
		http:     newHTTPClient(cfg.BaseURL(), cfg.RequestTimeout, log),
		mirror:   mirror,
		deviceID: deviceID,
	}

	if token, err := app.GetToken(); err == nil && token != "" {
		app.http.SetToken(token)
		log.Debug("Токен загружен из файла")
	}

	return app, nil
}

func (a *App) Close() error {
	return a.mirror.Close()
}

func (a *App) DeviceID() string {
	return a.deviceID
}

func (a *App) Authenticated() bool {
	return a.http.token != ""
}

// GetToken читает сохраненный токен.
func (a *App) GetToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken сохраняет токен с правами 0600.
func (a *App) SaveToken(token string) error {
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	a.http.SetToken(token)
	return nil
}

func (a *App) ClearToken() error {
	a.http.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

func (a *App) CheckConnection(ctx context.Context) (int, error) {
	return a.http.Health(ctx)
}

func (a *App) Register(ctx context.Context, creds user.Credentials) (int, error) {
	return a.http.Register(ctx, creds)
}

// Login выполняет вход и сохраняет токен.
func (a *App) Login(ctx context.Context, creds user.Credentials) (*Token, error) {
	token, err := a.http.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := a.SaveToken(token.Token); err != nil {
		return nil, err
	}
	return token, nil
}

// Logout отзывает токен на сервере и удаляет его локально, даже если сервер
// недоступен.
func (a *App) Logout(ctx context.Context) error {
	if !a.Authenticated() {
		return ErrNotAuthenticated
	}
	remoteErr := a.http.Logout(ctx)
	if err := a.ClearToken(); err != nil {
		return err
	}
	if remoteErr != nil && !IsUnauthorized(remoteErr) {
		return fmt.Errorf("токен удален локально, но не отозван на сервере: %w", remoteErr)
	}
	return nil
}

func (a *App) Profile(ctx context.Context) (*user.User, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.Profile(ctx)
}

// Capture отправляет содержимое на сервер. Содержимое, совпадающее с последним
// увиденным, не отправляется повторно.
func (a *App) Capture(ctx context.Context, req clipboard.CreateRequest) (*clipboard.Item, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = clipboard.TypeText
	}

	fp := Fingerprint(req.Type, req.Content)
	last, err := a.mirror.LastFingerprint(ctx)
	if err != nil {
		return nil, err
	}
	if fp == last {
		return nil, ErrDuplicateCapture
	}

	item, err := a.http.CreateItem(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := a.mirror.Insert(ctx, *item); err != nil {
		a.log.Warn("Не удалось сохранить элемент в зеркало", "id", item.ID, "error", err)
	}
	if err := a.mirror.SetLastFingerprint(ctx, fp); err != nil {
		a.log.Warn("Не удалось сохранить отпечаток", "error", err)
	}
	return item, nil
}

// History возвращает страницу истории с сервера и обновляет зеркало. Если
// сервер недоступен, отдает локальную копию.
func (a *App) History(ctx context.Context, q ListQuery) (*History, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}

	res, err := a.http.ListItems(ctx, q)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) {
			return nil, err
		}
		a.log.Warn("Сервер недоступен, используется локальное зеркало", "error", err)
		limit := q.Limit
		if limit <= 0 {
			limit = 50
		}
		items, lerr := a.mirror.List(ctx, limit)
		if lerr != nil {
			return nil, errors.Join(err, lerr)
		}
		return &History{Items: items, Total: len(items), Offline: true}, nil
	}

	for _, item := range res.Items {
		if err := a.mirror.Upsert(ctx, item); err != nil {
			a.log.Warn("Не удалось обновить зеркало", "id", item.ID, "error", err)
		}
	}
	return &History{Items: res.Items, Total: res.Total}, nil
}

// Pull загружает всю историю и заменяет ею локальное зеркало.
func (a *App) Pull(ctx context.Context) (int, error) {
	if err := a.requireAuth(); err != nil {
		return 0, err
	}

	var all []clipboard.Item
	for skip := 0; ; skip += pullPageSize {
		res, err := a.http.ListItems(ctx, ListQuery{Limit: pullPageSize, Skip: skip})
		if err != nil {
			return 0, err
		}
		all = append(all, res.Items...)
		if len(res.Items) < pullPageSize || len(all) >= res.Total {
			break
		}
	}

	if err := a.mirror.Replace(ctx, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

func (a *App) SetPinned(ctx context.Context, id string, pinned bool) (*clipboard.Item, error) {
	return a.update(ctx, id, clipboard.Patch{IsPinned: &pinned})
}

// SetTags заменяет теги элемента. Пустой список очищает теги.
func (a *App) SetTags(ctx context.Context, id string, tags []string) (*clipboard.Item, error) {
	if tags == nil {
		tags = []string{}
	}
	return a.update(ctx, id, clipboard.Patch{Tags: tags})
}

func (a *App) Remove(ctx context.Context, id string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if err := a.http.DeleteItem(ctx, id); err != nil {
		return err
	}
	return a.mirror.Delete(ctx, id)
}

// Use отмечает использование элемента и запоминает его содержимое как
// последнее увиденное, чтобы оно не вернулось на сервер как новое.
func (a *App) Use(ctx context.Context, id string) (*clipboard.Item, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	item, err := a.http.UseItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.mirror.Upsert(ctx, *item); err != nil {
		a.log.Warn("Не удалось обновить зеркало", "id", item.ID, "error", err)
	}
	if err := a.mirror.SetLastFingerprint(ctx, Fingerprint(item.Type, item.Content)); err != nil {
		a.log.Warn("Не удалось сохранить отпечаток", "error", err)
	}
	return item, nil
}

func (a *App) Search(ctx context.Context, query string, limit int) ([]clipboard.Item, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.Search(ctx, query, limit)
}

func (a *App) MostUsed(ctx context.Context, limit int) ([]clipboard.Item, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.MostUsed(ctx, limit)
}

func (a *App) Stats(ctx context.Context) (*clipboard.Stats, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.Stats(ctx)
}

func (a *App) Devices(ctx context.Context) ([]Device, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.ListDevices(ctx)
}

func (a *App) RemoveDevice(ctx context.Context, deviceID string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	return a.http.RemoveDevice(ctx, deviceID)
}

func (a *App) Backups(ctx context.Context) ([]backup.Config, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.ListBackups(ctx)
}

func (a *App) AddBackup(ctx context.Context, req backup.CreateConfigRequest) (*backup.Config, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.CreateBackup(ctx, req)
}

func (a *App) UpdateBackup(ctx context.Context, id string, req backup.UpdateConfigRequest) (*backup.Config, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.UpdateBackup(ctx, id, req)
}

func (a *App) RemoveBackup(ctx context.Context, id string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	return a.http.DeleteBackup(ctx, id)
}

func (a *App) TriggerBackup(ctx context.Context, id string) (*backup.Config, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	return a.http.TriggerBackup(ctx, id)
}

func (a *App) update(ctx context.Context, id string, patch clipboard.Patch) (*clipboard.Item, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	item, err := a.http.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := a.mirror.Upsert(ctx, *item); err != nil {
		a.log.Warn("Не удалось обновить зеркало", "id", item.ID, "error", err)
	}
	return item, nil
}

func (a *App) requireAuth() error {
	if !a.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// loadDeviceID возвращает постоянный ID этого устройства, создавая его при
// первом запуске.
func loadDeviceID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id), 0600); err != nil {
		return "", err
	}
	return id, nil
}
