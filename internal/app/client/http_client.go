package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clipsync/internal/domain/backup"
	"clipsync/internal/domain/clipboard"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/user"

	"golang.org/x/exp/slog"
)

const (
	userAgent        = "clipsync-cli/1.0"
	connectionHeader = "X-Connection-Id"
)

// APIError - ошибка, которую вернул сервер.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ошибка сервера (%d): %s", e.Status, e.Message)
}

// IsUnauthorized сообщает, что токен отсутствует или недействителен.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// IsNotFound сообщает, что сервер не нашел запрошенный объект.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// Token - ответ на успешный вход.
type Token struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	User      user.User `json:"user"`
}

// Device - устройство пользователя в ответе сервера.
type Device struct {
	device.Session
	Online bool `json:"online"`
}

type ListQuery struct {
	Limit  int
	Skip   int
	Type   clipboard.ItemType
	Pinned *bool
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type httpClient struct {
	client       *http.Client
	log          *slog.Logger
	baseURL      string
	token        string
	connectionID string
}

func newHTTPClient(baseURL string, timeout time.Duration, log *slog.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 4,
			},
		},
		log:     log,
		baseURL: baseURL,
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// SetConnectionID помечает запросы соединением реального времени, чтобы сервер
// не присылал этому же клиенту эхо его изменений.
func (h *httpClient) SetConnectionID(id string) {
	h.connectionID = id
}

func (h *httpClient) Health(ctx context.Context) (int, error) {
	var out struct {
		Status      string `json:"status"`
		Connections int    `json:"connections"`
	}
	if err := h.call(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return 0, err
	}
	return out.Connections, nil
}

func (h *httpClient) Register(ctx context.Context, creds user.Credentials) (int, error) {
	var out struct {
		ID int `json:"user_id"`
	}
	if err := h.call(ctx, http.MethodPost, "/api/auth/register", creds, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (h *httpClient) Login(ctx context.Context, creds user.Credentials) (*Token, error) {
	var out Token
	if err := h.call(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Logout(ctx context.Context) error {
	return h.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (h *httpClient) Profile(ctx context.Context) (*user.User, error) {
	var out user.User
	if err := h.call(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) ListItems(ctx context.Context, q ListQuery) (*clipboard.ListResult, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Skip > 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Type != "" {
		params.Set("type", q.Type.String())
	}
	if q.Pinned != nil {
		params.Set("pinned", strconv.FormatBool(*q.Pinned))
	}

	var out clipboard.ListResult
	if err := h.call(ctx, http.MethodGet, withQuery("/api/clipboard", params), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) CreateItem(ctx context.Context, req clipboard.CreateRequest) (*clipboard.Item, error) {
	var out clipboard.Item
	if err := h.call(ctx, http.MethodPost, "/api/clipboard", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) UpdateItem(ctx context.Context, id string, patch clipboard.Patch) (*clipboard.Item, error) {
	var out clipboard.Item
	if err := h.call(ctx, http.MethodPatch, "/api/clipboard/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) DeleteItem(ctx context.Context, id string) error {
	return h.call(ctx, http.MethodDelete, "/api/clipboard/"+url.PathEscape(id), nil, nil)
}

func (h *httpClient) UseItem(ctx context.Context, id string) (*clipboard.Item, error) {
	var out clipboard.Item
	if err := h.call(ctx, http.MethodPost, "/api/clipboard/"+url.PathEscape(id)+"/use", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) MostUsed(ctx context.Context, limit int) ([]clipboard.Item, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []clipboard.Item
	if err := h.call(ctx, http.MethodGet, withQuery("/api/clipboard/most-used", params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *httpClient) Search(ctx context.Context, query string, limit int) ([]clipboard.Item, error) {
	params := url.Values{"query": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []clipboard.Item
	if err := h.call(ctx, http.MethodGet, withQuery("/api/clipboard/search", params), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *httpClient) Stats(ctx context.Context) (*clipboard.Stats, error) {
	var out clipboard.Stats
	if err := h.call(ctx, http.MethodGet, "/api/clipboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) ListDevices(ctx context.Context) ([]Device, error) {
	var out []Device
	if err := h.call(ctx, http.MethodGet, "/api/devices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *httpClient) RemoveDevice(ctx context.Context, deviceID string) error {
	return h.call(ctx, http.MethodDelete, "/api/devices/"+url.PathEscape(deviceID), nil, nil)
}

func (h *httpClient) ListBackups(ctx context.Context) ([]backup.Config, error) {
	var out []backup.Config
	if err := h.call(ctx, http.MethodGet, "/api/backup", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *httpClient) CreateBackup(ctx context.Context, req backup.CreateConfigRequest) (*backup.Config, error) {
	var out backup.Config
	if err := h.call(ctx, http.MethodPost, "/api/backup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) UpdateBackup(ctx context.Context, id string, req backup.UpdateConfigRequest) (*backup.Config, error) {
	var out backup.Config
	if err := h.call(ctx, http.MethodPut, "/api/backup/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) DeleteBackup(ctx context.Context, id string) error {
	return h.call(ctx, http.MethodDelete, "/api/backup/"+url.PathEscape(id), nil, nil)
}

func (h *httpClient) TriggerBackup(ctx context.Context, id string) (*backup.Config, error) {
	var out backup.Config
	if err := h.call(ctx, http.MethodPost, "/api/backup/"+url.PathEscape(id)+"/trigger", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) call(ctx context.Context, method, path string, body, result any) error {
	resp, err := h.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, result)
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	if h.connectionID != "" {
		req.Header.Set(connectionHeader, h.connectionID)
	}

	h.log.Debug("Отправка запроса", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return resp, nil
}

// parseResponse разбирает конверт {success, data, error}.
func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "size", len(body))

	var env response
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("ошибка парсинга данных: %w", err)
		}
	}
	return nil
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
