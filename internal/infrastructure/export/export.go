// Package export содержит реализации backup.Sink для облачных хранилищ и
// локального каталога.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clipsync/internal/domain/backup"
)

const (
	DefaultGoogleDriveURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart"
	DefaultOneDriveURL    = "https://graph.microsoft.com/v1.0/me/drive"
	DefaultDropboxURL     = "https://content.dropboxapi.com/2/files/upload"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Options задает адреса API и HTTP-клиент. Пустые поля заменяются значениями
// по умолчанию.
type Options struct {
	Client         *http.Client
	GoogleDriveURL string
	OneDriveURL    string
	DropboxURL     string
	Dir            string
}

// Sinks собирает все поддерживаемые хранилища. Локальный каталог
// подключается, только если задан Dir.
func Sinks(opts Options) map[backup.Provider]backup.Sink {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	sinks := map[backup.Provider]backup.Sink{
		backup.ProviderGoogleDrive: &GoogleDrive{client: client, url: or(opts.GoogleDriveURL, DefaultGoogleDriveURL)},
		backup.ProviderOneDrive:    &OneDrive{client: client, baseURL: or(opts.OneDriveURL, DefaultOneDriveURL)},
		backup.ProviderDropbox:     &Dropbox{client: client, url: or(opts.DropboxURL, DefaultDropboxURL)},
	}
	if opts.Dir != "" {
		sinks[backup.ProviderFile] = NewFile(opts.Dir)
	}
	return sinks
}

func fileName(at time.Time) string {
	return fmt.Sprintf("clipboard-backup-%s.json", at.UTC().Format("2006-01-02T15-04-05.000Z"))
}

func encode(snap backup.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

func do(ctx context.Context, client *http.Client, req *http.Request, token string) error {
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
