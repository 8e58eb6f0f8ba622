package backup

import (
	"fmt"
	"time"

	"clipsync/internal/domain/clipboard"

	"github.com/danielgtaylor/huma/v2"
)

const (
	DefaultInterval = 24 * time.Hour
	minInterval     = time.Minute
)

type Provider string

const (
	ProviderGoogleDrive Provider = "google-drive"
	ProviderOneDrive    Provider = "onedrive"
	ProviderDropbox     Provider = "dropbox"
	ProviderFile        Provider = "file"
)

func (Provider) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type: "string",
		Enum: []any{
			string(ProviderGoogleDrive),
			string(ProviderOneDrive),
			string(ProviderDropbox),
			string(ProviderFile),
		},
		Description: "Хранилище для резервных копий",
		Examples:    []any{ProviderDropbox},
	}
}

func (p Provider) Validate() error {
	switch p {
	case ProviderGoogleDrive, ProviderOneDrive, ProviderDropbox, ProviderFile:
		return nil
	}
	return fmt.Errorf("неизвестный провайдер: %s", p)
}

// Remote сообщает, нужен ли провайдеру access token.
func (p Provider) Remote() bool {
	return p != ProviderFile
}

type Settings struct {
	FolderID   string `json:"folder_id,omitempty" doc:"Папка или путь в хранилище"`
	AutoBackup bool   `json:"auto_backup"`
	IntervalMs int64  `json:"interval_ms,omitempty" doc:"Интервал автоматического бэкапа, мс"`
}

type ProviderCredentials struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Config - настройка экспорта пользователя. Пара (UserID, Provider) уникальна.
type Config struct {
	ID          string              `json:"id"`
	UserID      int                 `json:"-"`
	Provider    Provider            `json:"provider"`
	Enabled     bool                `json:"enabled"`
	LastBackup  *time.Time          `json:"last_backup,omitempty"`
	Settings    Settings            `json:"settings"`
	Credentials ProviderCredentials `json:"-"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (c Config) Interval() time.Duration {
	if c.Settings.IntervalMs <= 0 {
		return DefaultInterval
	}
	return time.Duration(c.Settings.IntervalMs) * time.Millisecond
}

// Due сообщает, пора ли выполнять автоматический экспорт.
func (c Config) Due(now time.Time) bool {
	if !c.Enabled || !c.Settings.AutoBackup {
		return false
	}
	if c.LastBackup == nil {
		return true
	}
	return !now.Before(c.LastBackup.Add(c.Interval()))
}

// Snapshot - содержимое одного экспорта, элементы от новых к старым.
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	ItemCount int              `json:"item_count"`
	Items     []clipboard.Item `json:"items"`
}

func NewSnapshot(items []clipboard.Item, at time.Time) Snapshot {
	if items == nil {
		items = []clipboard.Item{}
	}
	return Snapshot{Timestamp: at.UTC(), ItemCount: len(items), Items: items}
}
