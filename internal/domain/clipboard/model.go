package clipboard

import "time"

// MaxContentSize ограничивает размер содержимого одного элемента (10 MiB).
const MaxContentSize = 10 << 20

type Item struct {
	ID         string      `json:"id"`
	UserID     int         `json:"-"`
	Content    string      `json:"content"`
	Type       ItemType    `json:"type"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
	UsageCount int64       `json:"usage_count"`
	IsPinned   bool        `json:"is_pinned"`
	Tags       []string    `json:"tags"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type Metadata struct {
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Source   string `json:"source,omitempty"`
}

// DeviceInfo описывает устройство, с которого скопировано содержимое.
type DeviceInfo struct {
	Platform string `json:"platform,omitempty"`
	Browser  string `json:"browser,omitempty"`
}

type Stats struct {
	TotalItems  int              `json:"total_items"`
	ItemsByType map[ItemType]int `json:"items_by_type"`
	MostUsed    []Item           `json:"most_used"`
	RecentItems []Item           `json:"recent_items"`
}
