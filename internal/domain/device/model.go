package device

import (
	"strings"
	"time"

	"clipsync/internal/domain/apperr"
)

const (
	// DefaultRetention - срок, после которого неактивная запись устройства удаляется.
	DefaultRetention = 30 * 24 * time.Hour

	maxIDLen   = 128
	maxNameLen = 256
)

// Session - запись о присутствии устройства пользователя. Ключ (UserID, DeviceID).
type Session struct {
	UserID       int       `json:"-"`
	DeviceID     string    `json:"device_id"`
	DeviceName   string    `json:"device_name"`
	Platform     string    `json:"platform"`
	Browser      string    `json:"browser,omitempty"`
	LastActive   time.Time `json:"last_active"`
	IPAddress    string    `json:"ip_address,omitempty"`
	ConnectionID string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Descriptor - то, что устройство сообщает о себе при регистрации.
type Descriptor struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	Platform   string `json:"platform"`
	Browser    string `json:"browser,omitempty"`
}

func (d Descriptor) Normalize() Descriptor {
	return Descriptor{
		DeviceID:   strings.TrimSpace(d.DeviceID),
		DeviceName: strings.TrimSpace(d.DeviceName),
		Platform:   strings.TrimSpace(d.Platform),
		Browser:    strings.TrimSpace(d.Browser),
	}
}

func (d Descriptor) Validate() error {
	switch {
	case d.DeviceID == "":
		return apperr.New(apperr.ErrInvalidArgument, "device_id is required")
	case d.DeviceName == "":
		return apperr.New(apperr.ErrInvalidArgument, "device_name is required")
	case d.Platform == "":
		return apperr.New(apperr.ErrInvalidArgument, "platform is required")
	case len(d.DeviceID) > maxIDLen:
		return apperr.New(apperr.ErrInvalidArgument, "device_id is too long")
	case len(d.DeviceName) > maxNameLen || len(d.Platform) > maxNameLen || len(d.Browser) > maxNameLen:
		return apperr.New(apperr.ErrInvalidArgument, "device descriptor field is too long")
	}
	return nil
}
