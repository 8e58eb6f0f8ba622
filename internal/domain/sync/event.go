package sync

import (
	"encoding/json"
	"fmt"
)

// События протокола реального времени.
const (
	EventRegisterDevice = "register:device"
	EventHeartbeat      = "heartbeat"
	EventClipboardSync  = "clipboard:sync"

	EventSessionReady       = "session:ready"
	EventDeviceConnected    = "device:connected"
	EventDeviceDisconnected = "device:disconnected"
	EventClipboardNew       = "clipboard:new"
	EventClipboardUpdate    = "clipboard:update"
	EventClipboardDelete    = "clipboard:delete"
	EventError              = "error"
)

// Envelope - кадр протокола: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SessionReady struct {
	ConnectionID string `json:"connection_id"`
}

type DeviceConnected struct {
	DeviceInfo any `json:"device_info"`
}

type DeviceDisconnected struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type ItemDeleted struct {
	ItemID string `json:"item_id"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// Encode сериализует событие в кадр.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", event, err)
	}
	return frame, nil
}
