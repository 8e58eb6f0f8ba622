package device

import (
	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/device"
)

// Device - устройство пользователя с признаком активного соединения.
type Device struct {
	device.Session
	Online bool `json:"online" doc:"Устройство сейчас подключено к этому серверу"`
}

type removeInput struct {
	DeviceID string `path:"deviceId" doc:"ID устройства"`
}

type DeviceRemoved struct {
	DeviceID string `json:"device_id"`
}

type (
	listOutput   = envelope.Output[[]Device]
	removeOutput = envelope.Output[DeviceRemoved]
)
