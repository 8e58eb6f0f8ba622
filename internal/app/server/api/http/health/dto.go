package health

import "clipsync/internal/app/server/api/http/envelope"

type Input struct{}

type Output = envelope.Output[Status]

// Status - состояние сервиса.
type Status struct {
	Status      string `json:"status" example:"OK" doc:"Health status of the service"`
	Connections int    `json:"connections" doc:"Открытые websocket-соединения"`
}
