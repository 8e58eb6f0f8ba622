package backup

import (
	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/backup"
)

type createInput struct {
	Body backup.CreateConfigRequest
}

type idInput struct {
	ID string `path:"id" doc:"ID настройки"`
}

type updateInput struct {
	ID   string `path:"id" doc:"ID настройки"`
	Body backup.UpdateConfigRequest
}

type ConfigDeleted struct {
	ID string `json:"id"`
}

type (
	listOutput   = envelope.Output[[]backup.Config]
	configOutput = envelope.Output[backup.Config]
	deleteOutput = envelope.Output[ConfigDeleted]
)
