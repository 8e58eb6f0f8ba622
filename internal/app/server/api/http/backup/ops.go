package backup

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "backup-list",
		Method:      http.MethodGet,
		Path:        "/api/backup",
		Summary:     "Настройки резервного копирования",
		Tags:        []string{"backup"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "backup-create",
		Method:        http.MethodPost,
		Path:          "/api/backup",
		Summary:       "Добавить хранилище",
		Description:   "Новая настройка создается выключенной. Один провайдер на пользователя.",
		Tags:          []string{"backup"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "backup-update",
		Method:      http.MethodPut,
		Path:        "/api/backup/{id}",
		Summary:     "Изменить настройку",
		Tags:        []string{"backup"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "backup-delete",
		Method:      http.MethodDelete,
		Path:        "/api/backup/{id}",
		Summary:     "Удалить настройку",
		Tags:        []string{"backup"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) triggerOp() huma.Operation {
	return huma.Operation{
		OperationID: "backup-trigger",
		Method:      http.MethodPost,
		Path:        "/api/backup/{id}/trigger",
		Summary:     "Выполнить экспорт сейчас",
		Tags:        []string{"backup"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
