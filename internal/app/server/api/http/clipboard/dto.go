package clipboard

import (
	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/clipboard"
)

type listInput struct {
	Limit  int    `query:"limit" doc:"Размер страницы, по умолчанию 50, не больше 500"`
	Skip   int    `query:"skip" doc:"Сколько элементов пропустить"`
	Type   string `query:"type" enum:"text,image,file,html" doc:"Фильтр по типу"`
	Pinned string `query:"pinned" enum:"true,false" doc:"Фильтр по закреплению"`
}

type createInput struct {
	Body clipboard.CreateRequest
}

type idInput struct {
	ID string `path:"id" doc:"ID элемента"`
}

type updateInput struct {
	ID   string `path:"id" doc:"ID элемента"`
	Body clipboard.Patch
}

type mostUsedInput struct {
	Limit int `query:"limit" doc:"Количество элементов, по умолчанию 10"`
}

type searchInput struct {
	Query string `query:"query" required:"true" doc:"Подстрока для поиска"`
	Limit int    `query:"limit" doc:"Количество элементов, по умолчанию 20"`
}

// ItemDeleted подтверждает удаление элемента.
type ItemDeleted struct {
	ID string `json:"id"`
}

type (
	listOutput   = envelope.Output[clipboard.ListResult]
	itemOutput   = envelope.Output[clipboard.Item]
	itemsOutput  = envelope.Output[[]clipboard.Item]
	statsOutput  = envelope.Output[clipboard.Stats]
	deleteOutput = envelope.Output[ItemDeleted]
)
