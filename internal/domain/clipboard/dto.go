package clipboard

type CreateRequest struct {
	Content    string      `json:"content" doc:"Содержимое буфера обмена"`
	Type       ItemType    `json:"type,omitempty" doc:"Тип содержимого, по умолчанию text"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// Patch содержит изменяемые поля элемента. Nil означает "не менять";
// пустой, но не nil список тегов очищает теги.
type Patch struct {
	IsPinned *bool    `json:"is_pinned,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (p Patch) Empty() bool {
	return p.IsPinned == nil && p.Tags == nil
}

type ListFilter struct {
	Limit  int
	Skip   int
	Type   ItemType
	Pinned *bool
}

type ListResult struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
	Limit int    `json:"limit"`
	Skip  int    `json:"skip"`
}
