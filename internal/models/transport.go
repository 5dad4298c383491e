package models

import "time"

type ErrorResp struct {
	Error string `json:"error"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type NoteReq struct {
	Title   *string `json:"title" validate:"omitempty,max=200"`
	Content *string `json:"content"`
}

type NoteCategoriesReq struct {
	CategoryIDs []uint64 `json:"category_ids"`
}

type NoteTagsReq struct {
	Tags []string `json:"tags" validate:"dive,max=50"`
}

type NoteResp struct {
	ID         uint64         `json:"id"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Tags       []string       `json:"tags"`
	Categories []CategoryResp `json:"categories"`
}

type NoteSummaryResp struct {
	ID         uint64         `json:"id"`
	Title      string         `json:"title"`
	Snippet    string         `json:"snippet"`
	CreatedAt  time.Time      `json:"created_at"`
	Tags       []string       `json:"tags"`
	Categories []CategoryResp `json:"categories"`
}

type CategoryCreateReq struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=10"`
}

type CategoryUpdateReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=10"`
}

type CategoryResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	NoteCount   int64     `json:"note_count"`
}

type TagReq struct {
	Name string `json:"name" validate:"required,max=50"`
}

type TagResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ChatTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ChatReq struct {
	Message string     `json:"message"`
	Context []ChatTurn `json:"context"`
}

type ChatResp struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type SuggestionsReq struct {
	Notes []interface{} `json:"notes"`
	Type  string        `json:"type"`
}

type SuggestionsResp struct {
	Suggestions []string  `json:"suggestions"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

type PolishReq struct {
	Text string `json:"text"`
}

type PolishResp struct {
	OriginalText string    `json:"original_text"`
	PolishedText string    `json:"polished_text"`
	Timestamp    time.Time `json:"timestamp"`
}

type PolishErrResp struct {
	Error        string `json:"error"`
	OriginalText string `json:"original_text"`
}

type GenerateTagsReq struct {
	Content string `json:"content"`
}

type GenerateTagsResp struct {
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

type GenerateTagsErrResp struct {
	Error   string `json:"error"`
	Content string `json:"content"`
}

type SessionReq struct {
	Type      string `json:"type" validate:"required,oneof=work short_break long_break"`
	Duration  *int   `json:"duration" validate:"omitempty,gte=0"`
	Completed *bool  `json:"completed"`
}

type HealthResp struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
