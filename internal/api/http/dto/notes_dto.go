// Package dto содержит структуры запросов и ответов HTTP API.
package dto

import (
	"time"

	"notespace/internal/notes/domain/blocks"
	"notespace/internal/notes/domain/entities"
)

// CreateNoteRequest - тело POST /notes.
type CreateNoteRequest struct {
	Title       string  `json:"title"`
	ParentID    *string `json:"parentId"`
	Description *string `json:"description"`
}

// UpdateNoteRequest - тело PUT и PATCH /notes/:id.
type UpdateNoteRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsFavorite  *bool   `json:"isFavorite"`
}

// Patch возвращает изменения заголовка и описания.
func (r UpdateNoteRequest) Patch() entities.NotePatch {
	return entities.NotePatch{Title: r.Title, Description: r.Description}
}

// BlocksPayload - тело GET и PUT /notes/:id/blocks.
type BlocksPayload struct {
	Blocks []blocks.Block `json:"blocks"`
}

// Note - представление заметки для клиента.
type Note struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ParentID    *string    `json:"parentId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Slug        string     `json:"slug"`
	IsFavorite  bool       `json:"isFavorite"`
	IsDeleted   bool       `json:"isDeleted"`
	DeletedAt   *time.Time `json:"deletedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FromNote преобразует сущность в ответ.
func FromNote(n *entities.Note) *Note {
	return &Note{
		ID:          n.ID,
		UserID:      n.UserID,
		ParentID:    n.ParentID,
		Title:       n.Title,
		Description: n.Description,
		Slug:        n.Slug(),
		IsFavorite:  n.IsFavorite,
		IsDeleted:   n.IsDeleted,
		DeletedAt:   n.DeletedAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// FromNotes преобразует список. Пустой список сериализуется как [].
func FromNotes(list []*entities.Note) []*Note {
	out := make([]*Note, 0, len(list))
	for _, n := range list {
		out = append(out, FromNote(n))
	}
	return out
}
