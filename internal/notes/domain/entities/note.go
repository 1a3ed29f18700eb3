// Package entities содержит доменные сущности сервиса заметок.
package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"notespace/pkg/slug"
)

// Note - страница пользователя. Заметки образуют дерево через ParentID.
type Note struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ParentID    *string    `json:"parentId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsFavorite  bool       `json:"isFavorite"`
	IsDeleted   bool       `json:"isDeleted"`
	DeletedAt   *time.Time `json:"deletedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewNote создает заметку; пустой заголовок заменяется на placeholder.
func NewNote(userID, title, placeholder string, parentID, description *string) *Note {
	now := time.Now()
	return &Note{
		UserID:      userID,
		ParentID:    parentID,
		Title:       NormalizeTitle(title, placeholder),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeTitle возвращает placeholder для пустого или пробельного заголовка.
func NormalizeTitle(title, placeholder string) string {
	if strings.TrimSpace(title) == "" {
		return placeholder
	}
	return title
}

// Slug возвращает читаемый идентификатор заметки для URL.
func (n *Note) Slug() string {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return slug.Slugify(n.Title)
	}
	return slug.Create(n.Title, id)
}

// NotePatch - частичное обновление заметки.
type NotePatch struct {
	Title       *string
	Description *string
}

// IsEmpty сообщает, что обновлять нечего.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}

// SortField - поле сортировки результатов поиска.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortDirection - направление сортировки.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchQuery - параметры поиска заметок.
type SearchQuery struct {
	Query         string
	TitleOnly     bool
	SortBy        SortField
	SortDirection SortDirection
}
