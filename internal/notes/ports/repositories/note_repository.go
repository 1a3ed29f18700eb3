// Package repositories определяет интерфейсы хранилищ сервиса заметок.
package repositories

import (
	"context"
	"errors"

	"notespace/internal/notes/domain/entities"
)

// ErrNoteNotFoundOrNotOwned возвращается изменяющими методами, если строка не найдена
// в рамках пользователя или не удовлетворяет условию операции.
var ErrNoteNotFoundOrNotOwned = errors.New("note not found or not owned by user")

// Ошибки нарушения ссылок при создании заметки.
var (
	ErrOwnerNotFound  = errors.New("note owner does not exist")
	ErrParentNotFound = errors.New("parent note does not exist")
)

// NoteRepository - хранилище заметок. Все запросы ограничены userID.
// Методы чтения возвращают (nil, nil), если заметка не найдена.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)
	GetByID(ctx context.Context, noteID, userID string) (*entities.Note, error)
	ListTopLevel(ctx context.Context, userID string) ([]*entities.Note, error)
	ListChildren(ctx context.Context, userID, parentID string) ([]*entities.Note, error)
	ListDeleted(ctx context.Context, userID string) ([]*entities.Note, error)
	ListFavorites(ctx context.Context, userID string) ([]*entities.Note, error)
	Search(ctx context.Context, userID string, query entities.SearchQuery) ([]*entities.Note, error)
	Update(ctx context.Context, noteID, userID string, patch entities.NotePatch) (*entities.Note, error)
	SetFavorite(ctx context.Context, noteID, userID string, isFavorite bool) (*entities.Note, error)
	SoftDelete(ctx context.Context, noteID, userID string) (*entities.Note, error)
	Restore(ctx context.Context, noteID, userID string) (*entities.Note, error)
	DeletePermanently(ctx context.Context, noteID, userID string) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}
