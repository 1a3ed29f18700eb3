// Package cache определяет интерфейс кеша избранных заметок.
package cache

import (
	"context"

	"notespace/internal/notes/domain/entities"
)

// FavoritesCache хранит список избранных заметок пользователя.
// Get возвращает found=false при промахе и текущее поколение записи пользователя.
// Set сохраняет список, только если поколение не изменилось с момента Get;
// Invalidate сдвигает поколение, так что список, прочитанный до изменения, не попадет в кеш.
type FavoritesCache interface {
	Get(ctx context.Context, userID string) (notes []*entities.Note, version int64, found bool, err error)
	Set(ctx context.Context, userID string, version int64, notes []*entities.Note) error
	Invalidate(ctx context.Context, userID string) error
}
