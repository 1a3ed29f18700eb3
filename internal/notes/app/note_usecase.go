// Package app содержит бизнес-логику сервиса заметок.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notespace/internal/notes/domain/blocks"
	"notespace/internal/notes/domain/entities"
	"notespace/internal/notes/ports/cache"
	"notespace/internal/notes/ports/repositories"
	"notespace/pkg/logger"
	"notespace/pkg/slug"
)

// Ошибки уровня бизнес-логики.
var (
	ErrNotFound      = errors.New("note not found")
	ErrInvalidParams = errors.New("invalid parameters")
	ErrNotInTrash    = errors.New("note is not in trash")
	ErrEmptyPatch    = errors.New("nothing to update")
	ErrInvalidParent = errors.New("invalid parent note")
	ErrInvalidSort   = errors.New("invalid sort parameters")
	ErrInvalidSlug   = errors.New("invalid note slug")
	// ErrOwnerNotFound - владелец заметки удален, а его токен еще действует.
	ErrOwnerNotFound = errors.New("note owner no longer exists")
)

// DefaultTitle используется, если заголовок не задан в конфигурации.
const DefaultTitle = "Untitled"

// CreateNoteInput - параметры создания заметки.
type CreateNoteInput struct {
	Title       string
	ParentID    *string
	Description *string
}

// SearchInput - параметры поиска в том виде, в каком они пришли от клиента.
type SearchInput struct {
	Query         string
	TitleOnly     bool
	SortBy        string
	SortDirection string
}

// NoteUseCase реализует операции над заметками пользователя.
type NoteUseCase struct {
	noteRepo     repositories.NoteRepository
	favorites    cache.FavoritesCache
	defaultTitle string
}

// NewNoteUseCase создает новый экземпляр NoteUseCase. favorites может быть nil.
func NewNoteUseCase(noteRepo repositories.NoteRepository, favorites cache.FavoritesCache, defaultTitle string) *NoteUseCase {
	if strings.TrimSpace(defaultTitle) == "" {
		defaultTitle = DefaultTitle
	}
	return &NoteUseCase{
		noteRepo:     noteRepo,
		favorites:    favorites,
		defaultTitle: defaultTitle,
	}
}

func requireID(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidParams, name)
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%w: %s is malformed", ErrInvalidParams, name)
	}
	return nil
}

func requireIDs(userID, noteID string) error {
	if err := requireID("user id", userID); err != nil {
		return err
	}
	return requireID("note id", noteID)
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, repositories.ErrNoteNotFoundOrNotOwned) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// invalidate сбрасывает кеш избранного; ошибка кеша не прерывает операцию.
func (uc *NoteUseCase) invalidate(ctx context.Context, userID string) {
	if uc.favorites == nil {
		return
	}
	if err := uc.favorites.Invalidate(ctx, userID); err != nil {
		logger.Log(ctx).Warn(ctx, "failed to invalidate favorites cache",
			zap.String("userID", userID), zap.Error(err))
	}
}

// load возвращает заметку пользователя или ErrNotFound.
func (uc *NoteUseCase) load(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

// CreateNote создает заметку. Родитель должен принадлежать пользователю и не лежать в корзине.
func (uc *NoteUseCase) CreateNote(ctx context.Context, userID string, in CreateNoteInput) (*entities.Note, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if _, err := uuid.Parse(*in.ParentID); err != nil {
			return nil, fmt.Errorf("%w: parent id is malformed", ErrInvalidParent)
		}
		parent, err := uc.noteRepo.GetByID(ctx, *in.ParentID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent note: %w", err)
		}
		if parent == nil || parent.IsDeleted {
			return nil, fmt.Errorf("%w: parent note does not exist", ErrInvalidParent)
		}
	}

	note := entities.NewNote(userID, in.Title, uc.defaultTitle, in.ParentID, in.Description)
	created, err := uc.noteRepo.Create(ctx, note)
	switch {
	case errors.Is(err, repositories.ErrOwnerNotFound):
		return nil, ErrOwnerNotFound
	case errors.Is(err, repositories.ErrParentNotFound):
		return nil, fmt.Errorf("%w: parent note does not exist", ErrInvalidParent)
	case err != nil:
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	uc.invalidate(ctx, userID)
	return created, nil
}

// ListNotes возвращает корневые заметки пользователя.
func (uc *NoteUseCase) ListNotes(ctx context.Context, userID string) ([]*entities.Note, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	notes, err := uc.noteRepo.ListTopLevel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// ListChildren возвращает дочерние заметки.
func (uc *NoteUseCase) ListChildren(ctx context.Context, userID, parentID string) ([]*entities.Note, error) {
	if err := requireIDs(userID, parentID); err != nil {
		return nil, err
	}
	notes, err := uc.noteRepo.ListChildren(ctx, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child notes: %w", err)
	}
	return notes, nil
}

// GetNote возвращает заметку по ID.
func (uc *NoteUseCase) GetNote(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	if err := requireIDs(userID, noteID); err != nil {
		return nil, err
	}
	return uc.load(ctx, userID, noteID)
}

// GetNoteBySlug возвращает заметку по слагу.
func (uc *NoteUseCase) GetNoteBySlug(ctx context.Context, userID, noteSlug string) (*entities.Note, error) {
	id, err := slug.ExtractID(noteSlug)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSlug, noteSlug)
	}
	return uc.GetNote(ctx, userID, id.String())
}

// UpdateNote частично обновляет заголовок и описание.
func (uc *NoteUseCase) UpdateNote(ctx context.Context, userID, noteID string, patch entities.NotePatch) (*entities.Note, error) {
	if err := requireIDs(userID, noteID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Title != nil {
		title := entities.NormalizeTitle(*patch.Title, uc.defaultTitle)
		patch.Title = &title
	}

	note, err := uc.noteRepo.Update(ctx, noteID, userID, patch)
	if err != nil {
		return nil, mapRepoError("failed to update note", err)
	}

	uc.invalidate(ctx, userID)
	return note, nil
}

// ToggleFavorite устанавливает флаг избранного; без значения флаг инвертируется.
func (uc *NoteUseCase) ToggleFavorite(ctx context.Context, userID, noteID string, isFavorite *bool) (*entities.Note, error) {
	if err := requireIDs(userID, noteID); err != nil {
		return nil, err
	}

	var value bool
	if isFavorite != nil {
		value = *isFavorite
	} else {
		current, err := uc.load(ctx, userID, noteID)
		if err != nil {
			return nil, err
		}
		value = !current.IsFavorite
	}

	note, err := uc.noteRepo.SetFavorite(ctx, noteID, userID, value)
	if err != nil {
		return nil, mapRepoError("failed to set favorite", err)
	}

	uc.invalidate(ctx, userID)
	return note, nil
}

// SoftDelete перемещает заметку в корзину. Повторное удаление ничего не меняет.
func (uc *NoteUseCase) SoftDelete(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	if err := requireIDs(userID, noteID); err != nil {
		return nil, err
	}

	current, err := uc.load(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted {
		return current, nil
	}

	note, err := uc.noteRepo.SoftDelete(ctx, noteID, userID)
	if err != nil {
		return nil, mapRepoError("failed to delete note", err)
	}

	uc.invalidate(ctx, userID)
	return note, nil
}

// Restore возвращает заметку из корзины.
func (uc *NoteUseCase) Restore(ctx context.Context, userID, noteID string) (*entities.Note, error) {
	if err := requireIDs(userID, noteID); err != nil {
		return nil, err
	}

	current, err := uc.load(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if !current.IsDeleted {
		return nil, ErrNotInTrash
	}

	note, err := uc.noteRepo.Restore(ctx, noteID, userID)
	if err != nil {
		return nil, mapRepoError("failed to restore note", err)
	}

	uc.invalidate(ctx, userID)
	return note, nil
}

// DeletePermanently удаляет заметку из корзины безвозвратно.
func (uc *NoteUseCase) DeletePermanently(ctx context.Context, userID, noteID string) error {
	if err := requireIDs(userID, noteID); err != nil {
		return err
	}

	current, err := uc.load(ctx, userID, noteID)
	if err != nil {
		return err
	}
	if !current.IsDeleted {
		return ErrNotInTrash
	}

	if err := uc.noteRepo.DeletePermanently(ctx, noteID, userID); err != nil {
		return mapRepoError("failed to delete note permanently", err)
	}

	uc.invalidate(ctx, userID)
	return nil
}

// ListDeleted возвращает содержимое корзины.
func (uc *NoteUseCase) ListDeleted(ctx context.Context, userID string) ([]*entities.Note, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	notes, err := uc.noteRepo.ListDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted notes: %w", err)
	}
	return notes, nil
}

// ListFavorites возвращает избранные заметки, по возможности из кеша.
func (uc *NoteUseCase) ListFavorites(ctx context.Context, userID string) ([]*entities.Note, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	log := logger.Log(ctx).With(zap.String("method", "NoteUseCase.ListFavorites"))

	fill := false
	var version int64
	if uc.favorites != nil {
		cached, ver, found, err := uc.favorites.Get(ctx, userID)
		switch {
		case err != nil:
			log.Warn(ctx, "favorites cache unavailable", zap.Error(err))
		case found:
			return cached, nil
		default:
			fill, version = true, ver
		}
	}

	notes, err := uc.noteRepo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite notes: %w", err)
	}

	if fill {
		if err := uc.favorites.Set(ctx, userID, version, notes); err != nil {
			log.Warn(ctx, "failed to fill favorites cache", zap.Error(err))
		}
	}

	return notes, nil
}

// ParseSort разбирает параметры сортировки; пустые значения дают updated_at desc.
func ParseSort(sortBy, direction string) (entities.SortField, entities.SortDirection, error) {
	var field entities.SortField
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "", "updated_at", "updatedat":
		field = entities.SortByUpdatedAt
	case "created_at", "createdat":
		field = entities.SortByCreatedAt
	default:
		return "", "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidSort, sortBy)
	}

	var dir entities.SortDirection
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "desc":
		dir = entities.SortDesc
	case "asc":
		dir = entities.SortAsc
	default:
		return "", "", fmt.Errorf("%w: unknown sort direction %q", ErrInvalidSort, direction)
	}

	return field, dir, nil
}

// Search ищет заметки. Пустой запрос возвращает пустой список без обращения к хранилищу.
func (uc *NoteUseCase) Search(ctx context.Context, userID string, in SearchInput) ([]*entities.Note, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}

	field, dir, err := ParseSort(in.SortBy, in.SortDirection)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return []*entities.Note{}, nil
	}

	notes, err := uc.noteRepo.Search(ctx, userID, entities.SearchQuery{
		Query:         query,
		TitleOnly:     in.TitleOnly,
		SortBy:        field,
		SortDirection: dir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return notes, nil
}

// GetBlocks разбирает описание заметки в блоки.
func (uc *NoteUseCase) GetBlocks(ctx context.Context, userID, noteID string) ([]blocks.Block, error) {
	note, err := uc.GetNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Description == nil {
		return []blocks.Block{}, nil
	}
	return blocks.Decode(*note.Description), nil
}

// UpdateBlocks сохраняет блоки в описание заметки в структурированном формате.
func (uc *NoteUseCase) UpdateBlocks(ctx context.Context, userID, noteID string, list []blocks.Block) (*entities.Note, error) {
	encoded, err := blocks.Encode(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return uc.UpdateNote(ctx, userID, noteID, entities.NotePatch{Description: &encoded})
}

// PurgeUserNotes удаляет все заметки пользователя, включая корзину.
// Вызывается при удалении пользователя, обычно внутри транзакции.
func (uc *NoteUseCase) PurgeUserNotes(ctx context.Context, userID string) (int64, error) {
	if err := requireID("user id", userID); err != nil {
		return 0, err
	}

	count, err := uc.noteRepo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge user notes: %w", err)
	}

	uc.invalidate(ctx, userID)
	return count, nil
}
