// Package postgres содержит реализацию хранилища заметок на PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notespace/internal/notes/domain/blocks"
	"notespace/internal/notes/domain/entities"
	"notespace/internal/notes/ports/repositories"
	pg "notespace/pkg/db/postgres"
	"notespace/pkg/logger"
)

const noteColumns = `id, user_id, parent_id, title, description, is_favorite, is_deleted, deleted_at, created_at, updated_at`

const (
	codeForeignKeyViolation = "23503"
	constraintNoteOwner     = "notes_user_id_fkey"
	constraintNoteParent    = "notes_parent_id_fkey"
)

// searchText - текст, по которому ищет Search: содержимое блоков без разметки.
func searchText(description *string) *string {
	if description == nil {
		return nil
	}
	text := blocks.SearchText(*description)
	return &text
}

// NoteRepository реализует repositories.NoteRepository.
type NoteRepository struct {
	pool pg.Querier
}

// NewNoteRepository создает новый репозиторий заметок.
// Внутри транзакции pg.Transactor запросы идут через нее.
func NewNoteRepository(pool pg.Querier) *NoteRepository {
	return &NoteRepository{pool: pool}
}

var _ repositories.NoteRepository = (*NoteRepository)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*entities.Note, error) {
	var n entities.Note
	err := row.Scan(&n.ID, &n.UserID, &n.ParentID, &n.Title, &n.Description,
		&n.IsFavorite, &n.IsDeleted, &n.DeletedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) list(ctx context.Context, log *logger.Logger, query string, args ...any) ([]*entities.Note, error) {
	rows, err := pg.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "failed to query notes", zap.Error(err))
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// returning выполняет изменяющий запрос с RETURNING и возвращает измененную заметку.
func (r *NoteRepository) returning(ctx context.Context, log *logger.Logger, op, query string, args ...any) (*entities.Note, error) {
	note, err := scanNote(pg.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found or not owned by user")
			return nil, repositories.ErrNoteNotFoundOrNotOwned
		}
		log.Error(ctx, "failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return note, nil
}

// Create сохраняет новую заметку и возвращает ее вместе с присвоенным ID.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("userID", note.UserID))

	created, err := scanNote(pg.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO notes (user_id, parent_id, title, description, search_text)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING `+noteColumns,
		note.UserID, note.ParentID, note.Title, note.Description, searchText(note.Description),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			log.Warn(ctx, "note references a missing row", zap.String("constraint", pgErr.ConstraintName))
			switch pgErr.ConstraintName {
			case constraintNoteParent:
				return nil, repositories.ErrParentNotFound
			case constraintNoteOwner:
				return nil, repositories.ErrOwnerNotFound
			}
		}
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", created.ID))
	return created, nil
}

// GetByID получает заметку по ID в рамках пользователя, включая заметки в корзине.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))

	note, err := scanNote(pg.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`,
		noteID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.String("noteID", noteID))
			return nil, nil
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListTopLevel возвращает корневые заметки вне корзины, старые первыми.
func (r *NoteRepository) ListTopLevel(ctx context.Context, userID string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListTopLevel"))
	return r.list(ctx, log,
		`SELECT `+noteColumns+` FROM notes
         WHERE user_id = $1 AND parent_id IS NULL AND is_deleted = false
         ORDER BY created_at ASC`,
		userID)
}

// ListChildren возвращает дочерние заметки вне корзины.
func (r *NoteRepository) ListChildren(ctx context.Context, userID, parentID string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListChildren"))
	return r.list(ctx, log,
		`SELECT `+noteColumns+` FROM notes
         WHERE user_id = $1 AND parent_id = $2 AND is_deleted = false
         ORDER BY created_at ASC`,
		userID, parentID)
}

// ListDeleted возвращает корзину, недавно удаленные первыми.
func (r *NoteRepository) ListDeleted(ctx context.Context, userID string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListDeleted"))
	return r.list(ctx, log,
		`SELECT `+noteColumns+` FROM notes
         WHERE user_id = $1 AND is_deleted = true
         ORDER BY deleted_at DESC`,
		userID)
}

// ListFavorites возвращает избранные заметки вне корзины.
func (r *NoteRepository) ListFavorites(ctx context.Context, userID string) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListFavorites"))
	return r.list(ctx, log,
		`SELECT `+noteColumns+` FROM notes
         WHERE user_id = $1 AND is_favorite = true AND is_deleted = false
         ORDER BY updated_at DESC`,
		userID)
}

var sortColumns = map[entities.SortField]string{
	entities.SortByCreatedAt: "created_at",
	entities.SortByUpdatedAt: "updated_at",
}

// EscapeLike экранирует метасимволы LIKE, чтобы запрос искал их буквально.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search ищет подстроку без учета регистра в заголовке и, если не TitleOnly, в тексте описания.
func (r *NoteRepository) Search(ctx context.Context, userID string, q entities.SearchQuery) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Search"))

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if q.SortDirection == entities.SortAsc {
		direction = "ASC"
	}

	match := `title ILIKE $2`
	if !q.TitleOnly {
		match = `(title ILIKE $2 OR search_text ILIKE $2)`
	}

	query := `SELECT ` + noteColumns + ` FROM notes
         WHERE user_id = $1 AND is_deleted = false AND ` + match + `
         ORDER BY ` + column + ` ` + direction

	return r.list(ctx, log, query, userID, "%"+EscapeLike(q.Query)+"%")
}

// Update применяет частичное обновление заголовка и описания.
func (r *NoteRepository) Update(ctx context.Context, noteID, userID string, patch entities.NotePatch) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Update"))
	log.Debug(ctx, "updating note", zap.String("noteID", noteID))

	sets := make([]string, 0, 4)
	args := []any{noteID, userID}
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
		args = append(args, *searchText(patch.Description))
		sets = append(sets, fmt.Sprintf("search_text = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	return r.returning(ctx, log, "update note",
		`UPDATE notes SET `+strings.Join(sets, ", ")+`
         WHERE id = $1 AND user_id = $2
         RETURNING `+noteColumns,
		args...)
}

// SetFavorite устанавливает флаг избранного.
func (r *NoteRepository) SetFavorite(ctx context.Context, noteID, userID string, isFavorite bool) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.SetFavorite"))
	return r.returning(ctx, log, "set favorite",
		`UPDATE notes SET is_favorite = $3, updated_at = now()
         WHERE id = $1 AND user_id = $2
         RETURNING `+noteColumns,
		noteID, userID, isFavorite)
}

// SoftDelete перемещает заметку в корзину.
func (r *NoteRepository) SoftDelete(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.SoftDelete"))
	return r.returning(ctx, log, "soft delete note",
		`UPDATE notes SET is_deleted = true, deleted_at = now(), updated_at = now()
         WHERE id = $1 AND user_id = $2
         RETURNING `+noteColumns,
		noteID, userID)
}

// Restore возвращает заметку из корзины.
func (r *NoteRepository) Restore(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Restore"))
	return r.returning(ctx, log, "restore note",
		`UPDATE notes SET is_deleted = false, deleted_at = NULL, updated_at = now()
         WHERE id = $1 AND user_id = $2 AND is_deleted = true
         RETURNING `+noteColumns,
		noteID, userID)
}

// DeletePermanently удаляет заметку из корзины. Заметку вне корзины удалить нельзя.
func (r *NoteRepository) DeletePermanently(ctx context.Context, noteID, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.DeletePermanently"))
	log.Debug(ctx, "deleting note", zap.String("noteID", noteID))

	result, err := pg.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2 AND is_deleted = true`,
		noteID, userID,
	)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found, not owned or not in trash")
		return repositories.ErrNoteNotFoundOrNotOwned
	}

	return nil
}

// DeleteAllByUser удаляет все заметки пользователя независимо от корзины.
func (r *NoteRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.DeleteAllByUser"))

	result, err := pg.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM notes WHERE user_id = $1`, userID)
	if err != nil {
		log.Error(ctx, "failed to delete user notes", zap.Error(err))
		return 0, fmt.Errorf("failed to delete user notes: %w", err)
	}

	log.Info(ctx, "user notes deleted", zap.String("userID", userID), zap.Int64("count", result.RowsAffected()))
	return result.RowsAffected(), nil
}
