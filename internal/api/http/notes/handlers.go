// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notespace/internal/api/http/dto"
	"notespace/internal/api/http/middleware"
	"notespace/internal/api/http/response"
	"notespace/internal/notes/app"
	"notespace/internal/notes/domain/blocks"
	"notespace/internal/notes/domain/entities"
	"notespace/pkg/logger"
)

// Константы сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerSearch     = "handling search request"

	ErrMsgInvalidTitleOnly = "titleOnly must be a boolean"
	ErrMsgInvalidFavorites = "favorites must be a boolean"
)

// UseCase - операции над заметками, доступные через HTTP.
type UseCase interface {
	CreateNote(ctx context.Context, userID string, in app.CreateNoteInput) (*entities.Note, error)
	ListNotes(ctx context.Context, userID string) ([]*entities.Note, error)
	ListChildren(ctx context.Context, userID, parentID string) ([]*entities.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*entities.Note, error)
	GetNoteBySlug(ctx context.Context, userID, noteSlug string) (*entities.Note, error)
	UpdateNote(ctx context.Context, userID, noteID string, patch entities.NotePatch) (*entities.Note, error)
	ToggleFavorite(ctx context.Context, userID, noteID string, isFavorite *bool) (*entities.Note, error)
	SoftDelete(ctx context.Context, userID, noteID string) (*entities.Note, error)
	Restore(ctx context.Context, userID, noteID string) (*entities.Note, error)
	DeletePermanently(ctx context.Context, userID, noteID string) error
	ListDeleted(ctx context.Context, userID string) ([]*entities.Note, error)
	ListFavorites(ctx context.Context, userID string) ([]*entities.Note, error)
	Search(ctx context.Context, userID string, in app.SearchInput) ([]*entities.Note, error)
	GetBlocks(ctx context.Context, userID, noteID string) ([]blocks.Block, error)
	UpdateBlocks(ctx context.Context, userID, noteID string, list []blocks.Block) (*entities.Note, error)
}

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	notes UseCase
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes UseCase) *Handler {
	return &Handler{notes: notes}
}

func bind(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind().JSON(out); err != nil {
		return fmt.Errorf("%s: %w", response.MsgInvalidRequest, err)
	}
	return nil
}

func optionalBool(c fiber.Ctx, key string) (bool, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, err
	}
	return v, true, nil
}

func (h *Handler) sendNote(ctx context.Context, c fiber.Ctx, status int, note *entities.Note, err error) error {
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, status, dto.FromNote(note))
}

func (h *Handler) sendNotes(ctx context.Context, c fiber.Ctx, list []*entities.Note, err error) error {
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, fiber.StatusOK, dto.FromNotes(list))
}

// CreateNote обрабатывает POST /notes.
func (h *Handler) CreateNote(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerCreateNote)

	var req dto.CreateNoteRequest
	if err := bind(c, &req); err != nil {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	note, err := h.notes.CreateNote(ctx, middleware.UserID(c), app.CreateNoteInput{
		Title:       req.Title,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	return h.sendNote(ctx, c, fiber.StatusCreated, note, err)
}

// ListNotes обрабатывает GET /notes, включая ?favorites=true и ?parentId=.
func (h *Handler) ListNotes(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	userID := middleware.UserID(c)
	logger.Log(ctx).Debug(ctx, LogHandlerListNotes)

	favorites, _, err := optionalBool(c, "favorites")
	if err != nil {
		return response.Text(c, fiber.StatusBadRequest, ErrMsgInvalidFavorites)
	}

	var list []*entities.Note
	switch parentID := c.Query("parentId"); {
	case favorites:
		list, err = h.notes.ListFavorites(ctx, userID)
	case parentID != "":
		list, err = h.notes.ListChildren(ctx, userID, parentID)
	default:
		list, err = h.notes.ListNotes(ctx, userID)
	}
	return h.sendNotes(ctx, c, list, err)
}

// Search обрабатывает GET /notes/search.
func (h *Handler) Search(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerSearch, zap.String("query", c.Query("q")))

	titleOnly, _, err := optionalBool(c, "titleOnly")
	if err != nil {
		return response.Text(c, fiber.StatusBadRequest, ErrMsgInvalidTitleOnly)
	}

	list, err := h.notes.Search(ctx, middleware.UserID(c), app.SearchInput{
		Query:         c.Query("q"),
		TitleOnly:     titleOnly,
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
	})
	return h.sendNotes(ctx, c, list, err)
}

// ListDeleted обрабатывает GET /notes/trash.
func (h *Handler) ListDeleted(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	list, err := h.notes.ListDeleted(ctx, middleware.UserID(c))
	return h.sendNotes(ctx, c, list, err)
}

// Restore обрабатывает PATCH /notes/trash/:id.
func (h *Handler) Restore(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	note, err := h.notes.Restore(ctx, middleware.UserID(c), c.Params("id"))
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}

// DeletePermanently обрабатывает DELETE /notes/trash/:id.
func (h *Handler) DeletePermanently(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	if err := h.notes.DeletePermanently(ctx, middleware.UserID(c), c.Params("id")); err != nil {
		return response.Error(ctx, c, err)
	}
	return response.NoContent(c)
}

// GetBySlug обрабатывает GET /notes/slug/:slug.
func (h *Handler) GetBySlug(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	note, err := h.notes.GetNoteBySlug(ctx, middleware.UserID(c), c.Params("slug"))
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}

// GetNote обрабатывает GET /notes/:id.
func (h *Handler) GetNote(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	note, err := h.notes.GetNote(ctx, middleware.UserID(c), c.Params("id"))
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}

// ReplaceNote обрабатывает PUT /notes/:id: обновляет заголовок и описание.
func (h *Handler) ReplaceNote(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerUpdateNote)

	var req dto.UpdateNoteRequest
	if err := bind(c, &req); err != nil {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	note, err := h.notes.UpdateNote(ctx, middleware.UserID(c), c.Params("id"), req.Patch())
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}

// PatchNote обрабатывает PATCH /notes/:id.
// Без полей переключает избранное, с isFavorite устанавливает его.
func (h *Handler) PatchNote(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	userID := middleware.UserID(c)
	noteID := c.Params("id")
	logger.Log(ctx).Debug(ctx, LogHandlerUpdateNote)

	var req dto.UpdateNoteRequest
	if err := bind(c, &req); err != nil {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	patch := req.Patch()
	if patch.IsEmpty() {
		note, err := h.notes.ToggleFavorite(ctx, userID, noteID, req.IsFavorite)
		return h.sendNote(ctx, c, fiber.StatusOK, note, err)
	}

	note, err := h.notes.UpdateNote(ctx, userID, noteID, patch)
	if err == nil && req.IsFavorite != nil {
		note, err = h.notes.ToggleFavorite(ctx, userID, noteID, req.IsFavorite)
	}
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}

// SoftDelete обрабатывает DELETE /notes/:id: переносит заметку в корзину.
func (h *Handler) SoftDelete(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	if _, err := h.notes.SoftDelete(ctx, middleware.UserID(c), c.Params("id")); err != nil {
		return response.Error(ctx, c, err)
	}
	return response.NoContent(c)
}

// ListChildren обрабатывает GET /notes/:id/children.
func (h *Handler) ListChildren(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	list, err := h.notes.ListChildren(ctx, middleware.UserID(c), c.Params("id"))
	return h.sendNotes(ctx, c, list, err)
}

// GetBlocks обрабатывает GET /notes/:id/blocks.
func (h *Handler) GetBlocks(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	list, err := h.notes.GetBlocks(ctx, middleware.UserID(c), c.Params("id"))
	if err != nil {
		return response.Error(ctx, c, err)
	}
	if list == nil {
		list = []blocks.Block{}
	}
	return response.JSON(c, fiber.StatusOK, dto.BlocksPayload{Blocks: list})
}

// UpdateBlocks обрабатывает PUT /notes/:id/blocks.
func (h *Handler) UpdateBlocks(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	var req dto.BlocksPayload
	if err := bind(c, &req); err != nil {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	note, err := h.notes.UpdateBlocks(ctx, middleware.UserID(c), c.Params("id"), req.Blocks)
	return h.sendNote(ctx, c, fiber.StatusOK, note, err)
}
