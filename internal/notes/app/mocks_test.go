package app_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"notespace/internal/notes/domain/entities"
)

type mockNoteRepository struct {
	mock.Mock
}

func noteOrNil(args mock.Arguments) *entities.Note {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entities.Note)
}

func notesOrNil(args mock.Arguments) []*entities.Note {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*entities.Note)
}

func (m *mockNoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	args := m.Called(ctx, note)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) GetByID(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	args := m.Called(ctx, noteID, userID)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) ListTopLevel(ctx context.Context, userID string) ([]*entities.Note, error) {
	args := m.Called(ctx, userID)
	return notesOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) ListChildren(ctx context.Context, userID, parentID string) ([]*entities.Note, error) {
	args := m.Called(ctx, userID, parentID)
	return notesOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) ListDeleted(ctx context.Context, userID string) ([]*entities.Note, error) {
	args := m.Called(ctx, userID)
	return notesOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) ListFavorites(ctx context.Context, userID string) ([]*entities.Note, error) {
	args := m.Called(ctx, userID)
	return notesOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) Search(ctx context.Context, userID string, q entities.SearchQuery) ([]*entities.Note, error) {
	args := m.Called(ctx, userID, q)
	return notesOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) Update(ctx context.Context, noteID, userID string, patch entities.NotePatch) (*entities.Note, error) {
	args := m.Called(ctx, noteID, userID, patch)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) SetFavorite(ctx context.Context, noteID, userID string, isFavorite bool) (*entities.Note, error) {
	args := m.Called(ctx, noteID, userID, isFavorite)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) SoftDelete(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	args := m.Called(ctx, noteID, userID)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) Restore(ctx context.Context, noteID, userID string) (*entities.Note, error) {
	args := m.Called(ctx, noteID, userID)
	return noteOrNil(args), args.Error(1)
}

func (m *mockNoteRepository) DeletePermanently(ctx context.Context, noteID, userID string) error {
	return m.Called(ctx, noteID, userID).Error(0)
}

func (m *mockNoteRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockFavoritesCache struct {
	mock.Mock
}

func (m *mockFavoritesCache) Get(ctx context.Context, userID string) ([]*entities.Note, int64, bool, error) {
	args := m.Called(ctx, userID)
	return notesOrNil(args), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *mockFavoritesCache) Set(ctx context.Context, userID string, version int64, notes []*entities.Note) error {
	return m.Called(ctx, userID, version, notes).Error(0)
}

func (m *mockFavoritesCache) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
