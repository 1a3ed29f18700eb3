package entities_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notespace/internal/notes/domain/entities"
	"notespace/pkg/slug"
)

func TestNewNoteTitle(t *testing.T) {
	for _, title := range []string{"", " ", "\t\n  "} {
		note := entities.NewNote("user", title, "Untitled", nil, nil)
		assert.Equal(t, "Untitled", note.Title)
	}

	note := entities.NewNote("user", "  Keep spacing ", "Untitled", nil, nil)
	assert.Equal(t, "  Keep spacing ", note.Title)
	assert.False(t, note.IsDeleted)
	assert.Nil(t, note.DeletedAt)
	assert.False(t, note.CreatedAt.IsZero())
}

func TestNoteSlug(t *testing.T) {
	id := uuid.New()
	note := &entities.Note{ID: id.String(), Title: "Project plan"}

	s := note.Slug()
	assert.Contains(t, s, "project-plan-")

	got, err := slug.ExtractID(s)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestNotePatchIsEmpty(t *testing.T) {
	title := "x"
	assert.True(t, entities.NotePatch{}.IsEmpty())
	assert.False(t, entities.NotePatch{Title: &title}.IsEmpty())
}
