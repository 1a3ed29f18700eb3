package blocks_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notespace/internal/notes/domain/blocks"
)

func contents(d *blocks.Document) []string {
	list := d.Blocks()
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.Content
	}
	return out
}

func TestNewDocumentIsNeverEmpty(t *testing.T) {
	d := blocks.NewDocument(nil)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, blocks.Text, d.Blocks()[0].Type)
}

func TestSplitAndMerge(t *testing.T) {
	d := blocks.NewDocument([]blocks.Block{blocks.New(blocks.Bullet, "héllo world")})

	require.NoError(t, d.Split(0, 5))
	assert.Equal(t, []string{"héllo", " world"}, contents(d))
	assert.Equal(t, blocks.Bullet, d.Blocks()[1].Type)
	assert.Equal(t, 1, d.Focus())

	caret, err := d.MergeWithPrevious(1)
	require.NoError(t, err)
	assert.Equal(t, 5, caret)
	assert.Equal(t, []string{"héllo world"}, contents(d))
	assert.Equal(t, 0, d.Focus())

	caret, err = d.MergeWithPrevious(0)
	require.NoError(t, err)
	assert.Equal(t, 0, caret)
	assert.Equal(t, 1, d.Len())
}

func TestSplitHeadingContinuesAsText(t *testing.T) {
	d := blocks.NewDocument([]blocks.Block{blocks.New(blocks.H1, "Title")})
	require.NoError(t, d.Split(0, 100))

	list := d.Blocks()
	assert.Equal(t, "Title", list[0].Content)
	assert.Equal(t, blocks.Text, list[1].Type)
	assert.Empty(t, list[1].Content)
}

func TestMergeIntoDivider(t *testing.T) {
	d := blocks.NewDocument([]blocks.Block{
		blocks.New(blocks.Divider, ""),
		blocks.New(blocks.Quote, "after"),
	})

	caret, err := d.MergeWithPrevious(1)
	require.NoError(t, err)
	assert.Equal(t, 0, caret)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, blocks.Quote, d.Blocks()[0].Type)
	assert.Equal(t, "after", d.Blocks()[0].Content)
}

func TestFocusNavigation(t *testing.T) {
	d := blocks.NewDocument([]blocks.Block{
		blocks.New(blocks.Text, "a"),
		blocks.New(blocks.Text, "b"),
	})

	assert.Equal(t, 0, d.Prev())
	assert.Equal(t, 1, d.Next())
	assert.Equal(t, 1, d.Next())
	assert.Equal(t, 0, d.Prev())
}

func TestEditingCommands(t *testing.T) {
	d := blocks.NewDocument(nil)

	require.NoError(t, d.Insert(0, blocks.Block{Type: blocks.Todo, Content: "task"}))
	assert.Equal(t, 1, d.Focus())
	require.NoError(t, d.Toggle(1))
	assert.True(t, d.Blocks()[1].Checked)

	require.NoError(t, d.SetType(1, blocks.Bullet))
	assert.False(t, d.Blocks()[1].Checked)

	require.ErrorIs(t, d.SetType(1, "table"), blocks.ErrUnknownType)
	require.ErrorIs(t, d.SetContent(5, "x"), blocks.ErrOutOfRange)
	require.ErrorIs(t, d.Insert(7, blocks.Block{}), blocks.ErrOutOfRange)

	require.NoError(t, d.Remove(0))
	require.NoError(t, d.Remove(0))
	require.Equal(t, 1, d.Len())
	assert.Empty(t, d.Blocks()[0].Content)
}

func TestUndoRedo(t *testing.T) {
	d := blocks.NewDocument([]blocks.Block{blocks.New(blocks.Text, "")})

	require.NoError(t, d.SetContent(0, "a"))
	require.NoError(t, d.SetContent(0, "ab"))
	require.NoError(t, d.Split(0, 1))
	assert.Equal(t, []string{"a", "b"}, contents(d))

	require.True(t, d.Undo())
	assert.Equal(t, []string{"ab"}, contents(d))
	require.True(t, d.Undo())
	assert.Equal(t, []string{"a"}, contents(d))

	require.True(t, d.Redo())
	assert.Equal(t, []string{"ab"}, contents(d))

	require.NoError(t, d.SetContent(0, "new branch"))
	assert.False(t, d.CanRedo())
	assert.False(t, d.Redo())
}

func TestHistoryIsCapped(t *testing.T) {
	d := blocks.NewDocument(nil)
	for i := range blocks.HistoryLimit + 20 {
		require.NoError(t, d.SetContent(0, strconv.Itoa(i)))
	}

	undone := 0
	for d.Undo() {
		undone++
	}
	assert.Equal(t, blocks.HistoryLimit, undone)
	assert.Equal(t, []string{strconv.Itoa(19)}, contents(d))
}
