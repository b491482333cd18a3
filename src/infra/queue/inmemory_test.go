package queue

import (
	"testing"

	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue()

	require.NoError(t, q.Add(importing.RejectedItem{ID: "a", Reason: importing.ReasonBadFilename}))
	require.NoError(t, q.Add(importing.RejectedItem{ID: "b", Reason: importing.ReasonUnreadable}))
	assert.ErrorIs(t, q.Add(importing.RejectedItem{ID: "a"}), importing.ErrAlreadyExists)

	item, err := q.GetByID("a")
	require.NoError(t, err)
	assert.Equal(t, importing.ReasonBadFilename, item.Reason)
	assert.Len(t, q.GetAll(), 2)

	require.NoError(t, q.Remove("a"))
	assert.ErrorIs(t, q.Remove("a"), importing.ErrNotFound)
	_, err = q.GetByID("a")
	assert.ErrorIs(t, err, importing.ErrNotFound)

	require.NoError(t, q.Clear())
	assert.Empty(t, q.GetAll())
}
