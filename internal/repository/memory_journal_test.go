package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-registry-api/internal/models"
)

func TestMemoryJournalList(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	for seq := int64(1); seq <= 5; seq++ {
		require.NoError(t, j.Append(ctx, &models.JournalEntry{Seq: seq, Command: models.CommandRegisterStudent}))
	}

	all, err := j.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.NotEmpty(t, all[0].ID)

	page, err := j.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].Seq)
	assert.Equal(t, int64(4), page[1].Seq)

	none, err := j.List(ctx, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
