package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-registry-api/internal/models"
	"github.com/noah-isme/degree-registry-api/internal/repository"
)

type failingJournal struct{}

func (failingJournal) Append(context.Context, *models.JournalEntry) error { return nil }

func (failingJournal) List(context.Context, int64, int) ([]models.JournalEntry, error) {
	return nil, errors.New("connection refused")
}

func TestBootstrapRegistryReplaysJournal(t *testing.T) {
	ctx := context.Background()
	journal := repository.NewMemoryJournal()

	first, err := BootstrapRegistry(ctx, journal, nil)
	require.NoError(t, err)
	require.NoError(t, first.RegisterProfessor(ctx, "0xprof", "Ada"))
	require.NoError(t, first.RegisterCourse(ctx, "0xprof", "Mechanics", "M101"))
	classID, err := first.RegisterClass(ctx, "0xprof", "M101")
	require.NoError(t, err)

	second, err := BootstrapRegistry(ctx, journal, nil)
	require.NoError(t, err)
	class, err := second.Class(classID)
	require.NoError(t, err)
	assert.Equal(t, models.Principal("0xprof"), class.Owner)
	assert.Equal(t, int64(3), second.Stats().LastSeq)

	require.NoError(t, second.RegisterStudent(ctx, "0xstu", 7, "Grace"))
	entries, err := journal.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].Seq)
}

func TestBootstrapRegistryFailsWhenJournalUnreadable(t *testing.T) {
	_, err := BootstrapRegistry(context.Background(), failingJournal{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load journal")
}
