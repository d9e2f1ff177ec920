package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-registry-api/internal/models"
	"github.com/noah-isme/degree-registry-api/internal/registry"
)

// JournalStore persists and lists registry commands.
type JournalStore interface {
	Append(ctx context.Context, entry *models.JournalEntry) error
	List(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error)
}

// BootstrapRegistry rebuilds the registry from every stored journal entry and
// journals subsequent commands to the same store.
func BootstrapRegistry(ctx context.Context, journal JournalStore, logger *zap.Logger) (*registry.Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := journal.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	reg := registry.New(registry.WithJournal(journal))
	if err := reg.Replay(ctx, entries); err != nil {
		return nil, err
	}
	logger.Info("registry restored", zap.Int("entries", len(entries)), zap.Int64("last_seq", reg.Stats().LastSeq))
	return reg, nil
}
