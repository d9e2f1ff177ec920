package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/degree-registry-api/internal/models"
)

// MemoryJournal keeps committed entries in process. It backs the journal
// endpoints when PostgreSQL persistence is disabled.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []models.JournalEntry
}

// NewMemoryJournal constructs an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Append stores a copy of the entry.
func (j *MemoryJournal) Append(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, *entry)
	return nil
}

// List mirrors JournalRepository.List.
func (j *MemoryJournal) List(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	start := sort.Search(len(j.entries), func(i int) bool { return j.entries[i].Seq > afterSeq })
	end := len(j.entries)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]models.JournalEntry, end-start)
	copy(out, j.entries[start:end])
	return out, nil
}
