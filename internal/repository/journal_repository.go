package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/degree-registry-api/internal/models"
)

const journalSchema = `CREATE TABLE IF NOT EXISTS registry_journal (
    seq BIGINT PRIMARY KEY,
    id UUID NOT NULL UNIQUE,
    command TEXT NOT NULL,
    principal TEXT NOT NULL,
    payload JSONB NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL
)`

// JournalRepository persists committed registry commands in PostgreSQL.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository constructs the repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// EnsureSchema creates the journal table when missing.
func (r *JournalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Append inserts an entry. The seq primary key rejects a second writer that
// raced on the same sequence.
func (r *JournalRepository) Append(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO registry_journal (seq, id, command, principal, payload, applied_at)
        VALUES (:seq, :id, :command, :principal, :payload, :applied_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append journal entry %d: %w", entry.Seq, err)
	}
	return nil
}

// List returns entries with seq greater than afterSeq in order. A limit of
// zero or less returns every remaining entry.
func (r *JournalRepository) List(ctx context.Context, afterSeq int64, limit int) ([]models.JournalEntry, error) {
	query := `SELECT seq, id, command, principal, payload, applied_at FROM registry_journal WHERE seq > $1 ORDER BY seq ASC`
	args := []interface{}{afterSeq}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}
