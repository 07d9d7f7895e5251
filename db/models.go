package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crossword-scraper/models"

	"github.com/lib/pq"
)

// Run statuses
const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// HarvestRun represents one harvest stored in database
type HarvestRun struct {
	ID         int
	Endpoint   string
	Status     string // "in_progress", "done", "failed"
	Pages      int
	Words      int
	Skipped    int
	LastError  sql.NullString
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// StartRun records the beginning of a harvest
func (db *DB) StartRun(ctx context.Context, endpoint string) (*HarvestRun, error) {
	var run HarvestRun
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO harvest_runs (endpoint, status)
		VALUES ($1, 'in_progress')
		RETURNING id, endpoint, status, started_at
	`, endpoint).Scan(&run.ID, &run.Endpoint, &run.Status, &run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return &run, nil
}

// FinishRun stores the outcome of a harvest. runErr nil marks it done.
func (db *DB) FinishRun(ctx context.Context, runID, pages, words, skipped int, runErr error) error {
	status := StatusDone
	var lastError sql.NullString
	if runErr != nil {
		status = StatusFailed
		lastError = sql.NullString{String: runErr.Error(), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, `
		UPDATE harvest_runs
		SET status = $1, pages = $2, words = $3, skipped = $4, last_error = $5, finished_at = CURRENT_TIMESTAMP
		WHERE id = $6
	`, status, pages, words, skipped, lastError, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}
	return nil
}

// SaveDictionary upserts every word in one transaction
func (db *DB) SaveDictionary(ctx context.Context, runID int, dict models.Dictionary) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO words (word, definitions, run_id, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (word) DO UPDATE
		SET definitions = EXCLUDED.definitions, run_id = EXCLUDED.run_id, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range dict.Entries() {
		if _, err := stmt.ExecContext(ctx, entry.Word, pq.Array(entry.Definitions), runID); err != nil {
			return fmt.Errorf("failed to save word %q: %w", entry.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit words: %w", err)
	}
	return nil
}

// GetWord loads one word's definitions. It returns nil when the word is unknown.
func (db *DB) GetWord(ctx context.Context, word string) ([]string, error) {
	var defs []string
	err := db.conn.QueryRowContext(ctx, `
		SELECT definitions FROM words WHERE word = $1
	`, word).Scan(pq.Array(&defs))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word %q: %w", word, err)
	}
	return defs, nil
}

// CountWords returns the number of stored words
func (db *DB) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}
