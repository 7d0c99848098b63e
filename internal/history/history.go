// Package history records completed conversions in SQLite so repeated
// statements can be detected.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id           TEXT PRIMARY KEY,
	digest       TEXT NOT NULL,
	source       TEXT NOT NULL,
	output       TEXT NOT NULL,
	layout       TEXT NOT NULL,
	transactions INTEGER NOT NULL,
	postings     INTEGER NOT NULL,
	converted_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_digest ON conversions(digest);
`

// Record is one completed conversion.
type Record struct {
	ID           string
	Digest       string
	Source       string
	Output       string
	Layout       models.Layout
	Transactions int
	Postings     int
	ConvertedAt  time.Time
}

// Store is a SQLite-backed conversion log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Add stores a conversion of the file with the given content digest.
func (s *Store) Add(ctx context.Context, digest, source, output string, summary *models.Summary) (Record, error) {
	r := Record{
		ID:           uuid.NewString(),
		Digest:       digest,
		Source:       source,
		Output:       output,
		Layout:       summary.Layout,
		Transactions: summary.Transactions,
		Postings:     summary.Postings,
		ConvertedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, digest, source, output, layout, transactions, postings, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Digest, r.Source, r.Output, string(r.Layout), r.Transactions, r.Postings, r.ConvertedAt)
	if err != nil {
		return Record{}, fmt.Errorf("recording conversion: %w", err)
	}
	return r, nil
}

// Seen reports whether a file with digest was converted before.
func (s *Store) Seen(ctx context.Context, digest string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions WHERE digest = ?`, digest).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying history: %w", err)
	}
	return n > 0, nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, digest, source, output, layout, transactions, postings, converted_at
		 FROM conversions ORDER BY converted_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var layout string
		if err := rows.Scan(&r.ID, &r.Digest, &r.Source, &r.Output, &layout, &r.Transactions, &r.Postings, &r.ConvertedAt); err != nil {
			return nil, err
		}
		r.Layout = models.Layout(layout)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
