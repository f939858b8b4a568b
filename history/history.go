// Package history keeps a SQLite log of every speech output axlive
// dispatched, so hosts and agents can replay what was announced.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/axlive/axtree"
	"github.com/hazyhaar/axlive/internal/dbopen"
	"github.com/hazyhaar/axlive/output"
)

// Schema creates the announcements table. Open applies it; callers that
// bring their own *sql.DB pass it to dbopen.WithSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS announcements (
    id         TEXT PRIMARY KEY,
    category   TEXT NOT NULL,
    queue_mode TEXT NOT NULL,
    node_id    INTEGER NOT NULL,
    role       TEXT NOT NULL DEFAULT '',
    prefix     TEXT NOT NULL DEFAULT '',
    speech     TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_announcements_created ON announcements(created_at DESC);
`

// DefaultLimit caps Recent when the caller passes no limit.
const DefaultLimit = 50

// MaxLimit is the largest page Recent returns.
const MaxLimit = 500

// Store reads and writes the announcements table.
type Store struct {
	db *sql.DB
}

// New wraps a database that already carries Schema.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return New(db), nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record appends out. Recording the same ID twice is an error.
func (s *Store) Record(ctx context.Context, out output.Output) error {
	speech, err := json.Marshal(out.Speech)
	if err != nil {
		return fmt.Errorf("history: encode speech: %w", err)
	}
	_, err = dbopen.Exec(ctx, s.db,
		`INSERT INTO announcements (id, category, queue_mode, node_id, role, prefix, speech, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, string(out.Category), string(out.QueueMode), int64(out.Range),
		out.Role.String(), out.Prefix, string(speech), out.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", out.ID, err)
	}
	return nil
}

// Recent returns the newest outputs first. limit <= 0 means DefaultLimit;
// it is capped at MaxLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]output.Output, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, queue_mode, node_id, role, prefix, speech, created_at
		 FROM announcements ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var outs []output.Output
	for rows.Next() {
		var (
			out             output.Output
			category, mode  string
			node            int64
			role, speechRaw string
		)
		if err := rows.Scan(&out.ID, &category, &mode, &node, &role, &out.Prefix, &speechRaw, &out.Timestamp); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out.Category = output.Category(category)
		out.QueueMode = output.QueueMode(mode)
		out.Range = axtree.NodeID(node)
		out.Role = axtree.ParseRole(role)
		if err := json.Unmarshal([]byte(speechRaw), &out.Speech); err != nil {
			return nil, fmt.Errorf("history: decode speech %s: %w", out.ID, err)
		}
		outs = append(outs, out)
	}
	return outs, rows.Err()
}

// Purge deletes outputs older than before and returns how many went.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := dbopen.Exec(ctx, s.db, `DELETE FROM announcements WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("history: purge: %w", err)
	}
	return res.RowsAffected()
}
