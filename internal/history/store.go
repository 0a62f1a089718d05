package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"secret-santa/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS draws (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	year       INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS draw_pairs (
	draw_id        INTEGER NOT NULL REFERENCES draws(id),
	giver_name     TEXT NOT NULL,
	recipient_name TEXT NOT NULL
);
`

// Store persists past draws so later years can exclude repeat pairs.
// It is read-only input for the matching engine; recording a draw is an
// explicit organizer action.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores one finished draw tagged with a year. Pairs are stored
// by display name so they survive across runs.
func (s *Store) Record(year int, assignment models.Assignment, roster models.Roster) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO draws (year) VALUES (?)`, year)
	if err != nil {
		return fmt.Errorf("failed to insert draw: %w", err)
	}
	drawID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read draw id: %w", err)
	}

	for giverID, recipientID := range assignment {
		giver, ok := roster.Get(giverID)
		if !ok {
			return fmt.Errorf("giver %s is not on the roster", giverID)
		}
		recipient, ok := roster.Get(recipientID)
		if !ok {
			return fmt.Errorf("recipient %s is not on the roster", recipientID)
		}
		if _, err := tx.Exec(
			`INSERT INTO draw_pairs (draw_id, giver_name, recipient_name) VALUES (?, ?, ?)`,
			drawID, giver.Name, recipient.Name,
		); err != nil {
			return fmt.Errorf("failed to insert pair: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the most recent draws, newest first. A window of -1
// returns every recorded draw; a window of 0 returns none.
func (s *Store) Recent(window int) ([]models.PastDraw, error) {
	if window == 0 {
		return nil, nil
	}

	query := `SELECT id, year FROM draws ORDER BY id DESC`
	args := []any{}
	if window > 0 {
		query += ` LIMIT ?`
		args = append(args, window)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query draws: %w", err)
	}
	defer rows.Close()

	type drawHead struct {
		id   int64
		year int
	}
	var heads []drawHead
	for rows.Next() {
		var h drawHead
		if err := rows.Scan(&h.id, &h.year); err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		heads = append(heads, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read draws: %w", err)
	}

	draws := make([]models.PastDraw, 0, len(heads))
	for _, h := range heads {
		pairs, err := s.pairsFor(h.id)
		if err != nil {
			return nil, err
		}
		draws = append(draws, models.PastDraw{Year: h.year, Pairs: pairs})
	}
	return draws, nil
}

func (s *Store) pairsFor(drawID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT giver_name, recipient_name FROM draw_pairs WHERE draw_id = ?`, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var giver, recipient string
		if err := rows.Scan(&giver, &recipient); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs[giver] = recipient
	}
	return pairs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
