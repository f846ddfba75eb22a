// Package store keeps the user's collection of saved slang terms in SQLite.
//
// The collection is bounded: once it holds Limit terms, saving a new term
// evicts the oldest one first.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/slangspace/internal/model"
)

// DefaultLimit is how many terms the collection keeps
const DefaultLimit = 50

// ErrNotFound is returned when a term is not in the collection
var ErrNotFound = errors.New("slang not found")

// Record is a saved term with its row metadata
type Record struct {
	ID        string
	Slang     model.SlangTerm
	CreatedAt time.Time
}

// SQLiteStore is the slang collection backed by a single SQLite file
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	limit  int
	now    func() time.Time
	log    *zap.Logger
}

// Open opens or creates the collection at cfg.Path.
// Pass ":memory:" for an in-memory database (testing).
func Open(cfg model.StoreConfig, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	path := cfg.Path
	if path == "" {
		path = model.DefaultConfig().Store.Path
	}
	path = expandPath(path)
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection so ":memory:" is a single database and writes serialize
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: path, limit: limit, now: time.Now, log: log}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS slangs (
	id              TEXT PRIMARY KEY,
	term            TEXT NOT NULL UNIQUE,
	current_meaning TEXT NOT NULL DEFAULT '',
	periods         TEXT NOT NULL DEFAULT '[]',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_slangs_created ON slangs(created_at);
`)
	return err
}

// Limit returns the collection bound
func (s *SQLiteStore) Limit() int { return s.limit }

// List returns every saved term, oldest first. Listed terms are committed.
func (s *SQLiteStore) List(ctx context.Context) ([]model.SlangTerm, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.SlangTerm, len(records))
	for i, r := range records {
		out[i] = r.Slang
	}
	return out, nil
}

// Records is List with row metadata
func (s *SQLiteStore) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, current_meaning, periods, created_at FROM slangs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing slangs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing slangs: %w", err)
	}
	return out, nil
}

// Get returns one saved term or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, term string) (*model.SlangTerm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, term, current_meaning, periods, created_at FROM slangs WHERE term = ?`,
		model.NormalizeTerm(term))
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r.Slang, nil
}

// Save adds st to the collection. saved is false when the term was already
// present; the stored copy is left untouched.
func (s *SQLiteStore) Save(ctx context.Context, st *model.SlangTerm) (saved bool, err error) {
	if st == nil {
		return false, errors.New("save: nil slang")
	}
	term := model.NormalizeTerm(st.Term)
	if term == "" {
		return false, errors.New("save: empty term")
	}

	periods, err := json.Marshal(nonNilPeriods(st.Periods))
	if err != nil {
		return false, fmt.Errorf("encoding periods: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM slangs WHERE term = ?`, term).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("checking %q: %w", term, err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM slangs`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting slangs: %w", err)
	}
	for ; count >= s.limit; count-- {
		var oldest string
		err := tx.QueryRowContext(ctx,
			`SELECT term FROM slangs ORDER BY created_at, rowid LIMIT 1`).Scan(&oldest)
		if err != nil {
			return false, fmt.Errorf("finding oldest: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM slangs WHERE term = ?`, oldest); err != nil {
			return false, fmt.Errorf("evicting %q: %w", oldest, err)
		}
		s.log.Info("evicted oldest slang", zap.String("term", oldest), zap.Int("limit", s.limit))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO slangs (id, term, current_meaning, periods, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), term, st.CurrentMeaning, string(periods), s.now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("inserting %q: %w", term, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// Delete removes a term. Deleting a missing term returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, term string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slangs WHERE term = ?`, model.NormalizeTerm(term))
	if err != nil {
		return fmt.Errorf("deleting %q: %w", term, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %q: %w", term, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of saved terms
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slangs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting slangs: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		r       Record
		periods string
		created int64
	)
	if err := row.Scan(&r.ID, &r.Slang.Term, &r.Slang.CurrentMeaning, &periods, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning slang: %w", err)
	}
	if err := json.Unmarshal([]byte(periods), &r.Slang.Periods); err != nil {
		return nil, fmt.Errorf("decoding periods of %q: %w", r.Slang.Term, err)
	}
	r.Slang.IsCommitted = true
	r.CreatedAt = time.UnixMilli(created).UTC()
	return &r, nil
}

func nonNilPeriods(p []model.Period) []model.Period {
	if p == nil {
		return []model.Period{}
	}
	return p
}

// expandPath expands a leading ~ to the home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
