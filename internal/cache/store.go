// Package cache persists lint results between runs in a SQLite database.
//
// Entries are keyed by file path and are valid only while both the file's
// content hash and the configuration hash match. Diagnostics are stored as
// zstd-compressed JSON.
package cache

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"

	"polylint/internal/sortcomp"
)

// SchemaVersion is bumped whenever the payload encoding changes.
const SchemaVersion = 1

// runTimeLayout is fixed width so that run timestamps sort as text.
const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store provides persistence for cached lint results.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// Run records one invocation of the linter.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Files      int        `json:"files"`
	Violations int        `json:"violations"`
}

// Open opens or creates the cache database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-8000", // 8MB cache
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
		enc:    enc,
		dec:    dec,
	}

	if err := store.initializeSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	logger.Debug("Opened cache", "path", dbPath)
	return store, nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			path TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			config_hash TEXT NOT NULL,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			files INTEGER DEFAULT 0,
			violations INTEGER DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}

	var version int
	err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}
	if version != SchemaVersion {
		// Payloads from another schema cannot be decoded.
		if _, err := s.conn.Exec("DELETE FROM entries"); err != nil {
			return err
		}
		if _, err := s.conn.Exec("DELETE FROM schema_version"); err != nil {
			return err
		}
		if _, err := s.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.enc != nil {
		_ = s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Get returns the cached diagnostics for path. ok is false when there is no
// entry or the entry was computed from other content or configuration.
func (s *Store) Get(path, hash, configHash string) ([]sortcomp.Diagnostic, bool, error) {
	var storedHash, storedConfig string
	var payload []byte

	err := s.conn.QueryRow(`
		SELECT hash, config_hash, payload
		FROM entries WHERE path = ?
	`, path).Scan(&storedHash, &storedConfig, &payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}
	if storedHash != hash || storedConfig != configHash {
		return nil, false, nil
	}

	raw, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	var diags []sortcomp.Diagnostic
	if err := json.Unmarshal(raw, &diags); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return diags, true, nil
}

// Put stores the diagnostics computed for path.
func (s *Store) Put(path, hash, configHash string, diags []sortcomp.Diagnostic) error {
	if diags == nil {
		diags = []sortcomp.Diagnostic{}
	}
	raw, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	payload := s.enc.EncodeAll(raw, nil)

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO entries (path, hash, config_hash, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, path, hash, configHash, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// Prune removes entries whose path is not in existing.
func (s *Store) Prune(existing []string) (int64, error) {
	keep := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		keep[p] = struct{}{}
	}

	rows, err := s.conn.Query("SELECT path FROM entries")
	if err != nil {
		return 0, fmt.Errorf("failed to list cache entries: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		if _, ok := keep[p]; !ok {
			stale = append(stale, p)
		}
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating cache entries: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for _, p := range stale {
		res, err := tx.Exec("DELETE FROM entries WHERE path = ?", p)
		if err != nil {
			return 0, fmt.Errorf("failed to prune cache entry: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	s.logger.Debug("Pruned cache", "removed", removed)
	return removed, nil
}

// BeginRun records the start of a run.
func (s *Store) BeginRun() (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	_, err := s.conn.Exec(`
		INSERT INTO runs (id, started_at) VALUES (?, ?)
	`, run.ID, run.StartedAt.Format(runTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// FinishRun records the totals of a run started with BeginRun.
func (s *Store) FinishRun(run *Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now

	result, err := s.conn.Exec(`
		UPDATE runs SET finished_at = ?, files = ?, violations = ?
		WHERE id = ?
	`, now.Format(runTimeLayout), run.Files, run.Violations, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when there is none.
func (s *Store) LastRun() (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := s.conn.QueryRow(`
		SELECT id, started_at, finished_at, files, violations
		FROM runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&run.ID, &startedAt, &finishedAt, &run.Files, &run.Violations)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if t, err := time.Parse(runTimeLayout, startedAt); err == nil {
		run.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(runTimeLayout, finishedAt.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}

// HashContent returns the hex BLAKE2b-256 digest of data.
func HashContent(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashConfig returns a digest identifying a rule configuration.
func HashConfig(parts ...string) string {
	h, _ := blake2b.New256(nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
