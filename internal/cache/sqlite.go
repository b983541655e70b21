package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/username/hu-holidays/internal/holiday"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// schemaVersion changes whenever the JSON payload layout changes. Rows with
// another version are misses.
const schemaVersion = 1

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS year_cache (
	year           INTEGER PRIMARY KEY,
	payload        TEXT    NOT NULL,
	created_at     TEXT    NOT NULL,
	ttl_ms         INTEGER NOT NULL,
	schema_version INTEGER NOT NULL
)`

// SQLite is a persistent Store keeping one row per year. A row that cannot be
// decoded or fails validation is reported as a miss, never as an error.
type SQLite struct {
	db     *sql.DB
	ttl    time.Duration
	clock  dateutil.Clock
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(ctx context.Context, path string, ttl time.Duration, clock dateutil.Clock, logger *zap.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite cache path is empty")
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create cache directory for %s", path)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite cache %s", path)
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store, err := NewSQLite(ctx, db, ttl, clock, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Opened sqlite cache", zap.String("path", path))
	return store, nil
}

// NewSQLite wraps an open database and ensures the schema exists
func NewSQLite(ctx context.Context, db *sql.DB, ttl time.Duration, clock dateutil.Clock, logger *zap.Logger) (*SQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Wrap(err, "failed to create cache schema")
	}
	return &SQLite{
		db:     db,
		ttl:    ttlOrDefault(ttl),
		clock:  clock,
		logger: logger,
	}, nil
}

// Get implements Store
func (s *SQLite) Get(ctx context.Context, year int) (holiday.YearResult, bool) {
	var (
		payload   string
		createdAt string
		ttlMillis int64
		version   int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, created_at, ttl_ms, schema_version FROM year_cache WHERE year = ?", year,
	).Scan(&payload, &createdAt, &ttlMillis, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return holiday.YearResult{}, false
	}
	if err != nil {
		s.logger.Warn("Failed to read cache entry", zap.Int("year", year), zap.Error(err))
		return holiday.YearResult{}, false
	}

	entry, err := s.decode(year, payload, createdAt, ttlMillis, version)
	if err != nil {
		s.logger.Warn("Discarding unreadable cache entry", zap.Int("year", year), zap.Error(err))
		return holiday.YearResult{}, false
	}

	if !entry.Live(s.clock.Now()) {
		s.logger.Debug("Cache entry expired",
			zap.Int("year", year),
			zap.Time("created_at", entry.CreatedAt))
		return holiday.YearResult{}, false
	}
	return entry.Result, true
}

func (s *SQLite) decode(year int, payload, createdAt string, ttlMillis int64, version int) (*Entry, error) {
	if version != schemaVersion {
		return nil, errors.Newf("schema version %d, want %d", version, schemaVersion)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, errors.Wrap(err, "invalid created_at")
	}

	var result holiday.YearResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, errors.Wrap(err, "invalid payload")
	}
	if result.Year != year {
		return nil, errors.Newf("payload is for year %d", result.Year)
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &Entry{
		Year:      year,
		Result:    result,
		CreatedAt: created,
		TTL:       time.Duration(ttlMillis) * time.Millisecond,
	}, nil
}

// Put implements Store
func (s *SQLite) Put(ctx context.Context, year int, result holiday.YearResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "failed to encode result for %d", year)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO year_cache (year, payload, created_at, ttl_ms, schema_version) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET payload=excluded.payload, created_at=excluded.created_at,
			ttl_ms=excluded.ttl_ms, schema_version=excluded.schema_version`,
		year, string(payload), s.clock.Now().UTC().Format(time.RFC3339Nano), s.ttl.Milliseconds(), schemaVersion,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to store cache entry for %d", year)
	}
	return nil
}

// Invalidate implements Store
func (s *SQLite) Invalidate(ctx context.Context, year int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM year_cache WHERE year = ?", year); err != nil {
		return errors.Wrapf(err, "failed to invalidate %d", year)
	}
	return nil
}

// InvalidateAll implements Store
func (s *SQLite) InvalidateAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM year_cache"); err != nil {
		return errors.Wrap(err, "failed to invalidate cache")
	}
	return nil
}

// Close implements Store
func (s *SQLite) Close() error {
	return s.db.Close()
}
