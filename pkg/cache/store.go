package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is a stored HTTP response
type Entry struct {
	Key        string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Stats summarizes the cache contents at a point in time
type Stats struct {
	Live    int
	Expired int
}

// Store persists HTTP responses in a SQLite database file
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

const schema = `
	CREATE TABLE IF NOT EXISTS responses (
		key         TEXT PRIMARY KEY,
		url         TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		header      TEXT NOT NULL,
		body        BLOB NOT NULL,
		created_at  INTEGER NOT NULL,
		expires_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_expires_at ON responses (expires_at);`

// Open opens or creates the cache database at path. Entries live for ttl.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// a single connection keeps sqlite writes serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// TTL returns how long entries stay fresh
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Key derives the cache key for a request signature
func Key(method, canonicalURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(method+" "+canonicalURL)).String()
}

// Get returns the entry stored under key if it has not expired
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool, error) {
	query := `
		SELECT key, url, status_code, header, body, created_at, expires_at
		FROM responses
		WHERE key = ? AND expires_at > ?`

	var (
		e         Entry
		header    string
		createdAt int64
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, query, key, s.now().UnixNano()).
		Scan(&e.Key, &e.URL, &e.StatusCode, &header, &e.Body, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	if err := json.Unmarshal([]byte(header), &e.Header); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached header: %w", err)
	}
	e.CreatedAt = time.Unix(0, createdAt)
	e.ExpiresAt = time.Unix(0, expiresAt)

	return &e, true, nil
}

// Set stores a response under key, replacing any previous entry
func (s *Store) Set(ctx context.Context, key, url string, statusCode int, header http.Header, body []byte) error {
	h, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	now := s.now()
	query := `
		INSERT INTO responses (key, url, status_code, header, body, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			url = excluded.url,
			status_code = excluded.status_code,
			header = excluded.header,
			body = excluded.body,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`

	_, err = s.db.ExecContext(ctx, query, key, url, statusCode, string(h), body, now.UnixNano(), now.Add(s.ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts live and expired entries
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM responses`

	now := s.now().UnixNano()
	var st Stats
	if err := s.db.QueryRowContext(ctx, query, now, now).Scan(&st.Live, &st.Expired); err != nil {
		return Stats{}, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return st, nil
}
