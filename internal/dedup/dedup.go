// Package dedup suppresses repeated signal deliveries. Webhook providers
// redeliver on timeouts and at-least-once queues, so each signal key is
// remembered for a cooldown window and repeats inside it are dropped.
package dedup

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Store persists seen signal keys in SQLite so the cooldown window
// survives process restarts.
type Store struct {
	db             *sql.DB
	cooldown       time.Duration
	sweepThreshold int

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// New opens (or creates) the dedup database at path. Keys are remembered
// for the cooldown window; expired rows are swept lazily once the table
// grows past sweepThreshold.
func New(path string, cooldown time.Duration, sweepThreshold int) (*Store, error) {
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	if sweepThreshold <= 0 {
		sweepThreshold = 1000
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "dedup: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "dedup: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS seen_signals (
	key        TEXT PRIMARY KEY,
	expires_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seen_signals_expires_at ON seen_signals(expires_at);
`
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "dedup: migrate")
	}

	return &Store{
		db:             db,
		cooldown:       cooldown,
		sweepThreshold: sweepThreshold,
		nowFunc:        time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CheckAndMark reports whether key was already seen inside the cooldown
// window. A fresh key is recorded; a repeat inside the window is not
// re-recorded, so the original expiry stands.
func (s *Store) CheckAndMark(ctx context.Context, key string) (bool, error) {
	now := s.nowFunc().UTC()

	var expires time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM seen_signals WHERE key = ?`, key,
	).Scan(&expires)
	switch {
	case err == nil:
		if expires.After(now) {
			return true, nil
		}
	case err != sql.ErrNoRows:
		return false, eris.Wrap(err, "dedup: lookup key")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO seen_signals (key, expires_at) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET expires_at = excluded.expires_at`,
		key, now.Add(s.cooldown),
	)
	if err != nil {
		return false, eris.Wrap(err, "dedup: mark key")
	}

	if err := s.maybeSweep(ctx, now); err != nil {
		return false, err
	}
	return false, nil
}

// maybeSweep drops expired rows once the table crosses the threshold.
// Sweeping on the write path keeps the store maintenance-free.
func (s *Store) maybeSweep(ctx context.Context, now time.Time) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_signals`).Scan(&count); err != nil {
		return eris.Wrap(err, "dedup: count keys")
	}
	if count <= s.sweepThreshold {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM seen_signals WHERE expires_at <= ?`, now); err != nil {
		return eris.Wrap(err, "dedup: sweep expired keys")
	}
	return nil
}

// Size returns the number of stored keys, expired rows included.
func (s *Store) Size(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_signals`).Scan(&count); err != nil {
		return 0, eris.Wrap(err, "dedup: count keys")
	}
	return count, nil
}
