// Package history persists completed downloads in Postgres or SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver selects the database backend.
type Driver string

const (
	DriverPostgres Driver = "pgx"
	DriverSQLite   Driver = "sqlite"
)

// Store is the download history table.
type Store struct {
	db     *sql.DB
	driver Driver
	pool   *pgxpool.Pool
}

// Open connects to the history database. Postgres goes through a pgx pool;
// SQLite uses the pure-Go modernc driver.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres:
		cfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DSN: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		return &Store{db: stdlib.OpenDBFromPool(pool), driver: driver, pool: pool}, nil
	case DriverSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Store{db: db, driver: driver}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// NewStore wraps an existing connection.
func NewStore(db *sql.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Driver returns the backend in use.
func (s *Store) Driver() Driver { return s.driver }

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection and, for Postgres, the pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const columns = `id, url, title, uploader, extractor_key, video_id, file_path, path_hint, thumbnail, duration, file_size, info, downloaded_at`

// Insert adds r, replacing an earlier download of the same video.
func (s *Store) Insert(ctx context.Context, r Record) error {
	if r.ID == uuid.Nil {
		return errors.New("history: record has no id")
	}
	if r.DownloadedAt.IsZero() {
		r.DownloadedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO download_history (`+columns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	url = excluded.url,
	title = excluded.title,
	uploader = excluded.uploader,
	file_path = excluded.file_path,
	path_hint = excluded.path_hint,
	thumbnail = excluded.thumbnail,
	duration = excluded.duration,
	file_size = excluded.file_size,
	info = excluded.info,
	downloaded_at = excluded.downloaded_at`),
		r.ID.String(), r.URL, r.Title, r.Uploader, r.ExtractorKey, r.VideoID, r.FilePath, r.PathHint,
		r.Thumbnail, r.Duration, r.FileSize, r.Info, r.DownloadedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// List returns the most recent records first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT ` + columns + ` FROM download_history ORDER BY downloaded_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r      Record
			millis int64
		)
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.Uploader, &r.ExtractorKey, &r.VideoID, &r.FilePath,
			&r.PathHint, &r.Thumbnail, &r.Duration, &r.FileSize, &r.Info, &millis); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		r.DownloadedAt = time.UnixMilli(millis).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Exists reports whether a record with id is stored.
func (s *Store) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(1) FROM download_history WHERE id = ?`), id.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check history record: %w", err)
	}
	return count > 0, nil
}

// Delete removes a record, reporting whether one existed.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM download_history WHERE id = ?`), id.String())
	if err != nil {
		return false, fmt.Errorf("delete history record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
