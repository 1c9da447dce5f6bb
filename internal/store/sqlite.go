package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS comparisons (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_updated_at ON companies(updated_at);
CREATE INDEX IF NOT EXISTS idx_comparisons_updated_at ON comparisons(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCompany(ctx context.Context, key string) (*model.CompanyRecord, error) {
	data, err := scanData(s.db.QueryRowContext(ctx, `SELECT data FROM companies WHERE key = ?`, key))
	if err != nil || data == nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", key)
	}
	return decodeCompany(data)
}

func (s *SQLiteStore) PutCompany(ctx context.Context, key string, rec *model.CompanyRecord) error {
	data, err := encodeCompany(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (key, name, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET name = excluded.name, data = excluded.data, updated_at = excluded.updated_at`,
		key, rec.Name, string(data), writtenAt(rec.LastUpdated).Unix(),
	)
	return eris.Wrapf(err, "sqlite: put company %s", key)
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.CompanyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM companies ORDER BY name, key`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CompanyRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		rec, err := decodeCompany([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate companies")
}

func (s *SQLiteStore) GetComparison(ctx context.Context, id string) (*model.ComparisonResult, error) {
	data, err := scanData(s.db.QueryRowContext(ctx, `SELECT data FROM comparisons WHERE id = ?`, id))
	if err != nil || data == nil {
		return nil, eris.Wrapf(err, "sqlite: get comparison %s", id)
	}
	return decodeComparison(data)
}

func (s *SQLiteStore) PutComparison(ctx context.Context, id string, res *model.ComparisonResult) error {
	data, err := encodeComparison(res)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO comparisons (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(data), writtenAt(res.LastUpdated).Unix(),
	)
	return eris.Wrapf(err, "sqlite: put comparison %s", id)
}

func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for _, table := range []string{"companies", "comparisons"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE updated_at < ?`, before.Unix())
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: prune %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "sqlite: rows affected")
		}
		total += int(n)
	}
	return total, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

// scanData reads a single data column. A missing row yields nil, nil.
func scanData(row scannable) ([]byte, error) {
	var data string
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}
