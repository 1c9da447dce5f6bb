package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/db"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// PostgresStore implements Store using pgxpool with JSONB documents.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgGetCompany = `SELECT data FROM companies WHERE key = $1`
	pgPutCompany = `INSERT INTO companies (key, name, data, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	pgListCompanies = `SELECT data FROM companies ORDER BY name, key`
	pgGetComparison = `SELECT data FROM comparisons WHERE id = $1`
	pgPutComparison = `INSERT INTO comparisons (id, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
)

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"get_company":    pgGetCompany,
	"put_company":    pgPutCompany,
	"get_comparison": pgGetComparison,
	"put_comparison": pgPutComparison,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS comparisons (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
CREATE INDEX IF NOT EXISTS idx_companies_updated_at ON companies(updated_at);
CREATE INDEX IF NOT EXISTS idx_comparisons_updated_at ON comparisons(updated_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, key string) (*model.CompanyRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, pgGetCompany, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", key)
	}
	return decodeCompany(data)
}

func (s *PostgresStore) PutCompany(ctx context.Context, key string, rec *model.CompanyRecord) error {
	data, err := encodeCompany(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, pgPutCompany, key, rec.Name, data, writtenAt(rec.LastUpdated))
	return eris.Wrapf(err, "postgres: put company %s", key)
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.CompanyRecord, error) {
	rows, err := s.pool.Query(ctx, pgListCompanies)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []model.CompanyRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		rec, err := decodeCompany(data)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate companies")
}

func (s *PostgresStore) GetComparison(ctx context.Context, id string) (*model.ComparisonResult, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, pgGetComparison, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get comparison %s", id)
	}
	return decodeComparison(data)
}

func (s *PostgresStore) PutComparison(ctx context.Context, id string, res *model.ComparisonResult) error {
	data, err := encodeComparison(res)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, pgPutComparison, id, data, writtenAt(res.LastUpdated))
	return eris.Wrapf(err, "postgres: put comparison %s", id)
}

func (s *PostgresStore) Prune(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for _, table := range []string{"companies", "comparisons"} {
		tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE updated_at < $1`, before.UTC())
		if err != nil {
			return total, eris.Wrapf(err, "postgres: prune %s", table)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}
