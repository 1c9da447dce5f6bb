package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

const (
	redisPrefix          = "datascraper:"
	redisCompanyIndex    = redisPrefix + "companies"
	redisComparisonIndex = redisPrefix + "comparisons"
)

// redisClient is the subset of *redis.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ redisClient = (*redis.Client)(nil)

// RedisStore implements Store on Redis. Each value is a JSON string that
// expires after the retention window; index sets track live keys.
type RedisStore struct {
	client    redisClient
	retention time.Duration
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Retention time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "redis: ping")
	}
	return &RedisStore{client: rdb, retention: cfg.Retention}, nil
}

func companyKey(key string) string   { return redisPrefix + "company:" + key }
func comparisonKey(id string) string { return redisPrefix + "comparison:" + id }

func (s *RedisStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (s *RedisStore) put(ctx context.Context, index, key, member string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.retention).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, index, member).Err()
}

func (s *RedisStore) GetCompany(ctx context.Context, key string) (*model.CompanyRecord, error) {
	data, err := s.get(ctx, companyKey(key))
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get company %s", key)
	}
	if data == nil {
		return nil, nil
	}
	return decodeCompany(data)
}

func (s *RedisStore) PutCompany(ctx context.Context, key string, rec *model.CompanyRecord) error {
	data, err := encodeCompany(rec)
	if err != nil {
		return err
	}
	return eris.Wrapf(s.put(ctx, redisCompanyIndex, companyKey(key), key, data), "redis: put company %s", key)
}

func (s *RedisStore) ListCompanies(ctx context.Context) ([]model.CompanyRecord, error) {
	members, err := s.client.SMembers(ctx, redisCompanyIndex).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: list company index")
	}
	if len(members) == 0 {
		return nil, nil
	}
	sort.Strings(members)

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = companyKey(m)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, eris.Wrap(err, "redis: mget companies")
	}

	out := make([]model.CompanyRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// expired since it was indexed
			continue
		}
		rec, err := decodeCompany([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RedisStore) GetComparison(ctx context.Context, id string) (*model.ComparisonResult, error) {
	data, err := s.get(ctx, comparisonKey(id))
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get comparison %s", id)
	}
	if data == nil {
		return nil, nil
	}
	return decodeComparison(data)
}

func (s *RedisStore) PutComparison(ctx context.Context, id string, res *model.ComparisonResult) error {
	data, err := encodeComparison(res)
	if err != nil {
		return err
	}
	return eris.Wrapf(s.put(ctx, redisComparisonIndex, comparisonKey(id), id, data), "redis: put comparison %s", id)
}

// Prune drops index members whose values Redis has already expired. The
// cutoff is ignored because expiry is enforced server-side.
func (s *RedisStore) Prune(ctx context.Context, _ time.Time) (int, error) {
	total := 0
	for _, idx := range []struct {
		set   string
		keyFn func(string) string
	}{
		{redisCompanyIndex, companyKey},
		{redisComparisonIndex, comparisonKey},
	} {
		members, err := s.client.SMembers(ctx, idx.set).Result()
		if err != nil {
			return total, eris.Wrapf(err, "redis: read index %s", idx.set)
		}
		if len(members) == 0 {
			continue
		}
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = idx.keyFn(m)
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return total, eris.Wrapf(err, "redis: mget %s", idx.set)
		}
		var gone []any
		for i, v := range values {
			if v == nil {
				gone = append(gone, members[i])
			}
		}
		if len(gone) == 0 {
			continue
		}
		if err := s.client.SRem(ctx, idx.set, gone...).Err(); err != nil {
			return total, eris.Wrapf(err, "redis: trim index %s", idx.set)
		}
		total += len(gone)
	}
	return total, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.client.Ping(ctx).Err(), "redis: ping")
}

// Migrate is a no-op; Redis needs no schema.
func (s *RedisStore) Migrate(context.Context) error { return nil }

func (s *RedisStore) Close() error {
	return s.client.Close()
}
