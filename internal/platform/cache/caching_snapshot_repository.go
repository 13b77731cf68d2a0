// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"holdings_backend/internal/feature/holdings/domain/entity"
	"holdings_backend/internal/feature/holdings/usecase"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultNamespace = "holdings"
	scanCount        = 200
)

// CachingSnapshotRepository decorates a SnapshotRepository with Redis caching.
// Reads are served read-through; every Upsert invalidates the keys of the
// funds it touched. Values are msgpack encoded.
type CachingSnapshotRepository struct {
	inner     usecase.SnapshotRepository
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var _ usecase.SnapshotRepository = (*CachingSnapshotRepository)(nil)

// NewCachingSnapshotRepository decorates a SnapshotRepository with Redis caching.
// A nil rdb disables caching. If ttl is nil, entries live 5 minutes. If
// namespace is empty, it uses "holdings".
func NewCachingSnapshotRepository(rdb *redis.Client, ttl func() time.Duration, inner usecase.SnapshotRepository, namespace string) *CachingSnapshotRepository {
	if ttl == nil {
		ttl = func() time.Duration { return defaultTTL }
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingSnapshotRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Upsert writes through to the inner repository and invalidates related entries.
func (c *CachingSnapshotRepository) Upsert(ctx context.Context, holdings []entity.Holding) error {
	if err := c.inner.Upsert(ctx, holdings); err != nil {
		return err
	}
	if c.rdb == nil || len(holdings) == 0 {
		return nil
	}

	// Best effort: a stale entry expires with its TTL
	_ = c.rdb.Del(ctx, c.fundsKey()).Err()
	seen := map[string]struct{}{}
	for _, h := range holdings {
		fund := strings.ToUpper(h.Fund)
		if _, ok := seen[fund]; ok {
			continue
		}
		seen[fund] = struct{}{}
		_ = c.deleteByPattern(ctx, c.fundPrefix(fund)+"*")
	}
	return nil
}

// ListFunds returns the stored funds, cached under a single key.
func (c *CachingSnapshotRepository) ListFunds(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c, c.fundsKey(), func() ([]string, error) {
		return c.inner.ListFunds(ctx)
	})
}

// ListDates returns the snapshot dates of fund.
func (c *CachingSnapshotRepository) ListDates(ctx context.Context, fund string) ([]time.Time, error) {
	dates, err := readThrough(ctx, c, c.fundPrefix(fund)+"dates", func() ([]time.Time, error) {
		return c.inner.ListDates(ctx, fund)
	})
	for i := range dates {
		dates[i] = entity.Day(dates[i].UTC())
	}
	return dates, err
}

// Totals returns the aggregate of one snapshot.
func (c *CachingSnapshotRepository) Totals(ctx context.Context, date time.Time, fund string) (entity.Totals, error) {
	key := c.fundPrefix(fund) + "totals:" + date.Format(entity.DateLayout)
	return readThrough(ctx, c, key, func() (entity.Totals, error) {
		return c.inner.Totals(ctx, date, fund)
	})
}

// FindSnapshot returns the rows of one snapshot.
func (c *CachingSnapshotRepository) FindSnapshot(ctx context.Context, date time.Time, fund string) ([]entity.Holding, error) {
	key := c.fundPrefix(fund) + "snapshot:" + date.Format(entity.DateLayout)
	rows, err := readThrough(ctx, c, key, func() ([]entity.Holding, error) {
		return c.inner.FindSnapshot(ctx, date, fund)
	})
	for i := range rows {
		rows[i].Date = entity.Day(rows[i].Date.UTC())
	}
	return rows, err
}

// readThrough checks the cache first, then falls back to load and stores
// its result.
func readThrough[T any](ctx context.Context, c *CachingSnapshotRepository, key string, load func() (T, error)) (T, error) {
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := msgpack.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the inner repository
	out, err := load()
	if err != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := msgpack.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl()).Err()
	}
	return out, nil
}

func (c *CachingSnapshotRepository) fundsKey() string {
	return c.namespace + ":funds"
}

// fundPrefix returns the prefix shared by every key of one fund.
func (c *CachingSnapshotRepository) fundPrefix(fund string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(strings.ToUpper(strings.TrimSpace(fund))))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSnapshotRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
