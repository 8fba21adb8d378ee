// Package cache keeps generated reports in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/simonvc/finreports/internal/report"
)

const keyPrefix = "finreports:"

// ReportCache implements report.Cache on Redis. Keys expire after ttl so
// reports for superseded ledger states do not pile up.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(addr, password string, ttl time.Duration) *ReportCache {
	return &ReportCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

func (c *ReportCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ReportCache) Get(ctx context.Context, key string) (*report.Report, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var r report.Report
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return &r, true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, r *report.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	return c.rdb.Close()
}
