package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

/*
caches:
	Report:$date
*/

// ReportCache is a read-through cache of reports by date. Entries are
// evicted after every mutation of that date.
type ReportCache interface {
	Get(ctx context.Context, date string) (*DailyReport, bool, error)
	Set(ctx context.Context, report *DailyReport) error
	Remove(ctx context.Context, date string) error
}

type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func reportCacheKey(date string) string {
	return "Report:" + date
}

func (c *RedisReportCache) Get(ctx context.Context, date string) (*DailyReport, bool, error) {
	val, err := c.client.Get(ctx, reportCacheKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var report DailyReport
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, report *DailyReport) error {
	objInByte, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportCacheKey(report.Date), objInByte, c.ttl).Err()
}

func (c *RedisReportCache) Remove(ctx context.Context, date string) error {
	return c.client.Del(ctx, reportCacheKey(date)).Err()
}

type noopReportCache struct{}

func (noopReportCache) Get(context.Context, string) (*DailyReport, bool, error) {
	return nil, false, nil
}

func (noopReportCache) Set(context.Context, *DailyReport) error { return nil }

func (noopReportCache) Remove(context.Context, string) error { return nil }
