package models

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/jadygoy/cafe_backend/utils"
)

// DateLocker serializes mutations of one report date across processes.
type DateLocker interface {
	Lock(ctx context.Context, date string) (release func(), err error)
}

type RedisDateLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
}

func NewRedisDateLocker(client *redislock.Client) *RedisDateLocker {
	return &RedisDateLocker{
		client:  client,
		ttl:     30 * time.Second,
		backoff: 100 * time.Millisecond,
		retries: 50,
	}
}

func (l *RedisDateLocker) Lock(ctx context.Context, date string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "ReportDate:"+date, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, utils.ErrorResourceBusy
	} else if err != nil {
		return nil, err
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}

type noopDateLocker struct{}

func (noopDateLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
