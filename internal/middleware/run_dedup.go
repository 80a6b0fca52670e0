package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunDeduper suppresses rapid duplicate manual-run triggers for the same
// job, typically a double-submitted admin form.
type RunDeduper interface {
	Seen(ctx context.Context, jobID string) (bool, error)
}

type redisRunDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisRunDeduper) Seen(ctx context.Context, jobID string) (bool, error) {
	key := d.prefix + ":" + jobID
	ok, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => key already set => duplicate trigger
	return !ok, nil
}

type memoryRunDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryRunDeduper(ttl time.Duration) *memoryRunDeduper {
	now := time.Now()
	return &memoryRunDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryRunDeduper) Seen(_ context.Context, jobID string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[jobID]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[jobID] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for id, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, id)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewRunDeduper builds a Redis deduper and falls back to in-memory on
// failure or when no address is configured.
func NewRunDeduper(addr, pass string, db int, ttl time.Duration) (RunDeduper, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if addr == "" {
		return newMemoryRunDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryRunDeduper(ttl), err
	}

	return &redisRunDeduper{
		client: client,
		prefix: "job:run",
		ttl:    ttl,
	}, nil
}
