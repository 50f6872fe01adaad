package parody

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKey = "parodypress:parodied_urls"

// SeenFilter tracks source URLs that already produced a parody so repeated
// runs do not re-parody the same story. A nil filter is a no-op; the
// pipeline works the same with it disabled.
type SeenFilter struct {
	client *redis.Client
}

// NewSeenFilter connects to redis and verifies connectivity. Returns nil
// (filter disabled) for an empty address.
func NewSeenFilter(addr string) (*SeenFilter, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &SeenFilter{client: client}, nil
}

// Seen reports whether the URL was already parodied. Lookup errors count as
// unseen so a redis outage never blocks ingestion.
func (f *SeenFilter) Seen(ctx context.Context, url string) bool {
	if f == nil {
		return false
	}
	seen, err := f.client.SIsMember(ctx, seenKey, url).Result()
	if err != nil {
		log.Printf("parody: seen lookup failed for %s: %v", url, err)
		return false
	}
	return seen
}

// Mark records the URL as parodied.
func (f *SeenFilter) Mark(ctx context.Context, url string) {
	if f == nil {
		return
	}
	if err := f.client.SAdd(ctx, seenKey, url).Err(); err != nil {
		log.Printf("parody: seen mark failed for %s: %v", url, err)
	}
}

// Close releases the redis connection.
func (f *SeenFilter) Close() error {
	if f == nil {
		return nil
	}
	return f.client.Close()
}
