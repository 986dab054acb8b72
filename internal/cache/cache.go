package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"spimex/internal/timeutils"
)

// Store adapts a Redis database to the cache-until-cutoff contract.
// Values are stored as JSON and expire at the next daily cutoff.
// There is no retry logic here: a connectivity error fails the
// caller's request.
type Store struct {
	rdb    *redis.Client
	tzName string
	hour   int
	minute int
}

// NewStore validates the zone up front so a misconfigured CACHE_TZ is
// a startup failure instead of a per-request one.
func NewStore(rdb *redis.Client, tzName string, hour, minute int) (*Store, error) {
	if _, err := time.LoadLocation(tzName); err != nil {
		return nil, fmt.Errorf("cache: unknown time zone %q: %w", tzName, err)
	}
	return &Store{rdb: rdb, tzName: tzName, hour: hour, minute: minute}, nil
}

// Get fetches and decodes the value at key into dest. A missing key is
// a miss (false, nil), not an error.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetUntilCutoff stores value with a TTL reaching the next cutoff,
// computed at call time.
func (s *Store) SetUntilCutoff(ctx context.Context, key string, value any) error {
	ttl, err := timeutils.SecondsUntilNextCutoff(time.Now().UTC(), s.tzName, s.hour, s.minute)
	if err != nil {
		return err
	}
	if ttl < 1 {
		// Whole-second truncation can hit 0 in the last sub-second
		// before the cutoff; 0 would mean "no expiry" to Redis.
		ttl = 1
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, payload, time.Duration(ttl)*time.Second).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// FlushAll clears the whole active Redis database, not just this
// service's keys. The deployment must point the cache at a database
// index dedicated to this service. Invoked once a day at the cutoff.
func (s *Store) FlushAll(ctx context.Context) error {
	if err := s.rdb.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
