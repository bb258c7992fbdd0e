package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

const (
	keyPrefix     = "stock:"
	channelPrefix = "prices."
	scanBatch     = 200
)

// Compile-time check to ensure RedisStore implements SnapshotMirror
var _ SnapshotMirror = (*RedisStore)(nil)

type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration // 0 = no expiry
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Save writes every quote and publishes it on prices.<SYM> in one pipeline.
func (r *RedisStore) Save(ctx context.Context, quotes []models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, q := range quotes {
		payload, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal quote %s: %w", q.Symbol, err)
		}
		pipe.Set(ctx, keyPrefix+q.Symbol, payload, r.ttl)
		pipe.Publish(ctx, channelPrefix+q.Symbol, payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("snapshot pipeline: %w", err)
	}
	return nil
}

// GetSnapshots fetches the stored quote for each symbol (MGET). Missing keys
// and undecodable values are skipped.
func (r *RedisStore) GetSnapshots(ctx context.Context, symbols []string) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = keyPrefix + sym
	}

	results, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget snapshots: %w", err)
	}

	var out []models.Quote
	for _, val := range results {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		var q models.Quote
		if err := json.Unmarshal([]byte(payload), &q); err != nil || q.Symbol == "" {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// LoadAll scans every stock:* key and returns the decoded quotes.
func (r *RedisStore) LoadAll(ctx context.Context) ([]models.Quote, error) {
	var symbols []string
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		symbols = append(symbols, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return r.GetSnapshots(ctx, symbols)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
