// Package redis implements a record source backed by Redis via rueidis.
// Each dataset's collection is stored as one JSON array under
// <prefix><dataset>; every load re-reads the key, so a wholesale SET of
// the key swaps the collection atomically.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/atricence/voxdata/internal/domain"
	"github.com/atricence/voxdata/internal/domain/record"
)

// Config holds connection parameters for the Redis source.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Source loads dataset collections from Redis string keys.
type Source struct {
	client rueidis.Client
	prefix string
}

// New creates a Redis-backed record source.
func New(cfg Config) (*Source, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Source{client: client, prefix: cfg.KeyPrefix}, nil
}

// Load fetches and decodes the dataset's JSON array.
func (s *Source) Load(ctx context.Context, dataset string) ([]record.Record, error) {
	key := s.prefix + dataset

	cmd := s.client.B().Get().Key(key).Build()
	raw, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, fmt.Errorf("%w: key %s is empty", domain.ErrSourceUnavailable, key)
		}
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrSourceUnavailable, key, err)
	}

	var records []record.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrSourceUnavailable, key, err)
	}
	return records, nil
}

// Ping checks connectivity.
func (s *Source) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Source) Close() {
	s.client.Close()
}
