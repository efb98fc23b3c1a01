// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package snapshot keeps draft copies of an open review in Redis so an
// interrupted session can be recovered before the review file is saved.
// Drafts are CBOR-encoded and expire after a TTL.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/petar-djukic/go-review/pkg/types"
)

// DefaultTTL is how long a draft survives without being refreshed.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "go-review:draft:"

// ErrNotFound is returned when no draft exists for a key.
var ErrNotFound = errors.New("no draft snapshot")

// Snapshot is one draft of a review.
type Snapshot struct {
	Review    string                `cbor:"review"`
	Pages     types.PageAnnotations `cbor:"pages"`
	Notes     types.NoteBook        `cbor:"notes"`
	PageSizes map[int]types.Size    `cbor:"pageSizes,omitempty"`
	SavedAt   time.Time             `cbor:"savedAt"`
}

// Store reads and writes drafts.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	enc    cbor.EncMode
	dec    cbor.DecMode
}

// NewStore connects to the Redis server at redisURL.
func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client, ttl)
}

// NewStoreWithClient creates a store from an existing Redis client.
func NewStoreWithClient(client *redis.Client, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	return &Store{client: client, ttl: ttl, enc: enc, dec: dec}, nil
}

func key(review string) string {
	return keyPrefix + review
}

// Save stores snap under its review key, replacing any earlier draft and
// resetting the TTL.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := s.enc.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key(snap.Review), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the draft for review, or ErrNotFound.
func (s *Store) Load(ctx context.Context, review string) (Snapshot, error) {
	data, err := s.client.Get(ctx, key(review)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := s.dec.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Delete drops the draft for review. Deleting a missing draft is not an
// error.
func (s *Store) Delete(ctx context.Context, review string) error {
	if err := s.client.Del(ctx, key(review)).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
