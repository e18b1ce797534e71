// Package storage keeps the latest compiled shape graph of each source in a
// NATS KV bucket.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semshape/graph"
)

// BucketShapes is the default bucket name.
const BucketShapes = "SEMSHAPE_SHAPES"

// KeyValue is the subset of jetstream.KeyValue used by Store.
type KeyValue interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// Store provides shape graph storage backed by NATS KV.
type Store struct {
	kv KeyValue
}

// NewStore wraps an existing bucket.
func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv}
}

// Open opens the named bucket, creating it if it doesn't exist.
func Open(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = BucketShapes
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open shapes bucket: %w", err)
	}
	return NewStore(kv), nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semshape %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

// SourceKey returns the KV key of a source locator. Locators contain
// characters KV keys do not allow, so the key is a digest.
func SourceKey(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return "src." + hex.EncodeToString(sum[:12])
}

// Put stores msg as the latest shape graph of its source and returns the
// new revision.
func (s *Store) Put(ctx context.Context, msg *graph.ShapeGraphMessage) (uint64, error) {
	if err := msg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid shape graph message: %w", err)
	}
	data, err := msg.Marshal()
	if err != nil {
		return 0, fmt.Errorf("marshal shape graph: %w", err)
	}

	rev, err := s.kv.Put(ctx, SourceKey(msg.Source), data)
	if err != nil {
		return 0, fmt.Errorf("store shape graph: %w", err)
	}
	return rev, nil
}

// Latest returns the latest shape graph stored for a source locator.
func (s *Store) Latest(ctx context.Context, locator string) (*graph.ShapeGraphMessage, error) {
	entry, err := s.kv.Get(ctx, SourceKey(locator))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get shape graph: %w", err)
	}

	var msg graph.ShapeGraphMessage
	if err := json.Unmarshal(entry.Value(), &msg); err != nil {
		return nil, fmt.Errorf("unmarshal shape graph: %w", err)
	}
	return &msg, nil
}

// List returns the latest shape graph of every source, ordered by source.
func (s *Store) List(ctx context.Context) ([]*graph.ShapeGraphMessage, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list shape graph keys: %w", err)
	}

	graphs := make([]*graph.ShapeGraphMessage, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var msg graph.ShapeGraphMessage
		if err := json.Unmarshal(entry.Value(), &msg); err != nil {
			continue
		}
		graphs = append(graphs, &msg)
	}

	sort.Slice(graphs, func(i, j int) bool {
		return graphs[i].Source < graphs[j].Source
	})
	return graphs, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
