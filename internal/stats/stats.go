// Package stats keeps the documents/queries counters that survive restarts.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Key is the fixed storage key of the stats record.
const Key = "docassist_stats"

// Stats counts uploaded documents and sent queries.
type Stats struct {
	Documents int `json:"documents"`
	Queries   int `json:"queries"`
}

// KV is durable key/value storage.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Store reads and writes the Stats record in a KV.
type Store struct {
	kv KV
}

// NewStore creates a stats store backed by kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the stored record, or zero counters when nothing is stored.
func (s *Store) Load(ctx context.Context) (Stats, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load stats: %w", err)
	}
	if !ok {
		return Stats{}, nil
	}

	var st Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return Stats{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	return st, nil
}

// Save writes the record.
func (s *Store) Save(ctx context.Context, st Stats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	if err := s.kv.Put(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-process KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Put implements KV.
func (m *MemoryKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
