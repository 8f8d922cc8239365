package persistence

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps the snapshot in process memory. Used for development
// and tests; state is lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved snapshot, or an empty one.
func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return &Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(m.data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save serializes the snapshot. Going through JSON keeps the memory store
// honest about what the durable backends can represent.
func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
