package store

import (
	"context"
	"sync"

	"github.com/snapdish/backend/internal/model"
)

// MemoryStore is a map-backed Store used in tests and for the "memory"
// backend, where durability is explicitly not wanted.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]model.UserRecord
	scans map[string]model.Scan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]model.UserRecord),
		scans: make(map[string]model.Scan),
	}
}

// LoadUsers returns a copy of all stored user records.
func (m *MemoryStore) LoadUsers(ctx context.Context) (map[string]*model.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*model.UserRecord, len(m.users))
	for id, u := range m.users {
		cp := u
		out[id] = &cp
	}
	return out, nil
}

// LoadScans returns a copy of all stored scans.
func (m *MemoryStore) LoadScans(ctx context.Context) (map[string]*model.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*model.Scan, len(m.scans))
	for id, s := range m.scans {
		cp := s
		out[id] = &cp
	}
	return out, nil
}

// SaveUser stores a snapshot of the given user record.
func (m *MemoryStore) SaveUser(ctx context.Context, user *model.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.DeviceID] = *user
	return nil
}

// SaveScan stores a snapshot of the given scan.
func (m *MemoryStore) SaveScan(ctx context.Context, scan *model.Scan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scans[scan.ID] = *scan
	return nil
}

// DeleteScan removes a scan; deleting an unknown id is not an error.
func (m *MemoryStore) DeleteScan(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.scans, id)
	return nil
}
