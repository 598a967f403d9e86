// apps/go-server/internal/store/memory.go
//
// In-memory registry of live rooms.
// Rooms are ephemeral by nature: a room lives while its session loop runs
// and is dropped when the loop exits.
//
// Characteristics:
//   - Stores *session.Session values keyed by room ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing room IDs.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/docombos/docombos/apps/go-server/internal/session"
)

var ErrNotFound = errors.New("store: room not found")

// Store defines the registry interface for live rooms.
type Store interface {
	// Save registers or replaces a room.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a room by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete drops a room. Deleting a missing room is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every room, oldest first.
	List(ctx context.Context) ([]*session.Session, error)
}

type memory struct {
	mu    sync.RWMutex
	rooms map[string]*session.Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rooms: make(map[string]*session.Session)}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[s.ID()] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.rooms[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

func (m *memory) List(ctx context.Context) ([]*session.Session, error) {
	m.mu.RLock()
	out := make([]*session.Session, 0, len(m.rooms))
	for _, s := range m.rooms {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Info(), out[j].Info()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}
