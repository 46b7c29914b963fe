package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps turns in process memory. It backs the "memory" history
// backend and serves as a test double for the other packages.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
	ids      map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Turn),
		ids:      make(map[string]struct{}),
	}
}

func (m *MemoryStore) History(ctx context.Context, userID string) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	out := make([]Turn, len(es))
	copy(out, es)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *MemoryStore) Append(ctx context.Context, turns ...Turn) error {
	if err := Validate(turns); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range turns {
		if _, ok := m.ids[t.ID]; ok {
			continue
		}
		m.ids[t.ID] = struct{}{}
		m.sessions[t.UserID] = append(m.sessions[t.UserID], t)
	}
	return nil
}

// Len reports how many turns are stored across all users.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
