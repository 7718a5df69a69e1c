package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// MemoryStore is an in-process Store, used for "memory" history and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	if e.ReportID == "" {
		return fmt.Errorf("record: report id is required")
	}
	now := time.Now()
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = now
	}
	if e.Status == "" {
		e.Status = model.StatusPending
	}
	e.UpdatedAt = now
	if e.Score != nil {
		v := *e.Score
		e.Score = &v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ReportID] = e
	return nil
}

func (m *MemoryStore) UpdateResult(_ context.Context, reportID string, status model.Status, score *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[reportID]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = status
	e.Score = nil
	if score != nil {
		v := *score
		e.Score = &v
	}
	e.UpdatedAt = time.Now()
	m.entries[reportID] = e
	return nil
}

func (m *MemoryStore) Get(_ context.Context, reportID string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[reportID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &e, nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	return m.filter(func(Entry) bool { return true }, limit), nil
}

func (m *MemoryStore) ListByRepo(_ context.Context, repoURL string, limit int) ([]Entry, error) {
	return m.filter(func(e Entry) bool { return e.RepoURL == repoURL }, limit), nil
}

func (m *MemoryStore) filter(keep func(Entry) bool, limit int) []Entry {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ReportID < out[j].ReportID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *MemoryStore) Delete(_ context.Context, reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[reportID]; !ok {
		return ErrEntryNotFound
	}
	delete(m.entries, reportID)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// NopStore discards writes and never finds anything; it backs the "none"
// history setting.
type NopStore struct{}

func (NopStore) Record(context.Context, Entry) error {
	return nil
}

func (NopStore) UpdateResult(context.Context, string, model.Status, *int) error {
	return nil
}

func (NopStore) Get(context.Context, string) (*Entry, error) {
	return nil, ErrEntryNotFound
}

func (NopStore) List(context.Context, int) ([]Entry, error) {
	return []Entry{}, nil
}

func (NopStore) ListByRepo(context.Context, string, int) ([]Entry, error) {
	return []Entry{}, nil
}

func (NopStore) Delete(context.Context, string) error {
	return ErrEntryNotFound
}

func (NopStore) Close() error { return nil }
