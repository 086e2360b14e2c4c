// Package memstore is an in-memory Store for tests and small runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/esglens/materia/pkg/materia/internalerr"
	"github.com/esglens/materia/pkg/materia/store"
)

type memStore struct {
	mu   sync.RWMutex
	runs map[string]store.Run
}

// New creates an empty in-memory store.
func New() store.Store {
	return &memStore{runs: make(map[string]store.Run)}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) SaveRun(_ context.Context, r store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.ID] = r
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (store.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	return r, nil
}

func (m *memStore) ListRuns(_ context.Context, company string, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.RunSummary
	for _, r := range m.runs {
		if company != "" && r.Company != company {
			continue
		}
		out = append(out, store.RunSummary{
			ID:               r.ID,
			Company:          r.Company,
			GeneratedAt:      r.GeneratedAt,
			OverallDirection: r.OverallDirection,
			UpdateNecessity:  r.UpdateNecessity,
			Recommendations:  len(r.Recommendations),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Recommendations(_ context.Context, runID string) ([]store.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
	}
	recs := make([]store.Recommendation, len(r.Recommendations))
	copy(recs, r.Recommendations)
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		return recs[i].Subject < recs[j].Subject
	})
	return recs, nil
}
