package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store persists resources and weightages.
type Store interface {
	ListResources(ctx context.Context, f Filter) ([]Resource, error)
	GetResource(ctx context.Context, id int64) (Resource, error)
	CreateResource(ctx context.Context, r Resource) (Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	CountResources(ctx context.Context) (int, error)

	ListWeightages(ctx context.Context, f Filter) ([]Weightage, error)
	CreateWeightage(ctx context.Context, w Weightage) (Weightage, error)
	CountWeightages(ctx context.Context) (int, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu         sync.RWMutex
	resources  map[int64]Resource
	weightages map[int64]Weightage
	lastRes    int64
	lastWeight int64
}

// NewMemoryStore creates an empty in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources:  make(map[int64]Resource),
		weightages: make(map[int64]Weightage),
	}
}

func (s *MemoryStore) ListResources(_ context.Context, f Filter) ([]Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Resource{}
	for _, r := range s.resources {
		if f.matches(r.Grade, r.Exam, r.Subject, r.Topic) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetResource(_ context.Context, id int64) (Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return Resource{}, fmt.Errorf("resource %d: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) CreateResource(_ context.Context, r Resource) (Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRes++
	r.ID = s.lastRes
	s.resources[r.ID] = r
	return r, nil
}

func (s *MemoryStore) DeleteResource(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; !ok {
		return fmt.Errorf("resource %d: %w", id, ErrNotFound)
	}
	delete(s.resources, id)
	return nil
}

func (s *MemoryStore) CountResources(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources), nil
}

func (s *MemoryStore) ListWeightages(_ context.Context, f Filter) ([]Weightage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Weightage{}
	for _, w := range s.weightages {
		if f.matches(w.Grade, w.Exam, w.Subject, w.Topic) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateWeightage(_ context.Context, w Weightage) (Weightage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastWeight++
	w.ID = s.lastWeight
	s.weightages[w.ID] = w
	return w, nil
}

func (s *MemoryStore) CountWeightages(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weightages), nil
}

func (f Filter) matches(grade, exam, subject, topic string) bool {
	if f.Grade != "" && f.Grade != grade {
		return false
	}
	if f.Exam != "" && !likeFold(f.Exam, exam) {
		return false
	}
	if f.Subject != "" && !likeFold(f.Subject, subject) {
		return false
	}
	if f.Topic != "" && f.Topic != topic {
		return false
	}
	return true
}
