package catalog

import (
	"context"
	"fmt"
	"log/slog"
)

// QueryCache is a read-through cache for query results. Get returns the slot
// a missed result belongs in; Set must write to that slot so a result read
// before an Invalidate is never served after it.
type QueryCache interface {
	Get(ctx context.Context, key string, dst any) (slot string, hit bool, err error)
	Set(ctx context.Context, slot string, v any) error
	Invalidate(ctx context.Context) error
}

// Service answers catalog queries on top of a Store, caching read results
// when a QueryCache is configured.
type Service struct {
	store Store
	cache QueryCache
}

// NewService creates a catalog service. cache may be nil.
func NewService(store Store, cache QueryCache) *Service {
	return &Service{store: store, cache: cache}
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// StudyMaterials returns resources matching f grouped by topic.
func (s *Service) StudyMaterials(ctx context.Context, f Filter) (map[string][]Resource, error) {
	key := f.CacheKey("materials")
	var grouped map[string][]Resource
	slot, hit := s.cacheGet(ctx, key, &grouped)
	if hit {
		return grouped, nil
	}

	resources, err := s.store.ListResources(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	grouped = GroupByTopic(resources)

	s.cacheSet(ctx, slot, grouped)
	return grouped, nil
}

// Weightages returns the topic weightages matching f.
func (s *Service) Weightages(ctx context.Context, f Filter) ([]Weightage, error) {
	key := f.CacheKey("weightages")
	var weightages []Weightage
	slot, hit := s.cacheGet(ctx, key, &weightages)
	if hit {
		return weightages, nil
	}

	weightages, err := s.store.ListWeightages(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list weightages: %w", err)
	}

	s.cacheSet(ctx, slot, weightages)
	return weightages, nil
}

// AggregateResources returns every resource grouped by topic and difficulty.
func (s *Service) AggregateResources(ctx context.Context) (map[string]map[string][]Resource, error) {
	key := Filter{}.CacheKey("aggregate")
	var grouped map[string]map[string][]Resource
	slot, hit := s.cacheGet(ctx, key, &grouped)
	if hit {
		return grouped, nil
	}

	resources, err := s.store.ListResources(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	grouped = GroupByTopicAndDifficulty(resources)

	s.cacheSet(ctx, slot, grouped)
	return grouped, nil
}

// Resource returns the resource with the given id.
func (s *Service) Resource(ctx context.Context, id int64) (Resource, error) {
	return s.store.GetResource(ctx, id)
}

// Resources returns resources matching f without caching.
func (s *Service) Resources(ctx context.Context, f Filter) ([]Resource, error) {
	return s.store.ListResources(ctx, f)
}

// CreateResource validates and stores r.
func (s *Service) CreateResource(ctx context.Context, r Resource) (Resource, error) {
	if err := ValidateResource(r); err != nil {
		return Resource{}, err
	}
	created, err := s.store.CreateResource(ctx, r)
	if err != nil {
		return Resource{}, err
	}
	s.invalidate(ctx)
	slog.Info("resource created", "id", created.ID, "topic", created.Topic, "type", created.Type)
	return created, nil
}

// DeleteResource removes the resource with the given id.
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	if err := s.store.DeleteResource(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	slog.Info("resource deleted", "id", id)
	return nil
}

// CreateWeightage validates and stores w.
func (s *Service) CreateWeightage(ctx context.Context, w Weightage) (Weightage, error) {
	if err := ValidateWeightage(w); err != nil {
		return Weightage{}, err
	}
	created, err := s.store.CreateWeightage(ctx, w)
	if err != nil {
		return Weightage{}, err
	}
	s.invalidate(ctx)
	slog.Info("weightage created", "id", created.ID, "topic", created.Topic)
	return created, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	slot, hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("catalog cache read failed", "key", key, "error", err)
		return "", false
	}
	return slot, hit
}

func (s *Service) cacheSet(ctx context.Context, slot string, v any) {
	if s.cache == nil || slot == "" {
		return
	}
	if err := s.cache.Set(ctx, slot, v); err != nil {
		slog.Warn("catalog cache write failed", "slot", slot, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("catalog cache invalidation failed", "error", err)
	}
}
