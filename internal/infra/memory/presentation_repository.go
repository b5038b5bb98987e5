package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"slidecast/internal/domain"
)

// PresentationLoader fetches presentation documents from a backing store
// (e.g., Postgres JSONB).
type PresentationLoader interface {
	LoadPresentation(ctx context.Context, id string) (domain.Presentation, error)
}

// PresentationRepository caches presentations with TTL to avoid repeated
// store hits while games run.
type PresentationRepository struct {
	loader PresentationLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPresentation
}

type cachedPresentation struct {
	presentation domain.Presentation
	expiresAt    time.Time
}

func NewPresentationRepository(loader PresentationLoader, ttl time.Duration) *PresentationRepository {
	return &PresentationRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPresentation),
	}
}

func (r *PresentationRepository) GetPresentation(ctx context.Context, id string) (domain.Presentation, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.presentation, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.presentation, nil
		}
		r.mu.RUnlock()

		p, err := r.loader.LoadPresentation(ctx, id)
		if err != nil {
			return domain.Presentation{}, err
		}

		r.mu.Lock()
		r.cache[id] = cachedPresentation{
			presentation: p,
			expiresAt:    now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return domain.Presentation{}, err
	}
	return result.(domain.Presentation), nil
}

func (r *PresentationRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPresentationLoader serves presentations from an in-memory map
// (useful for tests/demos).
type StaticPresentationLoader struct {
	presentations map[string]domain.Presentation
}

func NewStaticPresentationLoader(presentations map[string]domain.Presentation) *StaticPresentationLoader {
	return &StaticPresentationLoader{presentations: presentations}
}

func (l *StaticPresentationLoader) LoadPresentation(_ context.Context, id string) (domain.Presentation, error) {
	if p, ok := l.presentations[id]; ok {
		return p, nil
	}
	return domain.Presentation{}, domain.ErrPresentationNotFound
}
