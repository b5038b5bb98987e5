package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"slidecast/internal/domain"
)

// PresentationLoader fetches presentation documents from a backing store
// (e.g., Postgres JSONB).
type PresentationLoader interface {
	LoadPresentation(ctx context.Context, id string) (domain.Presentation, error)
}

// PresentationRepository caches whole presentation documents in Redis
// (JSON string per id) and falls back to a loader on cache miss.
type PresentationRepository struct {
	client *redis.Client
	loader PresentationLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPresentationRepository(client *redis.Client, loader PresentationLoader, ttl time.Duration) *PresentationRepository {
	return &PresentationRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PresentationRepository) GetPresentation(ctx context.Context, id string) (domain.Presentation, error) {
	key := r.key(id)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var p domain.Presentation
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		// Corrupt cache entry: drop it and reload from the source.
		_ = r.client.Del(ctx, key).Err()
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var p domain.Presentation
			if err := json.Unmarshal(raw, &p); err == nil {
				return p, nil
			}
		}

		p, err := r.loader.LoadPresentation(ctx, id)
		if err != nil {
			return domain.Presentation{}, err
		}

		if raw, err := json.Marshal(p); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return p, nil
	})
	if err != nil {
		return domain.Presentation{}, err
	}
	return result.(domain.Presentation), nil
}

func (r *PresentationRepository) key(id string) string {
	return "presentation:" + id
}

func (r *PresentationRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
