package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"slidecast/internal/domain"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
	inner PresentationLoader
}

func (l *countingLoader) LoadPresentation(ctx context.Context, id string) (domain.Presentation, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.inner.LoadPresentation(ctx, id)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func cachedPres() domain.Presentation {
	s := domain.MustResolve(domain.SlideContent).New("c1", 0)
	var p domain.Presentation
	p.ID = "pres-1"
	_ = p.AppendSlides(s)
	return p
}

func TestPresentationCacheHit(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticPresentationLoader(map[string]domain.Presentation{
		"pres-1": cachedPres(),
	})}
	repo := NewPresentationRepository(loader, time.Minute)

	for i := 0; i < 5; i++ {
		p, err := repo.GetPresentation(ctx, "pres-1")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if p.ID != "pres-1" {
			t.Fatalf("unexpected presentation %+v", p)
		}
	}
	if got := loader.count(); got != 1 {
		t.Fatalf("expected a single loader call, got %d", got)
	}
}

func TestPresentationCacheExpiry(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticPresentationLoader(map[string]domain.Presentation{
		"pres-1": cachedPres(),
	})}
	repo := NewPresentationRepository(loader, time.Minute)

	current := time.Now()
	repo.clock = func() time.Time { return current }

	if _, err := repo.GetPresentation(ctx, "pres-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	// jitter only extends the TTL, so two base TTLs past is always stale
	current = current.Add(2 * time.Minute)
	if _, err := repo.GetPresentation(ctx, "pres-1"); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if got := loader.count(); got != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", got)
	}
}

func TestPresentationMissNotCached(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{inner: NewStaticPresentationLoader(nil)}
	repo := NewPresentationRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetPresentation(ctx, "nope"); !errors.Is(err, domain.ErrPresentationNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if got := loader.count(); got != 2 {
		t.Fatalf("misses must not be cached, got %d calls", got)
	}
}
