package memory

import (
	"context"
	"sync"

	"slidecast/internal/domain"
)

// ResponseArchive keeps accepted responses and score totals in process.
// The batch append is all-or-nothing under the lock, matching the atomic
// batched-write contract the Redis archive provides.
type ResponseArchive struct {
	mu        sync.Mutex
	responses []domain.Response
	scores    map[string]map[string]int // gameID -> playerID -> total
}

func NewResponseArchive() *ResponseArchive {
	return &ResponseArchive{scores: make(map[string]map[string]int)}
}

func (a *ResponseArchive) AppendBatch(_ context.Context, responses []domain.Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = append(a.responses, responses...)
	return nil
}

func (a *ResponseArchive) IncrScore(_ context.Context, gameID, playerID string, delta int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scores[gameID] == nil {
		a.scores[gameID] = make(map[string]int)
	}
	a.scores[gameID][playerID] += delta
	return a.scores[gameID][playerID], nil
}

// Responses returns a copy of the archived records for a game.
func (a *ResponseArchive) Responses(gameID string) []domain.Response {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Response
	for _, r := range a.responses {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out
}
