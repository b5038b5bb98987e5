package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"slidecast/internal/domain"
)

// ResponseArchive persists accepted responses and cumulative scores.
// Layout:
//
//	RPUSH   game:{gameID}:slide:{slideID}:responses {json}
//	HINCRBY game:{gameID}:scores {playerID} {delta}
//
// The batch append runs in a transaction pipeline so a thoughts batch is
// all-or-nothing; HINCRBY gives the true atomic score increment required
// under concurrent submissions.
type ResponseArchive struct {
	client *redis.Client
}

func NewResponseArchive(client *redis.Client) *ResponseArchive {
	return &ResponseArchive{client: client}
}

func (a *ResponseArchive) AppendBatch(ctx context.Context, responses []domain.Response) error {
	if len(responses) == 0 {
		return nil
	}
	pipe := a.client.TxPipeline()
	for _, r := range responses {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		pipe.RPush(ctx, a.responsesKey(r.GameID, r.SlideID), raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append responses: %w", err)
	}
	return nil
}

func (a *ResponseArchive) IncrScore(ctx context.Context, gameID, playerID string, delta int) (int, error) {
	total, err := a.client.HIncrBy(ctx, a.scoresKey(gameID), playerID, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr score: %w", err)
	}
	return int(total), nil
}

// ListResponses reads back the archived records for one slide, oldest
// first. Unparseable entries are skipped rather than failing the read.
func (a *ResponseArchive) ListResponses(ctx context.Context, gameID, slideID string) ([]domain.Response, error) {
	raws, err := a.client.LRange(ctx, a.responsesKey(gameID, slideID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	out := make([]domain.Response, 0, len(raws))
	for _, raw := range raws {
		var r domain.Response
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (a *ResponseArchive) responsesKey(gameID, slideID string) string {
	return "game:" + gameID + ":slide:" + slideID + ":responses"
}

func (a *ResponseArchive) scoresKey(gameID string) string {
	return "game:" + gameID + ":scores"
}
