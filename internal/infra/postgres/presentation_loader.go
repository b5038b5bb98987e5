package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"slidecast/internal/domain"
)

// PresentationLoader loads presentation JSONB from Postgres.
type PresentationLoader struct {
	pool *pgxpool.Pool
}

func NewPresentationLoader(pool *pgxpool.Pool) *PresentationLoader {
	return &PresentationLoader{pool: pool}
}

func (l *PresentationLoader) LoadPresentation(ctx context.Context, id string) (domain.Presentation, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM presentations WHERE id=$1`, id).Scan(&raw)
	if err != nil {
		return domain.Presentation{}, fmt.Errorf("load presentation: %w", err)
	}
	var p domain.Presentation
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Presentation{}, fmt.Errorf("unmarshal presentation: %w", err)
	}
	return p, nil
}
