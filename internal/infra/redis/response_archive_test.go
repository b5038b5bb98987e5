package redis

import (
	"context"
	"testing"
	"time"

	"slidecast/internal/domain"
)

func TestArchiveAppendBatchAndListBack(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	archive := NewResponseArchive(client)

	at := time.Now().UTC().Truncate(time.Second)
	batch := []domain.Response{
		{GameID: "g1", SlideID: "t1", PlayerID: "p1", Thought: "first", SubmittedAt: at},
		{GameID: "g1", SlideID: "t1", PlayerID: "p1", Thought: "second", SubmittedAt: at},
	}
	if err := archive.AppendBatch(ctx, batch); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := archive.AppendBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch must be a no-op: %v", err)
	}

	got, err := archive.ListResponses(ctx, "g1", "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Thought != "first" || got[1].Thought != "second" {
		t.Fatalf("records must come back oldest first: %+v", got)
	}
	if got[0].PlayerID != "p1" || !got[0].SubmittedAt.Equal(at) {
		t.Fatalf("fields lost in round trip: %+v", got[0])
	}

	if other, _ := archive.ListResponses(ctx, "g1", "q9"); len(other) != 0 {
		t.Fatalf("slides must not share lists: %+v", other)
	}
}

func TestArchiveSkipsUnparseableEntries(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	archive := NewResponseArchive(client)

	if err := archive.AppendBatch(ctx, []domain.Response{
		{GameID: "g1", SlideID: "q1", PlayerID: "p1"},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := client.RPush(ctx, "game:g1:slide:q1:responses", "{broken").Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := archive.ListResponses(ctx, "g1", "q1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].PlayerID != "p1" {
		t.Fatalf("expected the bad entry skipped: %+v", got)
	}
}

func TestArchiveIncrScoreAccumulates(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	archive := NewResponseArchive(client)

	if total, err := archive.IncrScore(ctx, "g1", "p1", 700); err != nil || total != 700 {
		t.Fatalf("first incr: %d, %v", total, err)
	}
	if total, err := archive.IncrScore(ctx, "g1", "p1", 550); err != nil || total != 1250 {
		t.Fatalf("second incr: %d, %v", total, err)
	}
	if total, err := archive.IncrScore(ctx, "g1", "p2", 100); err != nil || total != 100 {
		t.Fatalf("players must not share totals: %d, %v", total, err)
	}

	raw, err := client.HGet(ctx, "game:g1:scores", "p1").Result()
	if err != nil || raw != "1250" {
		t.Fatalf("expected hash total 1250, got %q (%v)", raw, err)
	}
}
