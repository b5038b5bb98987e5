package domain

import (
	"sort"
	"time"
)

// Aggregates are pure functions of the full response set. They are
// recomputed from scratch on every change batch rather than patched
// incrementally, so the published value can never drift from the source
// records regardless of arrival order.

// OptionCount is one row of a choice distribution.
type OptionCount struct {
	Index   int     `json:"index"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ChoiceDistribution summarizes votes on a quiz or poll slide.
type ChoiceDistribution struct {
	Respondents int           `json:"respondents"`
	TotalVotes  int           `json:"totalVotes"`
	Options     []OptionCount `json:"options"`
	// TopIndex is the arg-max option, first-occurring index on ties,
	// -1 with no votes.
	TopIndex int `json:"topIndex"`
}

// DistributeChoices tallies responses over optionCount options. For
// multi-choice slides percentages are of total votes, since one
// respondent contributes several; single-choice percentages are of
// respondents. Malformed records contribute nothing.
func DistributeChoices(optionCount int, multi bool, responses []Response) ChoiceDistribution {
	dist := ChoiceDistribution{
		Options:  make([]OptionCount, optionCount),
		TopIndex: -1,
	}
	for i := range dist.Options {
		dist.Options[i].Index = i
	}

	for _, r := range responses {
		var picked []int
		if multi {
			picked = r.Indices
		} else if r.AnswerIndex != nil {
			picked = []int{*r.AnswerIndex}
		}
		counted := false
		for _, idx := range picked {
			if idx < 0 || idx >= optionCount {
				continue
			}
			dist.Options[idx].Count++
			dist.TotalVotes++
			counted = true
		}
		if counted {
			dist.Respondents++
		}
	}

	denom := dist.Respondents
	if multi {
		denom = dist.TotalVotes
	}
	best := 0
	for i := range dist.Options {
		if denom > 0 {
			dist.Options[i].Percent = float64(dist.Options[i].Count) * 100 / float64(denom)
		}
		if dist.Options[i].Count > best {
			best = dist.Options[i].Count
			dist.TopIndex = i
		}
	}
	return dist
}

// RatingAggregate summarizes numeric ratings for one input slide.
// Histogram[i] counts ratings equal to Min+i.
type RatingAggregate struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Histogram []int   `json:"histogram"`
}

// AggregateRatings computes count, mean and per-value histogram. Mean is
// 0 with no responses; out-of-range records are dropped.
func AggregateRatings(metric RatingMetric, responses []Response) RatingAggregate {
	agg := RatingAggregate{Min: metric.Min, Max: metric.Max}
	if metric.Max >= metric.Min {
		agg.Histogram = make([]int, metric.Max-metric.Min+1)
	}
	sum := 0
	for _, r := range responses {
		if r.Rating == nil || *r.Rating < metric.Min || *r.Rating > metric.Max {
			continue
		}
		agg.Histogram[*r.Rating-metric.Min]++
		agg.Count++
		sum += *r.Rating
	}
	if agg.Count > 0 {
		agg.Mean = float64(sum) / float64(agg.Count)
	}
	return agg
}

// RankedItem is one entry of a cross-item rating comparison.
type RankedItem struct {
	SlideID   string          `json:"slideId"`
	Title     string          `json:"title"`
	Aggregate RatingAggregate `json:"aggregate"`
	Rank      int             `json:"rank"`
}

// RankItems sorts items by mean descending and assigns 1-based ranks.
// The sort is stable, so ties keep their insertion order and reruns over
// the same input always produce identical ranks.
func RankItems(items []RankedItem) []RankedItem {
	ranked := make([]RankedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Aggregate.Mean > ranked[j].Aggregate.Mean
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PlayerScore feeds leaderboard computation.
type PlayerScore struct {
	PlayerID    string
	DisplayName string
	Score       int
	JoinedAt    time.Time
}

// LeaderboardEntry is a snapshot-friendly view of a ranked player.
type LeaderboardEntry struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

// Leaderboard captures the ordered scoreboard for a game session.
// Entries may be capped for display, but Total always reflects the full
// player count so "you are #K of N" stays answerable.
type Leaderboard struct {
	GameID    string             `json:"gameId"`
	Entries   []LeaderboardEntry `json:"entries"`
	Total     int                `json:"total"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// BuildLeaderboard ranks players by score descending. The secondary key
// is earliest join time, then player id, keeping the comparator fully
// deterministic. maxEntries <= 0 means no cap.
func BuildLeaderboard(gameID string, players []PlayerScore, maxEntries int, now time.Time) Leaderboard {
	sorted := make([]PlayerScore, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].JoinedAt.Equal(sorted[j].JoinedAt) {
			return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	lb := Leaderboard{GameID: gameID, Total: len(sorted), UpdatedAt: now}
	for i, p := range sorted {
		if maxEntries > 0 && i >= maxEntries {
			break
		}
		lb.Entries = append(lb.Entries, LeaderboardEntry{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Rank:        i + 1,
		})
	}
	return lb
}

// PlayerRank returns a player's 1-based rank over the full player set,
// even when the player falls outside the displayed cutoff. Uses the same
// ordering as BuildLeaderboard.
func PlayerRank(players []PlayerScore, playerID string) (rank, total int, ok bool) {
	lb := BuildLeaderboard("", players, 0, time.Time{})
	for _, e := range lb.Entries {
		if e.PlayerID == playerID {
			return e.Rank, lb.Total, true
		}
	}
	return 0, lb.Total, false
}
