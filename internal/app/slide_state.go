package app

import (
	"time"

	"slidecast/internal/domain"
)

// SlideRunState is one participant's position in the per-slide lifecycle.
// It is derived from session data, never stored: the response log and the
// activation stamp uniquely determine the state, so a reconnecting client
// lands in the right place immediately.
type SlideRunState string

const (
	// SlidePending: the slide has not been opened by the host.
	SlidePending SlideRunState = "pending"
	// SlideActive: the submission window is open.
	SlideActive SlideRunState = "active"
	// SlideAnswered: terminal, no further submissions are accepted. For
	// thoughts slides this means the per-player cap is spent.
	SlideAnswered SlideRunState = "answered"
	// SlideTimedOut: terminal, the window closed with no submission.
	SlideTimedOut SlideRunState = "timedOut"
)

// SlideStatus is the wire view of a participant's slide state, including
// the server-computed remaining time that drives the advisory countdown.
type SlideStatus struct {
	SlideID          string        `json:"slideId"`
	State            SlideRunState `json:"state"`
	RemainingSeconds int           `json:"remainingSeconds"`
}

// slideStateLocked derives the run state for (slide, player) at time now.
// An already-accepted response wins over any timer consideration: a
// client must jump straight to answered regardless of its local
// countdown.
func (g *GameSession) slideStateLocked(slide domain.Slide, playerID string, now time.Time) (SlideRunState, time.Duration) {
	if slide.Type == domain.SlideThoughtsCollect {
		// Thoughts slides accept repeated batches, so answered means the
		// per-player cap is spent, not that one submission exists.
		if c := slide.ThoughtsCollect; c != nil && c.MaxPerPlayer > 0 && g.thoughtsSent[slide.ID][playerID] >= c.MaxPerPlayer {
			return SlideAnswered, 0
		}
	} else if g.answered[slide.ID][playerID] {
		return SlideAnswered, 0
	}
	activated, ok := g.activatedAt[slide.ID]
	if !ok {
		return SlidePending, 0
	}
	limit := time.Duration(slide.TimeLimit()) * time.Second
	if limit <= 0 {
		return SlideActive, 0
	}
	remaining := activated.Add(limit).Sub(now)
	if remaining <= 0 {
		return SlideTimedOut, 0
	}
	return SlideActive, remaining
}

// SlideStatus reports a participant's state for one slide.
func (g *GameSession) SlideStatus(slideID, playerID string) (SlideStatus, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	slide, ok := g.presentation.SlideByID(slideID)
	if !ok {
		return SlideStatus{}, domain.ErrSlideNotFound
	}
	state, remaining := g.slideStateLocked(*slide, playerID, g.now())
	return SlideStatus{
		SlideID:          slideID,
		State:            state,
		RemainingSeconds: int(remaining / time.Second),
	}, nil
}
