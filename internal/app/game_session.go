package app

import (
	"sync"
	"time"

	"slidecast/internal/domain"
)

// GameSession is the in-memory live state for one running presentation:
// joined players, the append-only response log, the host's position in
// the slide sequence, and per-slide activation times. Slide definitions
// are read from the presentation and never mutated once the session
// starts.
type GameSession struct {
	id           string
	joinCode     string
	presentation domain.Presentation
	pacing       PacingPolicy
	lbSize       int
	now          func() time.Time

	mu           sync.RWMutex
	players      map[string]*playerState
	responses    []domain.Response
	answered     map[string]map[string]bool // slideID -> playerID, non-thoughts slides
	thoughtsSent map[string]map[string]int  // slideID -> playerID -> thoughts accepted
	activatedAt  map[string]time.Time       // slideID -> latest activation
	topics       map[string]topicState      // thoughts-results slideID -> extraction state
	currentIndex int
	ended        bool
	subscribers  map[chan Snapshot]struct{}
}

type playerState struct {
	id       string
	name     string
	score    int
	joinedAt time.Time
}

type topicState struct {
	requestID string
	processed bool
	groups    []domain.TopicGroup
}

// Snapshot is the full derived view published to host and player
// clients. It is recomputed from the complete session state on every
// change; nothing in it is patched incrementally.
type Snapshot struct {
	GameID         string               `json:"gameId"`
	JoinCode       string               `json:"joinCode"`
	CurrentIndex   int                  `json:"currentIndex"`
	Ended          bool                 `json:"ended"`
	Slide          *domain.Slide        `json:"slide,omitempty"`
	Aggregate      *SlideAggregate      `json:"aggregate,omitempty"`
	Leaderboard    domain.Leaderboard   `json:"leaderboard"`
	RespondedCount int                  `json:"respondedCount"`
	TotalPlayers   int                  `json:"totalPlayers"`
	AdvanceAllowed bool                 `json:"advanceAllowed"`
	LinkWarnings   []domain.LinkWarning `json:"linkWarnings,omitempty"`
}

// NewGameSession starts a session at slide 0. Pacing defaults come from
// the service config; presentation settings override them.
func NewGameSession(id, joinCode string, p domain.Presentation, pacing PacingPolicy, lbSize int) *GameSession {
	return newGameSessionWithClock(id, joinCode, p, pacing, lbSize, time.Now)
}

func newGameSessionWithClock(id, joinCode string, p domain.Presentation, pacing PacingPolicy, lbSize int, now func() time.Time) *GameSession {
	g := &GameSession{
		id:           id,
		joinCode:     joinCode,
		presentation: p,
		pacing:       pacing,
		lbSize:       lbSize,
		now:          now,
		players:      make(map[string]*playerState),
		answered:     make(map[string]map[string]bool),
		thoughtsSent: make(map[string]map[string]int),
		activatedAt:  make(map[string]time.Time),
		topics:       make(map[string]topicState),
		subscribers:  make(map[chan Snapshot]struct{}),
	}
	g.activateCurrentLocked()
	return g
}

// ID returns the game id.
func (g *GameSession) ID() string { return g.id }

// JoinCode returns the short code players enter to join.
func (g *GameSession) JoinCode() string { return g.joinCode }

// IsEmpty reports whether the session has no players.
func (g *GameSession) IsEmpty() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players) == 0
}

func (g *GameSession) join(playerID, name string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[playerID]; ok {
		p.name = name
	} else {
		g.players[playerID] = &playerState{id: playerID, name: name, joinedAt: g.now()}
	}
	return g.broadcastLocked()
}

func (g *GameSession) leave(playerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, playerID)
	return g.broadcastLocked()
}

// advance moves the host forward one slide, or into the ended state past
// the last slide. The pacing gate only applies in the forward direction.
func (g *GameSession) advance() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return g.snapshotLocked(), domain.ErrGameEnded
	}
	if !g.advanceAllowedLocked() {
		return g.snapshotLocked(), domain.ErrPacingBlocked
	}
	if g.currentIndex+1 >= len(g.presentation.Slides) {
		g.ended = true
	} else {
		g.currentIndex++
		g.activateCurrentLocked()
	}
	return g.broadcastLocked(), nil
}

// retreat moves back one slide, never gated. Leaving the ended state by
// retreating re-enters the last slide.
func (g *GameSession) retreat() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		g.ended = false
		g.activateCurrentLocked()
		return g.broadcastLocked(), nil
	}
	if g.currentIndex == 0 {
		return g.snapshotLocked(), nil
	}
	g.currentIndex--
	g.activateCurrentLocked()
	return g.broadcastLocked(), nil
}

// activateCurrentLocked stamps the server-side activation time for the
// current slide if it is interactive. Re-entering a slide refreshes the
// stamp, reopening the submission window; previously accepted responses
// are retained.
func (g *GameSession) activateCurrentLocked() {
	if g.currentIndex < 0 || g.currentIndex >= len(g.presentation.Slides) {
		return
	}
	slide := g.presentation.Slides[g.currentIndex]
	if domain.MustResolve(slide.Type).Interactive {
		g.activatedAt[slide.ID] = g.now()
	}
}

func (g *GameSession) snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

func (g *GameSession) currentSlide() *domain.Slide {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentSlideLocked()
}

func (g *GameSession) currentSlideLocked() *domain.Slide {
	if g.ended || g.currentIndex < 0 || g.currentIndex >= len(g.presentation.Slides) {
		return nil
	}
	return &g.presentation.Slides[g.currentIndex]
}

// respondersLocked counts distinct players with an accepted response to
// the slide.
func (g *GameSession) respondersLocked(slideID string) int {
	if m := g.answered[slideID]; len(m) > 0 {
		return len(m)
	}
	return len(g.thoughtsSent[slideID])
}

func (g *GameSession) advanceAllowedLocked() bool {
	slide := g.currentSlideLocked()
	if slide == nil {
		return true
	}
	if !domain.MustResolve(slide.Type).Interactive {
		return true
	}
	return g.pacing.allows(g.respondersLocked(slide.ID), len(g.players))
}

func (g *GameSession) subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	initial := g.snapshotLocked()
	g.mu.Unlock()

	ch <- initial

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *GameSession) broadcastLocked() Snapshot {
	snap := g.snapshotLocked()
	for ch := range g.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow client never blocks
			// the broadcast; only the latest state matters.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (g *GameSession) snapshotLocked() Snapshot {
	snap := Snapshot{
		GameID:         g.id,
		JoinCode:       g.joinCode,
		CurrentIndex:   g.currentIndex,
		Ended:          g.ended,
		Leaderboard:    g.leaderboardLocked(g.lbSize),
		TotalPlayers:   len(g.players),
		AdvanceAllowed: g.advanceAllowedLocked(),
		LinkWarnings:   domain.CheckLinks(&g.presentation),
	}
	if slide := g.currentSlideLocked(); slide != nil {
		s := *slide
		snap.Slide = &s
		snap.RespondedCount = g.respondersLocked(slide.ID)
		snap.Aggregate = g.aggregateLocked(*slide)
	}
	return snap
}

func (g *GameSession) leaderboardLocked(maxEntries int) domain.Leaderboard {
	scores := make([]domain.PlayerScore, 0, len(g.players))
	for _, p := range g.players {
		scores = append(scores, domain.PlayerScore{
			PlayerID:    p.id,
			DisplayName: p.name,
			Score:       p.score,
			JoinedAt:    p.joinedAt,
		})
	}
	return domain.BuildLeaderboard(g.id, scores, maxEntries, g.now())
}

// PlayerRank reports a player's rank over the full player set, beyond
// any display cutoff.
func (g *GameSession) PlayerRank(playerID string) (rank, total int, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	scores := make([]domain.PlayerScore, 0, len(g.players))
	for _, p := range g.players {
		scores = append(scores, domain.PlayerScore{PlayerID: p.id, Score: p.score, JoinedAt: p.joinedAt})
	}
	return domain.PlayerRank(scores, playerID)
}

func (g *GameSession) responsesForLocked(slideIDs ...string) []domain.Response {
	want := make(map[string]struct{}, len(slideIDs))
	for _, id := range slideIDs {
		want[id] = struct{}{}
	}
	var out []domain.Response
	for _, r := range g.responses {
		if _, ok := want[r.SlideID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (g *GameSession) setTopics(slideID string, groups []domain.TopicGroup) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.topics[slideID]
	st.processed = true
	st.groups = groups
	g.topics[slideID] = st
	return g.broadcastLocked()
}

func (g *GameSession) markTopicsPending(slideID, requestID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	// Reprocessing resets the processed flag until new groups arrive.
	g.topics[slideID] = topicState{requestID: requestID}
	g.broadcastLocked()
}
