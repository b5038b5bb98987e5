package app

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"slidecast/internal/domain"
)

// SessionRepository abstracts how live game sessions are tracked
// (in-memory, Redis-backed, etc).
type SessionRepository interface {
	GetOrCreate(gameID string, build func() *GameSession) *GameSession
	Get(gameID string) (*GameSession, bool)
	DeleteIfEmpty(gameID string)
}

// PresentationRepository loads presentation documents (from cache or the
// backing store).
type PresentationRepository interface {
	GetPresentation(ctx context.Context, id string) (domain.Presentation, error)
}

// ResponseArchive persists accepted responses and score totals outside
// the live session. AppendBatch is all-or-nothing; IncrScore must be a
// true atomic increment, never read-modify-write.
type ResponseArchive interface {
	AppendBatch(ctx context.Context, responses []domain.Response) error
	IncrScore(ctx context.Context, gameID, playerID string, delta int) (int, error)
}

// TopicExtractor is the asynchronous content-generation collaborator
// that groups free-text thoughts into topics.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, requestID string, thoughts []string) ([]domain.TopicGroup, error)
}

// Config carries game-level defaults; presentation settings override
// pacing per presentation.
type Config struct {
	DefaultPacingMode      domain.PacingMode
	DefaultPacingThreshold int
	LeaderboardSize        int
}

// GameService contains the live-game use cases: running presentations,
// player membership, submissions, and host sequencing.
type GameService struct {
	sessions      SessionRepository
	presentations PresentationRepository
	archive       ResponseArchive
	topics        TopicExtractor
	cfg           Config
}

func NewGameService(sessions SessionRepository, presentations PresentationRepository, cfg Config) *GameService {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	return &GameService{sessions: sessions, presentations: presentations, cfg: cfg}
}

// WithArchive attaches durable response persistence.
func (s *GameService) WithArchive(archive ResponseArchive) *GameService {
	s.archive = archive
	return s
}

// WithTopicExtractor attaches the topic-extraction collaborator.
func (s *GameService) WithTopicExtractor(t TopicExtractor) *GameService {
	s.topics = t
	return s
}

// CreateGame starts a live session for a presentation and returns its id
// and short join code.
func (s *GameService) CreateGame(ctx context.Context, presentationID string) (*GameSession, error) {
	p, err := s.presentations.GetPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	gameID := uuid.NewString()
	joinCode := strings.ToUpper(strings.ReplaceAll(gameID, "-", "")[:6])
	pacing := resolvePacing(p.Settings, s.cfg.DefaultPacingMode, s.cfg.DefaultPacingThreshold)
	session := s.sessions.GetOrCreate(gameID, func() *GameSession {
		return NewGameSession(gameID, joinCode, p, pacing, s.cfg.LeaderboardSize)
	})
	return session, nil
}

// Join registers or refreshes a player in a game session.
func (s *GameService) Join(_ context.Context, gameID, playerID, displayName string) (Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return session.join(playerID, displayName), nil
}

// Leave removes a player and drops the session once empty.
func (s *GameService) Leave(_ context.Context, gameID, playerID string) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return
	}
	session.leave(playerID)
	if session.IsEmpty() {
		s.sessions.DeleteIfEmpty(gameID)
	}
}

// Submit validates and records a player's answer to a slide. Validation
// failures and precondition rejections come back as typed errors; on
// acceptance, durable persistence is best-effort and never retried, so a
// response can never be counted twice.
func (s *GameService) Submit(ctx context.Context, gameID, playerID, slideID string, sub domain.Submission) (SubmitResult, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return SubmitResult{}, domain.ErrGameNotFound
	}
	slide, ok := session.presentation.SlideByID(slideID)
	if !ok {
		return SubmitResult{}, domain.ErrSlideNotFound
	}
	if !domain.MustResolve(slide.Type).Interactive {
		return SubmitResult{}, domain.ErrSlideNotInteractive
	}
	if err := domain.ValidateSubmission(*slide, sub); err != nil {
		return SubmitResult{}, err
	}

	responses, result, err := session.accept(playerID, *slide, sub)
	if err != nil {
		return SubmitResult{}, err
	}

	if s.archive != nil {
		if err := s.archive.AppendBatch(ctx, responses); err != nil {
			// The response is already counted in the session; dropping
			// the archive write loses durability, not correctness.
			log.Printf("archive append failed for game %s slide %s: %v", gameID, slideID, err)
		} else if result.Awarded != 0 {
			if _, err := s.archive.IncrScore(ctx, gameID, playerID, result.Awarded); err != nil {
				log.Printf("archive score incr failed for game %s player %s: %v", gameID, playerID, err)
			}
		}
	}
	return result, nil
}

// Subscribe returns a channel of session snapshots. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan Snapshot, func(), error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrGameNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Advance moves the host forward one slide, subject to the pacing gate.
func (s *GameService) Advance(_ context.Context, gameID string) (Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return session.advance()
}

// Retreat moves the host back one slide, never gated.
func (s *GameService) Retreat(_ context.Context, gameID string) (Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return session.retreat()
}

// SlideStatus reports a player's derived state for one slide.
func (s *GameService) SlideStatus(gameID, playerID, slideID string) (SlideStatus, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return SlideStatus{}, domain.ErrGameNotFound
	}
	return session.SlideStatus(slideID, playerID)
}

// PlayerRank reports "you are #K of N" for a player, past any display cap.
func (s *GameService) PlayerRank(gameID, playerID string) (rank, total int, err error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return 0, 0, domain.ErrGameNotFound
	}
	rank, total, found := session.PlayerRank(playerID)
	if !found {
		return 0, total, domain.ErrPlayerNotFound
	}
	return rank, total, nil
}

// ProcessThoughts kicks off topic extraction for a thoughts-results
// slide. The call is fire-and-forget: the slide shows a pending state
// until the groups arrive, and the host may re-invoke at any time.
func (s *GameService) ProcessThoughts(ctx context.Context, gameID, slideID string) (string, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return "", domain.ErrGameNotFound
	}
	slide, ok := session.presentation.SlideByID(slideID)
	if !ok || slide.Type != domain.SlideThoughtsResults {
		return "", domain.ErrSlideNotFound
	}
	res := ResolveSources(&session.presentation, *slide)
	if res.NotConfigured {
		return "", domain.ErrSlideNotFound
	}
	if s.topics == nil {
		return "", domain.ErrSlideNotInteractive
	}

	session.mu.RLock()
	thoughts := session.thoughtsLocked(res.Slides[0].ID)
	session.mu.RUnlock()

	requestID := uuid.NewString()
	session.markTopicsPending(slideID, requestID)

	go func() {
		groups, err := s.topics.ExtractTopics(context.Background(), requestID, thoughts)
		if err != nil {
			log.Printf("topic extraction %s failed: %v", requestID, err)
			return
		}
		session.setTopics(slideID, groups)
	}()
	return requestID, nil
}
