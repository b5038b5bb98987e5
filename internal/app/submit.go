package app

import (
	"fmt"
	"time"

	"slidecast/internal/domain"
)

// SubmitResult reports the outcome of an accepted submission.
type SubmitResult struct {
	SlideID    string `json:"slideId"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}

// accept runs the server-authoritative submission path: precondition
// checks against the derived slide state, the all-or-nothing append of
// the response records, and the score increment — all under one lock so
// score and responses are never observably out of sync.
func (g *GameSession) accept(playerID string, slide domain.Slide, sub domain.Submission) ([]domain.Response, SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.players[playerID]
	if !ok {
		return nil, SubmitResult{}, domain.ErrPlayerNotFound
	}

	now := g.now()
	state, remaining := g.slideStateLocked(slide, playerID, now)

	if slide.Type == domain.SlideThoughtsCollect {
		// Thoughts allow repeated batches; the derived state reports
		// answered only once the per-player cap is spent.
		switch state {
		case SlideAnswered:
			return nil, SubmitResult{}, domain.ErrAlreadyAnswered
		case SlidePending:
			return nil, SubmitResult{}, domain.ErrSlideNotActive
		case SlideTimedOut:
			return nil, SubmitResult{}, domain.ErrDeadlineExceeded
		}
		sent := g.thoughtsSent[slide.ID][playerID]
		if max := slide.ThoughtsCollect.MaxPerPlayer; max > 0 && sent+len(sub.Thoughts) > max {
			return nil, SubmitResult{}, fmt.Errorf("%w: at most %d thoughts allowed", domain.ErrInvalidAnswer, max)
		}
	} else {
		switch state {
		case SlideAnswered:
			return nil, SubmitResult{}, domain.ErrAlreadyAnswered
		case SlidePending:
			return nil, SubmitResult{}, domain.ErrSlideNotActive
		case SlideTimedOut:
			return nil, SubmitResult{}, domain.ErrDeadlineExceeded
		}
	}

	responses := domain.BuildResponses(g.id, slide, playerID, sub, now)
	g.responses = append(g.responses, responses...)

	result := SubmitResult{SlideID: slide.ID}
	if slide.Type == domain.SlideThoughtsCollect {
		if g.thoughtsSent[slide.ID] == nil {
			g.thoughtsSent[slide.ID] = make(map[string]int)
		}
		g.thoughtsSent[slide.ID][playerID] += len(responses)
	} else {
		if g.answered[slide.ID] == nil {
			g.answered[slide.ID] = make(map[string]bool)
		}
		g.answered[slide.ID][playerID] = true
	}

	if slide.Type == domain.SlideQuiz && slide.Quiz != nil && sub.AnswerIndex != nil {
		limit := time.Duration(slide.Quiz.TimeLimitSeconds) * time.Second
		result.Correct = *sub.AnswerIndex == slide.Quiz.CorrectIndex
		result.Awarded = scoreAnswer(result.Correct, remaining, limit)
		player.score += result.Awarded
	}
	result.TotalScore = player.score

	g.broadcastLocked()
	return responses, result, nil
}
