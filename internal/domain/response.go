package domain

import (
	"fmt"
	"time"
)

// MaxThoughtLength caps a single free-text thought.
const MaxThoughtLength = 500

// Response is one accepted answer record, keyed by (game, slide, player).
// Records are append-only: resubmission is rejected, never overwritten.
// Thoughts slides produce one record per thought sharing the same key.
type Response struct {
	GameID      string    `json:"gameId"`
	SlideID     string    `json:"slideId"`
	PlayerID    string    `json:"playerId"`
	AnswerIndex *int      `json:"answerIndex,omitempty"`
	Indices     []int     `json:"answerIndices,omitempty"`
	Thought     string    `json:"thought,omitempty"`
	Rating      *int      `json:"rating,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submission is the payload a player sends for one interactive slide.
// Exactly one field group is meaningful, matching the slide's type.
type Submission struct {
	AnswerIndex *int     `json:"answerIndex,omitempty"`
	Indices     []int    `json:"answerIndices,omitempty"`
	Thoughts    []string `json:"thoughts,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
}

// ValidateSubmission checks a payload against the slide it answers. These
// are the fast-fail bounds checks mirrored client-side; they run before
// any store write. All failures wrap ErrInvalidAnswer.
func ValidateSubmission(slide Slide, sub Submission) error {
	switch slide.Type {
	case SlideQuiz:
		if slide.Quiz == nil || sub.AnswerIndex == nil {
			return fmt.Errorf("%w: quiz requires answerIndex", ErrInvalidAnswer)
		}
		if *sub.AnswerIndex < 0 || *sub.AnswerIndex >= len(slide.Quiz.Options) {
			return fmt.Errorf("%w: answerIndex %d out of range", ErrInvalidAnswer, *sub.AnswerIndex)
		}
	case SlidePoll:
		if slide.Poll == nil {
			return fmt.Errorf("%w: poll payload missing", ErrInvalidAnswer)
		}
		if slide.Poll.MultiChoice {
			if len(sub.Indices) == 0 {
				return fmt.Errorf("%w: poll requires answerIndices", ErrInvalidAnswer)
			}
			seen := make(map[int]struct{}, len(sub.Indices))
			for _, idx := range sub.Indices {
				if idx < 0 || idx >= len(slide.Poll.Options) {
					return fmt.Errorf("%w: answerIndex %d out of range", ErrInvalidAnswer, idx)
				}
				if _, dup := seen[idx]; dup {
					return fmt.Errorf("%w: duplicate option %d", ErrInvalidAnswer, idx)
				}
				seen[idx] = struct{}{}
			}
		} else {
			if sub.AnswerIndex == nil {
				return fmt.Errorf("%w: poll requires answerIndex", ErrInvalidAnswer)
			}
			if *sub.AnswerIndex < 0 || *sub.AnswerIndex >= len(slide.Poll.Options) {
				return fmt.Errorf("%w: answerIndex %d out of range", ErrInvalidAnswer, *sub.AnswerIndex)
			}
		}
	case SlideThoughtsCollect:
		if slide.ThoughtsCollect == nil || len(sub.Thoughts) == 0 {
			return fmt.Errorf("%w: thoughts required", ErrInvalidAnswer)
		}
		if max := slide.ThoughtsCollect.MaxPerPlayer; max > 0 && len(sub.Thoughts) > max {
			return fmt.Errorf("%w: at most %d thoughts allowed", ErrInvalidAnswer, max)
		}
		for _, t := range sub.Thoughts {
			if t == "" {
				return fmt.Errorf("%w: empty thought", ErrInvalidAnswer)
			}
			if len([]rune(t)) > MaxThoughtLength {
				return fmt.Errorf("%w: thought exceeds %d characters", ErrInvalidAnswer, MaxThoughtLength)
			}
		}
	case SlideRatingInput:
		if slide.RatingInput == nil || sub.Rating == nil {
			return fmt.Errorf("%w: rating required", ErrInvalidAnswer)
		}
		m := slide.RatingInput.Metric
		if *sub.Rating < m.Min || *sub.Rating > m.Max {
			return fmt.Errorf("%w: rating %d outside [%d,%d]", ErrInvalidAnswer, *sub.Rating, m.Min, m.Max)
		}
	default:
		return fmt.Errorf("%w: %s", ErrSlideNotInteractive, slide.Type)
	}
	return nil
}

// BuildResponses expands an accepted submission into its append-only
// records. Thoughts become one record each; everything else is a single
// record.
func BuildResponses(gameID string, slide Slide, playerID string, sub Submission, at time.Time) []Response {
	base := Response{GameID: gameID, SlideID: slide.ID, PlayerID: playerID, SubmittedAt: at}
	if slide.Type == SlideThoughtsCollect {
		out := make([]Response, 0, len(sub.Thoughts))
		for _, t := range sub.Thoughts {
			r := base
			r.Thought = t
			out = append(out, r)
		}
		return out
	}
	r := base
	r.AnswerIndex = sub.AnswerIndex
	r.Indices = sub.Indices
	r.Rating = sub.Rating
	return []Response{r}
}
