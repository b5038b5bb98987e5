package app

import "slidecast/internal/domain"

// ChoiceResult pairs a source slide with its vote distribution.
type ChoiceResult struct {
	SlideID      string                    `json:"slideId"`
	Question     string                    `json:"question"`
	CorrectIndex *int                      `json:"correctIndex,omitempty"`
	Distribution domain.ChoiceDistribution `json:"distribution"`
}

// SlideAggregate is the derived view for the current slide, shaped by
// its type. NotConfigured marks a results slide whose source reference
// dangles; the renderer shows a placeholder instead of crashing.
type SlideAggregate struct {
	SlideID         string                   `json:"slideId"`
	NotConfigured   bool                     `json:"notConfigured,omitempty"`
	Choices         []ChoiceResult           `json:"choices,omitempty"`
	Rating          *domain.RatingAggregate  `json:"rating,omitempty"`
	Ranking         []domain.RankedItem      `json:"ranking,omitempty"`
	Thoughts        []string                 `json:"thoughts,omitempty"`
	Topics          []domain.TopicGroup      `json:"topics,omitempty"`
	TopicsProcessed bool                     `json:"topicsProcessed,omitempty"`
	Leaderboard     *domain.Leaderboard      `json:"leaderboard,omitempty"`
}

// aggregateLocked recomputes the derived statistics for one slide from
// the full response log. Every call starts from scratch; there is no
// incremental state to drift.
func (g *GameSession) aggregateLocked(slide domain.Slide) *SlideAggregate {
	agg := &SlideAggregate{SlideID: slide.ID}
	switch slide.Type {
	case domain.SlideQuiz:
		agg.Choices = []ChoiceResult{g.choiceResultLocked(slide)}
	case domain.SlidePoll:
		agg.Choices = []ChoiceResult{g.choiceResultLocked(slide)}
	case domain.SlideQuizResults, domain.SlidePollResults:
		res := ResolveSources(&g.presentation, slide)
		if res.NotConfigured {
			agg.NotConfigured = true
			break
		}
		for _, src := range res.Slides {
			if src.Type == domain.SlideQuiz || src.Type == domain.SlidePoll {
				agg.Choices = append(agg.Choices, g.choiceResultLocked(src))
			}
		}
		if len(agg.Choices) == 0 {
			agg.NotConfigured = true
		}
	case domain.SlideThoughtsCollect:
		agg.Thoughts = g.thoughtsLocked(slide.ID)
	case domain.SlideThoughtsResults:
		res := ResolveSources(&g.presentation, slide)
		if res.NotConfigured {
			agg.NotConfigured = true
			break
		}
		agg.Thoughts = g.thoughtsLocked(res.Slides[0].ID)
		st := g.topics[slide.ID]
		agg.Topics = st.groups
		agg.TopicsProcessed = st.processed
	case domain.SlideRatingInput:
		if slide.RatingInput != nil {
			r := domain.AggregateRatings(slide.RatingInput.Metric, g.responsesForLocked(slide.ID))
			agg.Rating = &r
		}
	case domain.SlideRatingResults:
		g.ratingResultsLocked(slide, agg)
	case domain.SlideRatingSummary:
		agg.Ranking = g.rankRatingInputsLocked(nil)
	case domain.SlideLeaderboard:
		size := g.lbSize
		if slide.Leaderboard != nil && slide.Leaderboard.MaxPlayers > 0 {
			size = slide.Leaderboard.MaxPlayers
		}
		lb := g.leaderboardLocked(size)
		agg.Leaderboard = &lb
	default:
		// content and rating-describe slides have nothing to aggregate
		return nil
	}
	return agg
}

func (g *GameSession) choiceResultLocked(slide domain.Slide) ChoiceResult {
	cr := ChoiceResult{SlideID: slide.ID}
	switch slide.Type {
	case domain.SlideQuiz:
		if slide.Quiz != nil {
			cr.Question = slide.Quiz.Question
			correct := slide.Quiz.CorrectIndex
			cr.CorrectIndex = &correct
			cr.Distribution = domain.DistributeChoices(len(slide.Quiz.Options), false, g.responsesForLocked(slide.ID))
		}
	case domain.SlidePoll:
		if slide.Poll != nil {
			cr.Question = slide.Poll.Question
			cr.Distribution = domain.DistributeChoices(len(slide.Poll.Options), slide.Poll.MultiChoice, g.responsesForLocked(slide.ID))
		}
	}
	return cr
}

func (g *GameSession) thoughtsLocked(slideID string) []string {
	var out []string
	for _, r := range g.responsesForLocked(slideID) {
		if r.Thought != "" {
			out = append(out, r.Thought)
		}
	}
	return out
}

func (g *GameSession) ratingResultsLocked(slide domain.Slide, agg *SlideAggregate) {
	cfg := slide.RatingResults
	if cfg == nil {
		agg.NotConfigured = true
		return
	}
	if cfg.Display == "comparison" {
		agg.Ranking = g.rankRatingInputsLocked(cfg.ComparisonSlideIDs)
		if len(agg.Ranking) == 0 {
			agg.NotConfigured = true
		}
		return
	}
	res := ResolveSources(&g.presentation, slide)
	if res.NotConfigured || res.Slides[0].RatingInput == nil {
		agg.NotConfigured = true
		return
	}
	src := res.Slides[0]
	r := domain.AggregateRatings(src.RatingInput.Metric, g.responsesForLocked(src.ID))
	agg.Rating = &r
}

// rankRatingInputsLocked ranks rating-input slides by mean rating. A nil
// filter includes every rating-input slide in the presentation; ordering
// before the sort follows presentation order, which fixes tie-breaks.
func (g *GameSession) rankRatingInputsLocked(onlyIDs []string) []domain.RankedItem {
	var filter map[string]struct{}
	if onlyIDs != nil {
		filter = make(map[string]struct{}, len(onlyIDs))
		for _, id := range onlyIDs {
			filter[id] = struct{}{}
		}
	}
	var items []domain.RankedItem
	for _, s := range g.presentation.Slides {
		if s.Type != domain.SlideRatingInput || s.RatingInput == nil {
			continue
		}
		if filter != nil {
			if _, ok := filter[s.ID]; !ok {
				continue
			}
		}
		items = append(items, domain.RankedItem{
			SlideID:   s.ID,
			Title:     g.ratingTitleLocked(s),
			Aggregate: domain.AggregateRatings(s.RatingInput.Metric, g.responsesForLocked(s.ID)),
		})
	}
	return domain.RankItems(items)
}

// ratingTitleLocked labels a rating input by its describe slide when the
// link resolves, falling back to the metric question.
func (g *GameSession) ratingTitleLocked(input domain.Slide) string {
	if input.RatingInput == nil {
		return ""
	}
	if src, ok := g.presentation.SlideByID(input.RatingInput.SourceDescribeSlideID); ok && src.RatingDescribe != nil {
		return src.RatingDescribe.Title
	}
	return input.RatingInput.Metric.Question
}
