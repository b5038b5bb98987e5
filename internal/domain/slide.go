package domain

import "fmt"

// SlideType tags the variant carried by a Slide. The set is closed;
// anything outside it is rejected at the data-model boundary.
type SlideType string

const (
	SlideContent         SlideType = "content"
	SlideQuiz            SlideType = "quiz"
	SlidePoll            SlideType = "poll"
	SlideQuizResults     SlideType = "quiz-results"
	SlidePollResults     SlideType = "poll-results"
	SlideThoughtsCollect SlideType = "thoughts-collect"
	SlideThoughtsResults SlideType = "thoughts-results"
	SlideRatingDescribe  SlideType = "rating-describe"
	SlideRatingInput     SlideType = "rating-input"
	SlideRatingResults   SlideType = "rating-results"
	SlideRatingSummary   SlideType = "rating-summary"
	SlideLeaderboard     SlideType = "leaderboard"
)

// Slide is a tagged union: Type selects which payload pointer is set.
// Exactly one payload is non-nil for a well-formed slide.
type Slide struct {
	ID    string    `json:"id"`
	Type  SlideType `json:"type"`
	Order int       `json:"order"`

	Content         *ContentSlide         `json:"content,omitempty"`
	Quiz            *QuizSlide            `json:"quiz,omitempty"`
	Poll            *PollSlide            `json:"poll,omitempty"`
	QuizResults     *ChoiceResultsSlide   `json:"quizResults,omitempty"`
	PollResults     *ChoiceResultsSlide   `json:"pollResults,omitempty"`
	ThoughtsCollect *ThoughtsCollectSlide `json:"thoughtsCollect,omitempty"`
	ThoughtsResults *ThoughtsResultsSlide `json:"thoughtsResults,omitempty"`
	RatingDescribe  *RatingDescribeSlide  `json:"ratingDescribe,omitempty"`
	RatingInput     *RatingInputSlide     `json:"ratingInput,omitempty"`
	RatingResults   *RatingResultsSlide   `json:"ratingResults,omitempty"`
	RatingSummary   *RatingSummarySlide   `json:"ratingSummary,omitempty"`
	Leaderboard     *LeaderboardSlide     `json:"leaderboard,omitempty"`
}

type ContentSlide struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// QuizSlide is a single-choice scored question.
type QuizSlide struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"` // 2..6 entries
	CorrectIndex     int      `json:"correctIndex"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
	ImageURL         string   `json:"imageUrl,omitempty"`
}

// PollSlide is an unscored question, single- or multi-choice.
type PollSlide struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"` // 2..6 entries
	MultiChoice      bool     `json:"multiChoice"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// ChoiceResultsSlide shows distributions for earlier quiz or poll slides.
type ChoiceResultsSlide struct {
	Title          string   `json:"title,omitempty"`
	SourceSlideIDs []string `json:"sourceSlideIds"`
	Display        string   `json:"display"` // "individual" | "combined"
}

type ThoughtsCollectSlide struct {
	Prompt           string `json:"prompt"`
	MaxPerPlayer     int    `json:"maxPerPlayer"`
	TimeLimitSeconds int    `json:"timeLimitSeconds,omitempty"`
}

// TopicGroup is one AI-extracted grouping of submitted thoughts.
type TopicGroup struct {
	Label    string   `json:"label"`
	Thoughts []string `json:"thoughts"`
}

type ThoughtsResultsSlide struct {
	SourceSlideID string       `json:"sourceSlideId"`
	Topics        []TopicGroup `json:"topics,omitempty"`
	Processed     bool         `json:"processed"`
	RequestID     string       `json:"requestId,omitempty"`
}

type RatingDescribeSlide struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RatingMetricType selects how a rating scale is presented.
type RatingMetricType string

const (
	MetricStars   RatingMetricType = "stars"
	MetricNumeric RatingMetricType = "numeric"
	MetricLabels  RatingMetricType = "labels"
)

type RatingMetric struct {
	Type     RatingMetricType `json:"type"`
	Min      int              `json:"min"`
	Max      int              `json:"max"`
	Labels   []string         `json:"labels,omitempty"`
	Question string           `json:"question,omitempty"`
}

type RatingInputSlide struct {
	SourceDescribeSlideID string       `json:"sourceDescribeSlideId"`
	Metric                RatingMetric `json:"metric"`
}

type RatingResultsSlide struct {
	SourceSlideID      string   `json:"sourceSlideId"`
	Display            string   `json:"display"` // "single" | "comparison" | "live"
	ComparisonSlideIDs []string `json:"comparisonSlideIds,omitempty"`
}

type RatingSummarySlide struct {
	Title       string `json:"title,omitempty"`
	DefaultView string `json:"defaultView"` // "ranking" | "chart" | "heatmap"
}

type LeaderboardSlide struct {
	Title      string `json:"title,omitempty"`
	Display    string `json:"display"` // "standard" | "podium"
	MaxPlayers int    `json:"maxPlayers"`
}

// TimeLimit returns the slide's configured submission window, or 0 when
// the slide has none (non-interactive or untimed).
func (s Slide) TimeLimit() int {
	switch s.Type {
	case SlideQuiz:
		if s.Quiz != nil {
			return s.Quiz.TimeLimitSeconds
		}
	case SlidePoll:
		if s.Poll != nil {
			return s.Poll.TimeLimitSeconds
		}
	case SlideThoughtsCollect:
		if s.ThoughtsCollect != nil {
			return s.ThoughtsCollect.TimeLimitSeconds
		}
	}
	return 0
}

// SourceSlideIDs returns the ids of the earlier slides this slide derives
// from, empty for slides without source links.
func (s Slide) SourceSlideIDs() []string {
	switch s.Type {
	case SlideQuizResults:
		if s.QuizResults != nil {
			return s.QuizResults.SourceSlideIDs
		}
	case SlidePollResults:
		if s.PollResults != nil {
			return s.PollResults.SourceSlideIDs
		}
	case SlideThoughtsResults:
		if s.ThoughtsResults != nil && s.ThoughtsResults.SourceSlideID != "" {
			return []string{s.ThoughtsResults.SourceSlideID}
		}
	case SlideRatingInput:
		if s.RatingInput != nil && s.RatingInput.SourceDescribeSlideID != "" {
			return []string{s.RatingInput.SourceDescribeSlideID}
		}
	case SlideRatingResults:
		if s.RatingResults != nil && s.RatingResults.SourceSlideID != "" {
			return []string{s.RatingResults.SourceSlideID}
		}
	}
	return nil
}

// PacingMode gates host advancement on response completion.
type PacingMode string

const (
	PacingNone      PacingMode = "none"
	PacingThreshold PacingMode = "threshold"
	PacingAll       PacingMode = "all"
)

type PresentationSettings struct {
	PacingMode      PacingMode `json:"pacingMode"`
	PacingThreshold int        `json:"pacingThreshold"` // percent, used when PacingMode == threshold
	ImageStyle      string     `json:"imageStyle,omitempty"`
}

// Presentation is an ordered list of slides plus style defaults. Slide
// orders are unique and monotonic; slide ids are unique.
type Presentation struct {
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Slides   []Slide              `json:"slides"`
	Settings PresentationSettings `json:"settings"`
}

// SlideByID looks a slide up by id.
func (p *Presentation) SlideByID(id string) (*Slide, bool) {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return &p.Slides[i], true
		}
	}
	return nil, false
}

// SlideIndex returns the position of a slide in the sequence, -1 if absent.
func (p *Presentation) SlideIndex(id string) int {
	for i := range p.Slides {
		if p.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// InsertSlides splices slides in at the given position and renumbers
// orders. Duplicate ids are rejected.
func (p *Presentation) InsertSlides(at int, slides ...Slide) error {
	if at < 0 || at > len(p.Slides) {
		return fmt.Errorf("insert position %d out of range", at)
	}
	for _, s := range slides {
		if _, exists := p.SlideByID(s.ID); exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSlideID, s.ID)
		}
	}
	p.Slides = append(p.Slides[:at], append(append([]Slide{}, slides...), p.Slides[at:]...)...)
	p.renumber()
	return nil
}

// AppendSlides adds slides at the end of the sequence.
func (p *Presentation) AppendSlides(slides ...Slide) error {
	return p.InsertSlides(len(p.Slides), slides...)
}

// RemoveSlide deletes a slide by id and renumbers orders.
func (p *Presentation) RemoveSlide(id string) bool {
	idx := p.SlideIndex(id)
	if idx < 0 {
		return false
	}
	p.Slides = append(p.Slides[:idx], p.Slides[idx+1:]...)
	p.renumber()
	return true
}

// MoveSlide relocates a slide to a new position and renumbers orders.
func (p *Presentation) MoveSlide(id string, to int) error {
	idx := p.SlideIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSlideNotFound, id)
	}
	if to < 0 || to >= len(p.Slides) {
		return fmt.Errorf("move position %d out of range", to)
	}
	s := p.Slides[idx]
	rest := append(p.Slides[:idx], p.Slides[idx+1:]...)
	p.Slides = append(rest[:to], append([]Slide{s}, rest[to:]...)...)
	p.renumber()
	return nil
}

func (p *Presentation) renumber() {
	for i := range p.Slides {
		p.Slides[i].Order = i
	}
}

// ValidateOrder reports whether slide orders are unique and strictly
// increasing and ids are unique.
func (p *Presentation) ValidateOrder() error {
	seen := make(map[string]struct{}, len(p.Slides))
	for i := range p.Slides {
		s := &p.Slides[i]
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSlideID, s.ID)
		}
		seen[s.ID] = struct{}{}
		if i > 0 && s.Order <= p.Slides[i-1].Order {
			return fmt.Errorf("slide %s: order %d not strictly increasing", s.ID, s.Order)
		}
	}
	return nil
}

// LinkWarning flags a slide whose source reference is missing or points
// forward. Warnings are editor-facing; they never fail a load.
type LinkWarning struct {
	SlideID  string
	SourceID string
	Reason   string
}

// CheckLinks validates source references: every referenced slide must
// exist and sit strictly earlier in the sequence.
func CheckLinks(p *Presentation) []LinkWarning {
	var warnings []LinkWarning
	for i := range p.Slides {
		s := &p.Slides[i]
		for _, srcID := range s.SourceSlideIDs() {
			src, ok := p.SlideByID(srcID)
			if !ok {
				warnings = append(warnings, LinkWarning{SlideID: s.ID, SourceID: srcID, Reason: "source slide not found"})
				continue
			}
			if src.Order >= s.Order {
				warnings = append(warnings, LinkWarning{SlideID: s.ID, SourceID: srcID, Reason: "source slide must come earlier"})
			}
		}
	}
	return warnings
}
