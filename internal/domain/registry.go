package domain

import "fmt"

// Behavior bundles everything the rest of the system needs to know about
// a slide type: interactivity flags, the default-slide factory and, for
// types that explode into a linked family, the set constructor.
type Behavior struct {
	Type        SlideType
	Interactive bool
	Scored      bool
	// MultiSlide types are authored as one action producing several
	// linked slides via NewSet.
	MultiSlide bool
	// Addable types appear in ListAddable; companion slides that only
	// exist as part of a set (results, rating inputs) are not addable
	// on their own, so an author can never create an orphaned results
	// slide with no source.
	Addable bool
	New     func(id string, order int) Slide
	NewSet  func(baseID string, startOrder int) []Slide
}

// registry is built in init: the set constructors resolve their member
// types through the registry, so a composite literal here would form an
// initialization cycle.
var registry map[SlideType]Behavior

func init() {
	registry = map[SlideType]Behavior{
		SlideContent: {
			Type:    SlideContent,
			Addable: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideContent, Order: order, Content: &ContentSlide{}}
			},
		},
		SlideQuiz: {
			Type:        SlideQuiz,
			Interactive: true,
			Scored:      true,
			Addable:     true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideQuiz, Order: order, Quiz: &QuizSlide{
					Options:          []string{"", ""},
					TimeLimitSeconds: 20,
				}}
			},
		},
		SlidePoll: {
			Type:        SlidePoll,
			Interactive: true,
			Addable:     true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlidePoll, Order: order, Poll: &PollSlide{
					Options:          []string{"", ""},
					TimeLimitSeconds: 30,
				}}
			},
		},
		SlideQuizResults: {
			Type:    SlideQuizResults,
			Addable: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideQuizResults, Order: order, QuizResults: &ChoiceResultsSlide{Display: "individual"}}
			},
		},
		SlidePollResults: {
			Type:    SlidePollResults,
			Addable: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlidePollResults, Order: order, PollResults: &ChoiceResultsSlide{Display: "individual"}}
			},
		},
		SlideThoughtsCollect: {
			Type:        SlideThoughtsCollect,
			Interactive: true,
			MultiSlide:  true,
			Addable:     true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideThoughtsCollect, Order: order, ThoughtsCollect: &ThoughtsCollectSlide{MaxPerPlayer: 3}}
			},
			NewSet: newThoughtsSet,
		},
		SlideThoughtsResults: {
			Type: SlideThoughtsResults,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideThoughtsResults, Order: order, ThoughtsResults: &ThoughtsResultsSlide{}}
			},
		},
		SlideRatingDescribe: {
			Type:       SlideRatingDescribe,
			MultiSlide: true,
			Addable:    true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideRatingDescribe, Order: order, RatingDescribe: &RatingDescribeSlide{}}
			},
			NewSet: newRatingSet,
		},
		SlideRatingInput: {
			Type:        SlideRatingInput,
			Interactive: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideRatingInput, Order: order, RatingInput: &RatingInputSlide{Metric: defaultMetric()}}
			},
		},
		SlideRatingResults: {
			Type: SlideRatingResults,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideRatingResults, Order: order, RatingResults: &RatingResultsSlide{Display: "single"}}
			},
		},
		SlideRatingSummary: {
			Type:    SlideRatingSummary,
			Addable: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideRatingSummary, Order: order, RatingSummary: &RatingSummarySlide{DefaultView: "ranking"}}
			},
		},
		SlideLeaderboard: {
			Type:    SlideLeaderboard,
			Addable: true,
			New: func(id string, order int) Slide {
				return Slide{ID: id, Type: SlideLeaderboard, Order: order, Leaderboard: &LeaderboardSlide{Display: "standard", MaxPlayers: 10}}
			},
		},
	}
}

// addableOrder fixes the order ListAddable presents types in.
var addableOrder = []SlideType{
	SlideContent,
	SlideQuiz,
	SlidePoll,
	SlideQuizResults,
	SlidePollResults,
	SlideThoughtsCollect,
	SlideRatingDescribe,
	SlideRatingSummary,
	SlideLeaderboard,
}

func defaultMetric() RatingMetric {
	return RatingMetric{Type: MetricStars, Min: 1, Max: 5}
}

// Resolve looks up the behavior for a slide type.
func Resolve(t SlideType) (Behavior, bool) {
	b, ok := registry[t]
	return b, ok
}

// MustResolve panics on an unknown type. The tag set is closed and
// validated at the boundary, so an unknown tag here is a bug.
func MustResolve(t SlideType) Behavior {
	b, ok := registry[t]
	if !ok {
		panic(fmt.Sprintf("unknown slide type %q", t))
	}
	return b
}

// KnownType reports whether t is in the closed tag set.
func KnownType(t SlideType) bool {
	_, ok := registry[t]
	return ok
}

// ListAddable returns the slide types an author may create directly, in
// a fixed order. Companion types only ever produced by a set constructor
// are excluded.
func ListAddable() []SlideType {
	out := make([]SlideType, 0, len(addableOrder))
	for _, t := range addableOrder {
		if registry[t].Addable {
			out = append(out, t)
		}
	}
	return out
}

// NewSlideSet builds the linked slide family for a multi-slide type, or
// a single default slide for everything else. Generated ids are
// deterministic suffixes of baseID so linkage is testable without
// relying on collection order.
func NewSlideSet(t SlideType, baseID string, startOrder int) []Slide {
	b := MustResolve(t)
	if b.NewSet != nil {
		return b.NewSet(baseID, startOrder)
	}
	return []Slide{b.New(baseID, startOrder)}
}

func newThoughtsSet(baseID string, startOrder int) []Slide {
	collectID := baseID + "-collect"
	resultsID := baseID + "-results"
	collect := MustResolve(SlideThoughtsCollect).New(collectID, startOrder)
	results := MustResolve(SlideThoughtsResults).New(resultsID, startOrder+1)
	results.ThoughtsResults.SourceSlideID = collectID
	return []Slide{collect, results}
}

func newRatingSet(baseID string, startOrder int) []Slide {
	describeID := baseID + "-describe"
	inputID := baseID + "-input"
	resultsID := baseID + "-results"
	describe := MustResolve(SlideRatingDescribe).New(describeID, startOrder)
	input := MustResolve(SlideRatingInput).New(inputID, startOrder+1)
	input.RatingInput.SourceDescribeSlideID = describeID
	results := MustResolve(SlideRatingResults).New(resultsID, startOrder+2)
	results.RatingResults.SourceSlideID = inputID
	return []Slide{describe, input, results}
}
