package domain

import "testing"

func TestListAddableExcludesCompanions(t *testing.T) {
	addable := ListAddable()
	set := make(map[SlideType]bool, len(addable))
	for _, typ := range addable {
		set[typ] = true
	}

	for _, companion := range []SlideType{SlideThoughtsResults, SlideRatingInput, SlideRatingResults} {
		if set[companion] {
			t.Fatalf("%s must not be directly addable", companion)
		}
	}
	for _, primary := range []SlideType{SlideContent, SlideQuiz, SlidePoll, SlideThoughtsCollect, SlideRatingDescribe, SlideLeaderboard} {
		if !set[primary] {
			t.Fatalf("%s must be addable", primary)
		}
	}
}

func TestMustResolveUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown slide type")
		}
	}()
	MustResolve(SlideType("bogus"))
}

func TestDefaultFactoriesSetPayload(t *testing.T) {
	for typ := range registry {
		s := MustResolve(typ).New("s1", 3)
		if s.ID != "s1" || s.Type != typ || s.Order != 3 {
			t.Fatalf("bad defaults for %s: %+v", typ, s)
		}
	}
}

func TestThoughtsSetLinkage(t *testing.T) {
	slides := NewSlideSet(SlideThoughtsCollect, "icebreaker", 4)
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	collect, results := slides[0], slides[1]
	if collect.ID != "icebreaker-collect" || results.ID != "icebreaker-results" {
		t.Fatalf("ids must be deterministic suffixes, got %s / %s", collect.ID, results.ID)
	}
	if results.ThoughtsResults.SourceSlideID != collect.ID {
		t.Fatalf("results must link back to collect, got %s", results.ThoughtsResults.SourceSlideID)
	}
	if collect.Order != 4 || results.Order != 5 {
		t.Fatalf("orders must be sequential, got %d / %d", collect.Order, results.Order)
	}
}

func TestRatingSetLinkage(t *testing.T) {
	slides := NewSlideSet(SlideRatingDescribe, "venue", 0)
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	describe, input, results := slides[0], slides[1], slides[2]
	if input.RatingInput.SourceDescribeSlideID != describe.ID {
		t.Fatalf("input must reference describe, got %s", input.RatingInput.SourceDescribeSlideID)
	}
	if results.RatingResults.SourceSlideID != input.ID {
		t.Fatalf("results must reference input, got %s", results.RatingResults.SourceSlideID)
	}

	// every source must resolve by id lookup within the returned set
	p := Presentation{ID: "p", Slides: slides}
	if warnings := CheckLinks(&p); len(warnings) != 0 {
		t.Fatalf("set constructor output must be self-consistent, got %+v", warnings)
	}
}

func TestNewSlideSetSingleForPlainTypes(t *testing.T) {
	slides := NewSlideSet(SlideQuiz, "q1", 2)
	if len(slides) != 1 || slides[0].Type != SlideQuiz {
		t.Fatalf("expected single quiz slide, got %+v", slides)
	}
}
