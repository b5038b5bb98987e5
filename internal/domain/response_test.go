package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func quizSlide() Slide {
	s := MustResolve(SlideQuiz).New("q1", 0)
	s.Quiz.Question = "pick one"
	s.Quiz.Options = []string{"a", "b", "c", "d"}
	s.Quiz.CorrectIndex = 2
	return s
}

func ratingSlide(min, max int) Slide {
	s := MustResolve(SlideRatingInput).New("r1", 0)
	s.RatingInput.Metric = RatingMetric{Type: MetricNumeric, Min: min, Max: max}
	return s
}

func TestValidateQuizIndexBounds(t *testing.T) {
	slide := quizSlide()
	if err := ValidateSubmission(slide, Submission{AnswerIndex: idx(3)}); err != nil {
		t.Fatalf("in-bounds index rejected: %v", err)
	}
	for _, bad := range []int{-1, 4} {
		if err := ValidateSubmission(slide, Submission{AnswerIndex: idx(bad)}); !errors.Is(err, ErrInvalidAnswer) {
			t.Fatalf("index %d: expected invalid answer, got %v", bad, err)
		}
	}
	if err := ValidateSubmission(slide, Submission{}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("missing index must be invalid, got %v", err)
	}
}

func TestValidateRatingBoundary(t *testing.T) {
	slide := ratingSlide(1, 10)
	// exactly min and max are accepted
	for _, ok := range []int{1, 10} {
		if err := ValidateSubmission(slide, Submission{Rating: idx(ok)}); err != nil {
			t.Fatalf("rating %d must be accepted: %v", ok, err)
		}
	}
	// one unit outside either bound is rejected
	for _, bad := range []int{0, 11} {
		if err := ValidateSubmission(slide, Submission{Rating: idx(bad)}); !errors.Is(err, ErrInvalidAnswer) {
			t.Fatalf("rating %d: expected invalid answer, got %v", bad, err)
		}
	}
}

func TestValidatePollMulti(t *testing.T) {
	s := MustResolve(SlidePoll).New("p1", 0)
	s.Poll.Options = []string{"a", "b", "c"}
	s.Poll.MultiChoice = true

	if err := ValidateSubmission(s, Submission{Indices: []int{0, 2}}); err != nil {
		t.Fatalf("valid multi rejected: %v", err)
	}
	if err := ValidateSubmission(s, Submission{Indices: []int{0, 0}}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("duplicate option must be invalid, got %v", err)
	}
	if err := ValidateSubmission(s, Submission{Indices: []int{3}}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("out-of-range option must be invalid, got %v", err)
	}
}

func TestValidateThoughts(t *testing.T) {
	s := MustResolve(SlideThoughtsCollect).New("t1", 0)
	s.ThoughtsCollect.MaxPerPlayer = 3

	if err := ValidateSubmission(s, Submission{Thoughts: []string{"one", "two", "three"}}); err != nil {
		t.Fatalf("valid thoughts rejected: %v", err)
	}
	if err := ValidateSubmission(s, Submission{Thoughts: []string{"1", "2", "3", "4"}}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("over-cap thoughts must be invalid, got %v", err)
	}
	long := strings.Repeat("x", MaxThoughtLength+1)
	if err := ValidateSubmission(s, Submission{Thoughts: []string{long}}); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("over-length thought must be invalid, got %v", err)
	}
}

func TestValidateNonInteractiveRejected(t *testing.T) {
	s := MustResolve(SlideContent).New("c1", 0)
	if err := ValidateSubmission(s, Submission{AnswerIndex: idx(0)}); !errors.Is(err, ErrSlideNotInteractive) {
		t.Fatalf("expected non-interactive rejection, got %v", err)
	}
}

func TestBuildResponsesExpandsThoughts(t *testing.T) {
	s := MustResolve(SlideThoughtsCollect).New("t1", 0)
	at := time.Now()
	out := BuildResponses("g1", s, "p1", Submission{Thoughts: []string{"a", "b"}}, at)
	if len(out) != 2 {
		t.Fatalf("expected one record per thought, got %d", len(out))
	}
	for _, r := range out {
		if r.GameID != "g1" || r.SlideID != "t1" || r.PlayerID != "p1" {
			t.Fatalf("bad key on %+v", r)
		}
	}
	if out[0].Thought != "a" || out[1].Thought != "b" {
		t.Fatalf("thoughts must be preserved in order: %+v", out)
	}
}
