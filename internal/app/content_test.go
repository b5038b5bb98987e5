package app

import (
	"context"
	"errors"
	"testing"

	"slidecast/internal/domain"
)

func TestValidateAsset(t *testing.T) {
	if err := ValidateAsset("image/png", 1024); err != nil {
		t.Fatalf("valid asset rejected: %v", err)
	}
	if err := ValidateAsset("image/png", MaxAssetBytes+1); err == nil {
		t.Fatalf("oversized asset must be rejected")
	}
	if err := ValidateAsset("application/pdf", 1024); err == nil {
		t.Fatalf("unsupported type must be rejected")
	}
}

type scriptedGenerator struct {
	calls  int
	cancel context.CancelFunc
}

func (g *scriptedGenerator) GenerateImage(_ context.Context, prompt, _ string) (string, error) {
	g.calls++
	if g.cancel != nil && g.calls == 1 {
		g.cancel()
	}
	return "https://cdn.test/" + prompt, nil
}

func imagelessPresentation() domain.Presentation {
	first := domain.MustResolve(domain.SlideContent).New("c1", 0)
	first.Content.Title = "welcome"
	second := domain.MustResolve(domain.SlideQuiz).New("q1", 1)
	second.Quiz.Question = "pick"
	second.Quiz.Options = []string{"a", "b"}
	var p domain.Presentation
	_ = p.AppendSlides(first, second)
	return p
}

func TestGenerateSlideImages(t *testing.T) {
	p := imagelessPresentation()
	gen := &scriptedGenerator{}
	generated, err := GenerateSlideImages(context.Background(), gen, &p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(generated) != 2 || generated["c1"] == "" || generated["q1"] == "" {
		t.Fatalf("expected both slides filled, got %+v", generated)
	}
}

func TestGenerateSlideImagesStopsBetweenItems(t *testing.T) {
	p := imagelessPresentation()
	ctx, cancel := context.WithCancel(context.Background())
	gen := &scriptedGenerator{cancel: cancel}

	generated, err := GenerateSlideImages(ctx, gen, &p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// the first item stays committed, the second never starts
	if len(generated) != 1 || generated["c1"] == "" {
		t.Fatalf("expected only the first image, got %+v", generated)
	}
	if gen.calls != 1 {
		t.Fatalf("cancellation must stop further calls, got %d", gen.calls)
	}
}

func TestGenerateSkipsSlidesWithImages(t *testing.T) {
	p := imagelessPresentation()
	p.Slides[0].Content.ImageURL = "https://cdn.test/existing"
	generated, err := GenerateSlideImages(context.Background(), &scriptedGenerator{}, &p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := generated["c1"]; ok {
		t.Fatalf("slides with images must be skipped: %+v", generated)
	}
	if _, ok := generated["q1"]; !ok {
		t.Fatalf("remaining slides must still be filled: %+v", generated)
	}
}
