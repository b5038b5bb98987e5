package app

import (
	"context"
	"fmt"
	"strings"

	"slidecast/internal/domain"
)

// ImageGenerator is the asynchronous image-generation collaborator.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style string) (string, error)
}

// AssetStore holds uploaded binary assets and hands back stable URLs.
type AssetStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// MaxAssetBytes caps uploads at 5MB.
const MaxAssetBytes = 5 << 20

var allowedAssetTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// ValidateAsset enforces size and type limits before any upload is
// attempted.
func ValidateAsset(contentType string, size int64) error {
	if size > MaxAssetBytes {
		return fmt.Errorf("asset exceeds %d bytes", int64(MaxAssetBytes))
	}
	if _, ok := allowedAssetTypes[contentType]; !ok {
		return fmt.Errorf("unsupported asset type %q", contentType)
	}
	return nil
}

// GenerateSlideImages fills in missing images for content and quiz
// slides. Cancellation is checked between items, never mid-item:
// already-generated images stay committed in the returned map, and the
// context error reports the early stop.
func GenerateSlideImages(ctx context.Context, gen ImageGenerator, p *domain.Presentation) (map[string]string, error) {
	generated := make(map[string]string)
	for i := range p.Slides {
		if err := ctx.Err(); err != nil {
			return generated, err
		}
		s := &p.Slides[i]
		prompt := imagePrompt(s)
		if prompt == "" {
			continue
		}
		url, err := gen.GenerateImage(ctx, prompt, p.Settings.ImageStyle)
		if err != nil {
			return generated, fmt.Errorf("generate image for slide %s: %w", s.ID, err)
		}
		generated[s.ID] = url
	}
	return generated, nil
}

func imagePrompt(s *domain.Slide) string {
	switch s.Type {
	case domain.SlideContent:
		if s.Content != nil && s.Content.ImageURL == "" {
			return strings.TrimSpace(s.Content.Title + " " + s.Content.Description)
		}
	case domain.SlideQuiz:
		if s.Quiz != nil && s.Quiz.ImageURL == "" {
			return strings.TrimSpace(s.Quiz.Question)
		}
	}
	return ""
}
