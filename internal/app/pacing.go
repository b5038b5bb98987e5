package app

import "slidecast/internal/domain"

// PacingPolicy decides whether the host may advance past the current
// interactive slide, based on how many joined players have responded.
type PacingPolicy struct {
	mode      domain.PacingMode
	threshold int // percent, threshold mode only
}

// NewPacingPolicy builds a policy for direct session construction;
// threshold is a percentage and only applies in threshold mode.
func NewPacingPolicy(mode domain.PacingMode, threshold int) PacingPolicy {
	return PacingPolicy{mode: mode, threshold: threshold}
}

// resolvePacing layers presentation settings over service defaults.
func resolvePacing(settings domain.PresentationSettings, defaultMode domain.PacingMode, defaultThreshold int) PacingPolicy {
	p := PacingPolicy{mode: defaultMode, threshold: defaultThreshold}
	if settings.PacingMode != "" {
		p.mode = settings.PacingMode
	}
	if settings.PacingThreshold > 0 {
		p.threshold = settings.PacingThreshold
	}
	if p.mode == "" {
		p.mode = domain.PacingNone
	}
	return p
}

func (p PacingPolicy) allows(responded, total int) bool {
	switch p.mode {
	case domain.PacingThreshold:
		if total == 0 {
			return true
		}
		return responded*100 >= p.threshold*total
	case domain.PacingAll:
		return responded >= total
	default:
		return true
	}
}

// SourceResolution is the outcome of following a results/input slide's
// source reference(s). A dangling reference degrades to NotConfigured;
// it never fails slide rendering.
type SourceResolution struct {
	Slides        []domain.Slide
	NotConfigured bool
}

// ResolveSources looks up the slide's source reference(s) within the
// presentation. Slides without source links resolve to themselves.
func ResolveSources(p *domain.Presentation, slide domain.Slide) SourceResolution {
	ids := slide.SourceSlideIDs()
	if ids == nil {
		return SourceResolution{Slides: []domain.Slide{slide}}
	}
	var res SourceResolution
	for _, id := range ids {
		if src, ok := p.SlideByID(id); ok {
			res.Slides = append(res.Slides, *src)
		}
	}
	if len(res.Slides) == 0 {
		res.NotConfigured = true
	}
	return res
}
