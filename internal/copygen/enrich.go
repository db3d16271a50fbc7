package copygen

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Refiner is the external text-refinement/translation collaborator. Responses
// carry copy fields only; anything malformed falls back to the original copy.
type Refiner interface {
	Variants(ctx context.Context, base GeneratedCopy, n int) ([]GeneratedCopy, error)
	Translate(ctx context.Context, base GeneratedCopy, language string) (GeneratedCopy, error)
}

const (
	refineAttempts = 3
	refineTimeout  = 30 * time.Second
)

// Enricher wraps a Refiner with bounded retries and graceful degradation;
// failures never escape past it.
type Enricher struct {
	refiner Refiner
	logger  *zap.Logger
}

// NewEnricher creates an enricher. A nil refiner disables enrichment.
func NewEnricher(refiner Refiner, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{refiner: refiner, logger: logger}
}

// WithVariants requests n alternate phrasings of base. On any failure the
// result degrades to just the base copy.
func (e *Enricher) WithVariants(ctx context.Context, base GeneratedCopy, n int) []GeneratedCopy {
	if e.refiner == nil || n <= 0 {
		return []GeneratedCopy{base}
	}
	var variants []GeneratedCopy
	err := retry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, refineTimeout)
		defer cancel()
		got, err := e.refiner.Variants(callCtx, base, n)
		if err != nil {
			return err
		}
		variants = got
		return nil
	})
	if err != nil {
		e.logger.Warn("variant generation degraded to base copy", zap.Error(err))
		return []GeneratedCopy{base}
	}
	out := []GeneratedCopy{base}
	for _, v := range variants {
		out = append(out, clampToBase(v, base))
	}
	return out
}

// Translated requests a translation of base. Empty or default language, or
// any failure, returns the untranslated copy.
func (e *Enricher) Translated(ctx context.Context, base GeneratedCopy, language string) GeneratedCopy {
	if e.refiner == nil || language == "" || language == "en" {
		return base
	}
	var translated GeneratedCopy
	err := retry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, refineTimeout)
		defer cancel()
		got, err := e.refiner.Translate(callCtx, base, language)
		if err != nil {
			return err
		}
		translated = got
		return nil
	})
	if err != nil {
		e.logger.Warn("translation degraded to original copy",
			zap.String("language", language), zap.Error(err))
		return base
	}
	return clampToBase(translated, base)
}

// clampToBase enforces length limits on collaborator output and backfills any
// missing field from the base copy.
func clampToBase(got, base GeneratedCopy) GeneratedCopy {
	if got.PrimaryText == "" {
		got.PrimaryText = base.PrimaryText
	}
	if got.Headline == "" {
		got.Headline = base.Headline
	}
	if got.Description == "" {
		got.Description = base.Description
	}
	// The collaborator never decides the CTA.
	got.CTA = base.CTA
	got.Hooks = base.Hooks
	got.PrimaryText = truncate(cleanup(got.PrimaryText), PrimaryTextMaxLen)
	got.Headline = truncate(cleanup(got.Headline), HeadlineMaxLen)
	got.Description = truncate(cleanup(got.Description), DescriptionMaxLen)
	return got
}

// retry runs op with bounded exponential backoff.
func retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), refineAttempts-1), ctx)
	return backoff.Retry(op, policy)
}
