// Package pipeline orchestrates one creative-generation run: scrape, extract
// parameters, select ad types, generate copy, render and assemble the bundle.
// Only two conditions fail a run outright: unusable extraction and an empty
// selection. Everything else degrades and the run ships a smaller bundle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/ai"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/render"
	"github.com/adforge/backend/internal/scrape"
	"github.com/adforge/backend/internal/selector"
)

// Hard-failure reasons surfaced to the caller verbatim.
var (
	ErrExtractionFailed = errors.New("parameter extraction failed: no usable data from source")
	ErrNoEligibleTypes  = errors.New("no eligible ad types for the extracted parameters")
	ErrAllRendersFailed = errors.New("all creative renders failed")
)

// Reporter publishes run progress; a nil reporter disables events.
type Reporter interface {
	Publish(bundleID uuid.UUID, stage string, detail string)
}

// Progress stages, in run order.
const (
	StageScraping   = "scraping"
	StageExtracting = "extracting"
	StageSelecting  = "selecting"
	StageCopy       = "generating_copy"
	StageRendering  = "rendering"
	StageDone       = "done"
	StageFailed     = "failed"
)

// Options tunes per-run behavior.
type Options struct {
	// CopyVariants is how many alternate phrasings to request per creative
	// type; zero disables variant generation.
	CopyVariants int
}

// Pipeline wires the collaborator clients and core stages together.
type Pipeline struct {
	scraper    scrape.Scraper
	extractor  ai.Client
	selector   *selector.Selector
	generator  *copygen.Generator
	enricher   *copygen.Enricher
	dispatcher *render.Dispatcher
	reporter   Reporter
	opts       Options
	logger     *zap.Logger
}

// New creates a pipeline.
func New(scraper scrape.Scraper, extractor ai.Client, sel *selector.Selector, gen *copygen.Generator, enr *copygen.Enricher, disp *render.Dispatcher, reporter Reporter, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		scraper:    scraper,
		extractor:  extractor,
		selector:   sel,
		generator:  gen,
		enricher:   enr,
		dispatcher: disp,
		reporter:   reporter,
		opts:       opts,
		logger:     logger,
	}
}

// Run executes one full generation run for sourceURL. Partial results (fewer
// creatives than selected) are valid output, not failure.
func (pl *Pipeline) Run(ctx context.Context, bundleID uuid.UUID, sourceURL string) (*models.CreativeBundle, error) {
	log := pl.logger.With(zap.String("bundle_id", bundleID.String()), zap.String("source_url", sourceURL))

	pl.report(bundleID, StageScraping, sourceURL)
	signals, err := pl.scraper.Fetch(ctx, sourceURL)
	if err != nil {
		// Without page text the extractor has nothing to work from.
		log.Error("scrape failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	pl.report(bundleID, StageExtracting, "")
	params, err := pl.extractor.ExtractParameters(ctx, signals.RawText, signals.StyleHints(), sourceURL)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	params = mergeSignals(params, signals)
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	pl.report(bundleID, StageSelecting, "")
	defs := pl.selector.Select(params)
	if len(defs) == 0 {
		log.Error("empty selection")
		return nil, ErrNoEligibleTypes
	}
	log.Info("ad types selected", zap.Strings("type_ids", selector.SelectedIDs(defs)))

	pl.report(bundleID, StageCopy, "")
	items := make([]render.Item, 0, len(defs))
	for _, def := range defs {
		base := pl.generator.Generate(def, params)
		cp := pl.refineCopy(ctx, base)
		cp = pl.enricher.Translated(ctx, cp, params.Language)
		items = append(items, render.Item{Def: def, Copy: cp})
	}

	planned := pl.dispatcher.Plan(bundleID, items)
	sidecar := copygen.Sidecar{}
	for _, p := range planned {
		if p.Def.Format == models.FormatCarousel {
			sidecar[p.Creative.ID] = pl.generator.CarouselCards(params)
		}
	}

	pl.report(bundleID, StageRendering, fmt.Sprintf("%d creatives planned", len(planned)))
	creatives, err := pl.dispatcher.Render(ctx, params, planned, sidecar)
	if err != nil {
		return nil, err
	}
	if len(creatives) == 0 {
		log.Error("no creatives rendered")
		return nil, ErrAllRendersFailed
	}
	if len(creatives) < len(planned) {
		log.Warn("bundle reduced by render failures",
			zap.Int("planned", len(planned)), zap.Int("rendered", len(creatives)))
	}

	bundle := render.Assemble(bundleID, sourceURL, params, creatives)
	pl.report(bundleID, StageDone, fmt.Sprintf("%d creatives", len(creatives)))
	return &bundle, nil
}

// refineCopy asks the collaborator for alternate phrasings and keeps the one
// closest to the optimal primary-text length; degrades to base on failure.
func (pl *Pipeline) refineCopy(ctx context.Context, base copygen.GeneratedCopy) copygen.GeneratedCopy {
	if pl.opts.CopyVariants <= 0 {
		return base
	}
	candidates := pl.enricher.WithVariants(ctx, base, pl.opts.CopyVariants)
	best := candidates[0]
	bestDist := optimalDistance(best.PrimaryText)
	for _, c := range candidates[1:] {
		if d := optimalDistance(c.PrimaryText); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func optimalDistance(s string) int {
	d := utf8.RuneCountInString(s) - copygen.PrimaryTextOptimalLen
	if d < 0 {
		return -d
	}
	return d
}

func (pl *Pipeline) report(bundleID uuid.UUID, stage, detail string) {
	if pl.reporter != nil {
		pl.reporter.Publish(bundleID, stage, detail)
	}
}
