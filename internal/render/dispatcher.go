package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/pkg/storage"
)

// DefaultFamilies maps each catalog type ID to its backend family. A type
// with no mapping is a misconfiguration caught by NewDispatcher.
func DefaultFamilies() map[string]Family {
	return map[string]Family{
		catalog.TypeProductShowcase:      FamilyHTML,
		catalog.TypeBenefitStack:         FamilyHTML,
		catalog.TypeSocialProofSpotlight: FamilyRaster,
		catalog.TypeProductDemoVideo:     FamilyVideo,
		catalog.TypeFeatureCarousel:      FamilyRaster,
		catalog.TypeProblemStatement:     FamilyRaster,
		catalog.TypePainAgitate:          FamilyHTML,
		catalog.TypeLifestyleSceneVideo:  FamilyVideo,
	}
}

// Item pairs a selected definition with its generated copy.
type Item struct {
	Def  catalog.Definition
	Copy copygen.GeneratedCopy
}

// Planned is one creative awaiting render, identity minted up front so
// auxiliary copy data can be keyed to it before dispatch.
type Planned struct {
	Creative models.GeneratedCreative
	Def      catalog.Definition
	Copy     copygen.GeneratedCopy
}

// Dispatcher routes planned creatives to their backend family, contains
// per-creative failures, and uploads rendered bytes to the asset store.
type Dispatcher struct {
	families map[string]Family
	html     HTMLBackend
	raster   RasterBackend
	video    VideoBackend
	store    AssetStore
	logger   *zap.Logger

	staticTimeout time.Duration
	videoTimeout  time.Duration
}

// NewDispatcher builds a dispatcher and validates the dispatch table against
// the catalog: every type must map to a family with a configured backend, and
// every referenced skip condition must be registered. Misconfiguration here
// fails loudly at startup instead of surfacing mid-run.
func NewDispatcher(cat *catalog.Catalog, families map[string]Family, html HTMLBackend, raster RasterBackend, video VideoBackend, store AssetStore, logger *zap.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		families:      families,
		html:          html,
		raster:        raster,
		video:         video,
		store:         store,
		logger:        logger,
		staticTimeout: 90 * time.Second,
		videoTimeout:  6 * time.Minute,
	}
	for _, def := range cat.All() {
		fam, ok := families[def.ID]
		if !ok {
			return nil, fmt.Errorf("dispatch table: no backend family for ad type %q", def.ID)
		}
		switch fam {
		case FamilyHTML:
			if html == nil {
				return nil, fmt.Errorf("dispatch table: ad type %q needs an html backend", def.ID)
			}
		case FamilyRaster:
			if raster == nil {
				return nil, fmt.Errorf("dispatch table: ad type %q needs a raster backend", def.ID)
			}
		case FamilyVideo:
			if video == nil {
				return nil, fmt.Errorf("dispatch table: ad type %q needs a video backend", def.ID)
			}
		default:
			return nil, fmt.Errorf("dispatch table: unknown family %q for ad type %q", fam, def.ID)
		}
		if def.SkipCondition != "" && !catalog.KnownSkipCondition(def.SkipCondition) {
			return nil, fmt.Errorf("catalog: ad type %q references unknown skip condition %q", def.ID, def.SkipCondition)
		}
	}
	return d, nil
}

// SetTimeouts overrides the per-family render timeouts. Zero values keep the
// current setting.
func (d *Dispatcher) SetTimeouts(static, video time.Duration) {
	if static > 0 {
		d.staticTimeout = static
	}
	if video > 0 {
		d.videoTimeout = video
	}
}

// Plan expands items into one planned creative per supported aspect ratio,
// minting identities in selection order.
func (d *Dispatcher) Plan(bundleID uuid.UUID, items []Item) []Planned {
	var planned []Planned
	now := time.Now().UTC()
	for _, it := range items {
		ratios := it.Def.AspectRatios
		if len(ratios) == 0 {
			ratios = []string{"1:1"}
		}
		for _, ratio := range ratios {
			planned = append(planned, Planned{
				Creative: models.GeneratedCreative{
					ID:          uuid.New(),
					BundleID:    bundleID,
					TypeID:      it.Def.ID,
					Strategy:    it.Def.Strategy,
					Format:      it.Def.Format,
					AspectRatio: ratio,
					PrimaryText: it.Copy.PrimaryText,
					Headline:    it.Copy.Headline,
					Description: it.Copy.Description,
					CTA:         it.Copy.CTA,
					CreatedAt:   now,
				},
				Def:  it.Def,
				Copy: it.Copy,
			})
		}
	}
	return planned
}

// Render dispatches planned creatives: static and carousel creatives render
// sequentially in plan order (the raster engine instance is shared), video
// creatives fan out in parallel. A failed render drops only that creative.
func (d *Dispatcher) Render(ctx context.Context, p *models.Parameters, planned []Planned, sidecar copygen.Sidecar) ([]models.GeneratedCreative, error) {
	results := make([]*models.GeneratedCreative, len(planned))

	var wg sync.WaitGroup
	for i := range planned {
		pl := &planned[i]
		fam, ok := d.families[pl.Def.ID]
		if !ok {
			return nil, fmt.Errorf("dispatch: no backend family for ad type %q", pl.Def.ID)
		}
		if fam == FamilyVideo {
			wg.Add(1)
			go func(idx int, pl *Planned) {
				defer wg.Done()
				results[idx] = d.renderOne(ctx, FamilyVideo, p, pl, sidecar)
			}(i, pl)
			continue
		}
		results[i] = d.renderOne(ctx, fam, p, pl, sidecar)
	}
	wg.Wait()

	out := make([]models.GeneratedCreative, 0, len(planned))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// renderOne bridges, invokes the backend (with the raster fallback path when
// the rich path fails), uploads the asset and fills in timing. Returns nil
// when the creative must be skipped.
func (d *Dispatcher) renderOne(ctx context.Context, fam Family, p *models.Parameters, pl *Planned, sidecar copygen.Sidecar) *models.GeneratedCreative {
	start := time.Now()
	var (
		res Result
		err error
	)
	switch fam {
	case FamilyHTML:
		callCtx, cancel := context.WithTimeout(ctx, d.staticTimeout)
		defer cancel()
		res, err = d.html.RenderHTML(callCtx, BridgeHTML(pl.Def, pl.Copy, p, pl.Creative.AspectRatio))
	case FamilyRaster:
		callCtx, cancel := context.WithTimeout(ctx, d.staticTimeout)
		defer cancel()
		in := BridgeRaster(pl.Def, pl.Copy, p, pl.Creative.AspectRatio, sidecar[pl.Creative.ID])
		res, err = d.raster.RenderRaster(callCtx, in)
		if err != nil {
			d.logger.Warn("rich raster path failed, trying fallback",
				zap.String("type_id", pl.Def.ID), zap.Error(err))
			res, err = d.raster.RenderFallback(callCtx, in)
		}
	case FamilyVideo:
		callCtx, cancel := context.WithTimeout(ctx, d.videoTimeout)
		defer cancel()
		res, err = d.video.RenderVideo(callCtx, BridgeVideo(pl.Def, pl.Copy, p, pl.Creative.AspectRatio))
	}
	if err != nil {
		d.logger.Error("render failed, creative skipped",
			zap.String("type_id", pl.Def.ID),
			zap.String("aspect_ratio", pl.Creative.AspectRatio),
			zap.Error(err))
		return nil
	}

	creative := pl.Creative
	creative.RenderTime = time.Since(start)

	key := storage.AssetKey(creative.BundleID.String(), creative.ID.String(), res.ContentType)
	url, err := d.store.Upload(ctx, key, res.ContentType, res.Bytes)
	if err != nil {
		// Asset store failure is not a render failure: keep the creative with
		// no asset reference.
		d.logger.Warn("asset upload failed", zap.String("key", key), zap.Error(err))
	} else {
		creative.AssetURL = url
	}
	return &creative
}
