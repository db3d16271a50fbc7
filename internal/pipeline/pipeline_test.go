package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/adforge/backend/internal/ai"
	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/render"
	"github.com/adforge/backend/internal/scrape"
	"github.com/adforge/backend/internal/selector"
)

type fakeScraper struct {
	signals *scrape.PageSignals
	err     error
}

func (f *fakeScraper) Fetch(ctx context.Context, pageURL string) (*scrape.PageSignals, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

type fakeAI struct {
	params      *models.Parameters
	extractErr  error
	variantsErr error
}

var _ ai.Client = (*fakeAI)(nil)

func (f *fakeAI) ExtractParameters(ctx context.Context, rawText string, styleHints map[string]string, sourceURL string) (*models.Parameters, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.params.Clone(), nil
}

func (f *fakeAI) Variants(ctx context.Context, base copygen.GeneratedCopy, n int) ([]copygen.GeneratedCopy, error) {
	if f.variantsErr != nil {
		return nil, f.variantsErr
	}
	return []copygen.GeneratedCopy{base}, nil
}

func (f *fakeAI) Translate(ctx context.Context, base copygen.GeneratedCopy, language string) (copygen.GeneratedCopy, error) {
	return base, nil
}

type stubBackend struct {
	mu        sync.Mutex
	htmlErr   error
	rasterErr error
	videoErr  error
	cardsSeen [][]copygen.CarouselCard
}

func (s *stubBackend) RenderHTML(ctx context.Context, in render.HTMLInput) (render.Result, error) {
	if s.htmlErr != nil {
		return render.Result{}, s.htmlErr
	}
	return render.Result{Bytes: []byte("x"), ContentType: "image/png"}, nil
}

func (s *stubBackend) RenderRaster(ctx context.Context, in render.RasterInput) (render.Result, error) {
	s.mu.Lock()
	if len(in.Cards) > 0 {
		s.cardsSeen = append(s.cardsSeen, in.Cards)
	}
	s.mu.Unlock()
	if s.rasterErr != nil {
		return render.Result{}, s.rasterErr
	}
	return render.Result{Bytes: []byte("x"), ContentType: "image/webp"}, nil
}

func (s *stubBackend) RenderFallback(ctx context.Context, in render.RasterInput) (render.Result, error) {
	if s.rasterErr != nil {
		return render.Result{}, s.rasterErr
	}
	return render.Result{Bytes: []byte("x"), ContentType: "image/png"}, nil
}

func (s *stubBackend) RenderVideo(ctx context.Context, in render.VideoInput) (render.Result, error) {
	if s.videoErr != nil {
		return render.Result{}, s.videoErr
	}
	return render.Result{Bytes: []byte("x"), ContentType: "video/mp4"}, nil
}

type stubStore struct{}

func (stubStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	return "https://assets.example.com/" + key, nil
}

type recordingReporter struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingReporter) Publish(bundleID uuid.UUID, stage, detail string) {
	r.mu.Lock()
	r.stages = append(r.stages, stage)
	r.mu.Unlock()
}

type fixedHooks struct{}

func (fixedHooks) Pick(n int) int { return 0 }

func richExtraction() *models.Parameters {
	p := &models.Parameters{
		ProductName:     "CloudRest",
		KeyBenefit:      "Deeper sleep, every night",
		ValueProps:      []string{"cooling gel", "free returns", "10-year warranty"},
		ProductImages:   []string{"a.jpg", "b.jpg", "c.jpg"},
		SocialProof:     "12,000 five-star reviews",
		CustomerPains:   []string{"waking up sore", "night sweats"},
		CustomerDesires: []string{"deep sleep"},
		Personas:        []models.Persona{{Label: "side sleeper", AgeMin: 25, AgeMax: 44, ProblemScene: "tossing at 3am"}},
		BusinessType:    "ecommerce",
		Language:        "en",
	}
	p.Normalize()
	return p
}

func newTestPipeline(t *testing.T, scraper scrape.Scraper, client ai.Client, backend *stubBackend, reporter Reporter) *Pipeline {
	t.Helper()
	cat := catalog.Default()
	disp, err := render.NewDispatcher(cat, render.DefaultFamilies(), backend, backend, backend, stubStore{}, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	gen := copygen.NewGenerator(fixedHooks{}, nil)
	var refiner copygen.Refiner
	if client != nil {
		refiner = client
	}
	enr := copygen.NewEnricher(refiner, nil)
	return New(scraper, client, selector.New(cat, nil), gen, enr, disp, reporter,
		Options{CopyVariants: 1}, nil)
}

func TestRunFullBundle(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "mattress page"}}
	client := &fakeAI{params: richExtraction()}
	backend := &stubBackend{}
	reporter := &recordingReporter{}

	pl := newTestPipeline(t, scraper, client, backend, reporter)
	bundleID := uuid.New()
	bundle, err := pl.Run(context.Background(), bundleID, "https://cloudrest.example.com")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Rich parameters select all 8 types; ratios expand to 13 creatives.
	if len(bundle.Creatives) != 13 {
		t.Fatalf("got %d creatives, want 13", len(bundle.Creatives))
	}
	if bundle.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", bundle.Status)
	}
	if bundle.ProductName != "CloudRest" {
		t.Errorf("product name = %q", bundle.ProductName)
	}
	for _, c := range bundle.Creatives {
		if c.BundleID != bundleID {
			t.Errorf("creative %s: wrong bundle id", c.ID)
		}
		if c.AssetURL == "" {
			t.Errorf("creative %s/%s: missing asset url", c.TypeID, c.AspectRatio)
		}
		if c.CTA == "" {
			t.Errorf("creative %s: missing CTA", c.TypeID)
		}
	}

	if len(reporter.stages) == 0 || reporter.stages[0] != StageScraping {
		t.Errorf("stages = %v, want scraping first", reporter.stages)
	}
	if reporter.stages[len(reporter.stages)-1] != StageDone {
		t.Errorf("stages = %v, want done last", reporter.stages)
	}

	// Carousel cards travelled through the sidecar to the raster backend.
	if len(backend.cardsSeen) == 0 {
		t.Error("carousel cards never reached the raster backend")
	}
}

func TestRunScrapeFailureIsExtractionFailure(t *testing.T) {
	pl := newTestPipeline(t, &fakeScraper{err: errors.New("dns")}, &fakeAI{params: richExtraction()}, &stubBackend{}, nil)
	_, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestRunExtractorFailure(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "t"}}
	pl := newTestPipeline(t, scraper, &fakeAI{extractErr: errors.New("bad json")}, &stubBackend{}, nil)
	_, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestRunUnusableExtraction(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "t"}}
	pl := newTestPipeline(t, scraper, &fakeAI{params: &models.Parameters{ProductName: "  "}}, &stubBackend{}, nil)
	_, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestRunAllRendersFailed(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "t"}}
	backend := &stubBackend{
		htmlErr:   errors.New("down"),
		rasterErr: errors.New("down"),
		videoErr:  errors.New("down"),
	}
	pl := newTestPipeline(t, scraper, &fakeAI{params: richExtraction()}, backend, nil)
	_, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if !errors.Is(err, ErrAllRendersFailed) {
		t.Fatalf("err = %v, want ErrAllRendersFailed", err)
	}
}

func TestRunPartialRenderFailureStillShips(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "t"}}
	backend := &stubBackend{videoErr: errors.New("render farm down")}
	pl := newTestPipeline(t, scraper, &fakeAI{params: richExtraction()}, backend, nil)

	bundle, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Three video creatives (demo x2 ratios, lifestyle x1) drop out of 13.
	if len(bundle.Creatives) != 10 {
		t.Fatalf("got %d creatives, want 10", len(bundle.Creatives))
	}
	for _, c := range bundle.Creatives {
		if c.Format == models.FormatVideo {
			t.Fatalf("video creative %s should have been dropped", c.TypeID)
		}
	}
}

func TestRunVariantFailureDegrades(t *testing.T) {
	scraper := &fakeScraper{signals: &scrape.PageSignals{RawText: "t"}}
	client := &fakeAI{params: richExtraction(), variantsErr: errors.New("over quota")}
	pl := newTestPipeline(t, scraper, client, &stubBackend{}, nil)

	bundle, err := pl.Run(context.Background(), uuid.New(), "https://x.example.com")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.Creatives) != 13 {
		t.Fatalf("variant failures must not reduce the bundle: got %d", len(bundle.Creatives))
	}
}
