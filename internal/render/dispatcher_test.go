package render

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/pkg/storage"
)

type fakeHTML struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool // template ID -> fail
}

func (f *fakeHTML) RenderHTML(ctx context.Context, in HTMLInput) (Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[in.Template] {
		return Result{}, errors.New("html render failed")
	}
	return Result{Bytes: []byte("png"), ContentType: "image/png"}, nil
}

type fakeRaster struct {
	richErr     error
	fallbackErr error
	richCalls   int
	fbCalls     int
	lastCards   []copygen.CarouselCard
}

func (f *fakeRaster) RenderRaster(ctx context.Context, in RasterInput) (Result, error) {
	f.richCalls++
	f.lastCards = in.Cards
	if f.richErr != nil {
		return Result{}, f.richErr
	}
	return Result{Bytes: []byte("webp"), ContentType: "image/webp"}, nil
}

func (f *fakeRaster) RenderFallback(ctx context.Context, in RasterInput) (Result, error) {
	f.fbCalls++
	if f.fallbackErr != nil {
		return Result{}, f.fallbackErr
	}
	return Result{Bytes: []byte("png"), ContentType: "image/png"}, nil
}

type fakeVideo struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeVideo) RenderVideo(ctx context.Context, in VideoInput) (Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Bytes: []byte("mp4"), ContentType: "video/mp4"}, nil
}

type fakeStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://assets.example.com/" + key, nil
}

func testParams() *models.Parameters {
	p := &models.Parameters{ProductName: "CloudRest"}
	p.Normalize()
	return p
}

func newTestDispatcher(t *testing.T, html HTMLBackend, raster RasterBackend, video VideoBackend, store AssetStore) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(catalog.Default(), DefaultFamilies(), html, raster, video, store, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestNewDispatcherValidation(t *testing.T) {
	cat := catalog.Default()
	html, raster, video, store := &fakeHTML{}, &fakeRaster{}, &fakeVideo{}, &fakeStore{}

	// Missing mapping for a catalog type.
	families := DefaultFamilies()
	delete(families, catalog.TypePainAgitate)
	if _, err := NewDispatcher(cat, families, html, raster, video, store, nil); err == nil {
		t.Fatal("expected error for unmapped ad type")
	}

	// Mapped family without a backend.
	if _, err := NewDispatcher(cat, DefaultFamilies(), html, raster, nil, store, nil); err == nil {
		t.Fatal("expected error for missing video backend")
	}

	// Unknown family name.
	families = DefaultFamilies()
	families[catalog.TypePainAgitate] = Family("hologram")
	if _, err := NewDispatcher(cat, families, html, raster, video, store, nil); err == nil {
		t.Fatal("expected error for unknown family")
	}

	// Catalog entry referencing an unregistered skip condition.
	defs := cat.All()
	for i := range defs {
		if defs[i].ID == catalog.TypeBenefitStack {
			defs[i].SkipCondition = "typo_condition"
		}
	}
	if _, err := NewDispatcher(catalog.New(defs), DefaultFamilies(), html, raster, video, store, nil); err == nil {
		t.Fatal("expected error for unknown skip condition")
	}
}

func TestPlanExpandsAspectRatios(t *testing.T) {
	d := newTestDispatcher(t, &fakeHTML{}, &fakeRaster{}, &fakeVideo{}, &fakeStore{})
	bundleID := uuid.New()
	cat := catalog.Default()
	items := []Item{
		{Def: *cat.ByID(catalog.TypeProductShowcase), Copy: copygen.GeneratedCopy{Headline: "h"}}, // 1:1, 9:16
		{Def: *cat.ByID(catalog.TypeSocialProofSpotlight), Copy: copygen.GeneratedCopy{}},         // 1:1
	}
	planned := d.Plan(bundleID, items)
	if len(planned) != 3 {
		t.Fatalf("planned %d creatives, want 3", len(planned))
	}

	seen := make(map[uuid.UUID]bool)
	for i, pl := range planned {
		if pl.Creative.ID == uuid.Nil {
			t.Fatalf("creative %d has nil id", i)
		}
		if seen[pl.Creative.ID] {
			t.Fatalf("duplicate creative id at %d", i)
		}
		seen[pl.Creative.ID] = true
		if pl.Creative.BundleID != bundleID {
			t.Fatalf("creative %d bundle id mismatch", i)
		}
	}
	if planned[0].Creative.AspectRatio != "1:1" || planned[1].Creative.AspectRatio != "9:16" {
		t.Errorf("showcase ratios out of order: %s, %s",
			planned[0].Creative.AspectRatio, planned[1].Creative.AspectRatio)
	}
	if planned[2].Def.ID != catalog.TypeSocialProofSpotlight {
		t.Errorf("plan order broken: %s", planned[2].Def.ID)
	}
}

func TestRenderPartialFailureDropsOnlyThatCreative(t *testing.T) {
	html := &fakeHTML{fail: map[string]bool{catalog.TypeBenefitStack: true}}
	d := newTestDispatcher(t, html, &fakeRaster{}, &fakeVideo{}, &fakeStore{})

	cat := catalog.Default()
	items := []Item{
		{Def: *cat.ByID(catalog.TypeProductShowcase)},      // html x2 ratios
		{Def: *cat.ByID(catalog.TypeBenefitStack)},         // html x2 ratios, fails
		{Def: *cat.ByID(catalog.TypeSocialProofSpotlight)}, // raster x1
		{Def: *cat.ByID(catalog.TypeProductDemoVideo)},     // video x2 ratios
	}
	planned := d.Plan(uuid.New(), items)
	got, err := d.Render(context.Background(), testParams(), planned, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != len(planned)-2 {
		t.Fatalf("got %d creatives, want %d", len(got), len(planned)-2)
	}
	for _, c := range got {
		if c.TypeID == catalog.TypeBenefitStack {
			t.Fatalf("failed type leaked into results")
		}
		if c.AssetURL == "" {
			t.Errorf("creative %s/%s missing asset url", c.TypeID, c.AspectRatio)
		}
	}
}

func TestRenderRasterFallbackPath(t *testing.T) {
	raster := &fakeRaster{richErr: errors.New("hero fetch failed")}
	d := newTestDispatcher(t, &fakeHTML{}, raster, &fakeVideo{}, &fakeStore{})

	items := []Item{{Def: *catalog.Default().ByID(catalog.TypeSocialProofSpotlight)}}
	planned := d.Plan(uuid.New(), items)
	got, err := d.Render(context.Background(), testParams(), planned, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d creatives, want 1 via fallback", len(got))
	}
	if raster.richCalls != 1 || raster.fbCalls != 1 {
		t.Fatalf("rich=%d fallback=%d, want 1/1", raster.richCalls, raster.fbCalls)
	}

	// Both paths failing drops the creative.
	raster2 := &fakeRaster{richErr: errors.New("x"), fallbackErr: errors.New("y")}
	d2 := newTestDispatcher(t, &fakeHTML{}, raster2, &fakeVideo{}, &fakeStore{})
	got, err = d2.Render(context.Background(), testParams(), d2.Plan(uuid.New(), items), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected creative dropped, got %d", len(got))
	}
}

func TestRenderUploadFailureKeepsCreative(t *testing.T) {
	d := newTestDispatcher(t, &fakeHTML{}, &fakeRaster{}, &fakeVideo{}, &fakeStore{err: errors.New("s3 down")})

	items := []Item{{Def: *catalog.Default().ByID(catalog.TypeProductShowcase)}}
	planned := d.Plan(uuid.New(), items)
	got, err := d.Render(context.Background(), testParams(), planned, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != len(planned) {
		t.Fatalf("upload failure must not drop creatives: got %d, want %d", len(got), len(planned))
	}
	for _, c := range got {
		if c.AssetURL != "" {
			t.Errorf("expected empty asset url, got %q", c.AssetURL)
		}
	}
}

func TestRenderSidecarReachesRasterBackend(t *testing.T) {
	raster := &fakeRaster{}
	d := newTestDispatcher(t, &fakeHTML{}, raster, &fakeVideo{}, &fakeStore{})

	items := []Item{{Def: *catalog.Default().ByID(catalog.TypeFeatureCarousel)}}
	planned := d.Plan(uuid.New(), items)

	sidecar := copygen.Sidecar{
		planned[0].Creative.ID: {{Heading: "Calendar sync"}, {Heading: "Team views"}},
	}
	if _, err := d.Render(context.Background(), testParams(), planned, sidecar); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(raster.lastCards) != 2 {
		t.Fatalf("raster got %d cards, want 2", len(raster.lastCards))
	}
}

func TestRenderOrderMatchesPlanAcrossFamilies(t *testing.T) {
	// Videos render concurrently but land back at their plan positions.
	d := newTestDispatcher(t, &fakeHTML{}, &fakeRaster{}, &fakeVideo{}, &fakeStore{})
	cat := catalog.Default()
	items := []Item{
		{Def: *cat.ByID(catalog.TypeProductDemoVideo)},
		{Def: *cat.ByID(catalog.TypeProductShowcase)},
		{Def: *cat.ByID(catalog.TypeLifestyleSceneVideo)},
	}
	planned := d.Plan(uuid.New(), items)
	got, err := d.Render(context.Background(), testParams(), planned, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != len(planned) {
		t.Fatalf("got %d, want %d", len(got), len(planned))
	}
	for i := range got {
		if got[i].ID != planned[i].Creative.ID {
			t.Fatalf("result %d out of plan order: %s vs %s", i, got[i].ID, planned[i].Creative.ID)
		}
	}
}

func TestRenderUsesCanonicalAssetKeys(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(t, &fakeHTML{}, &fakeRaster{}, &fakeVideo{}, store)

	items := []Item{{Def: *catalog.Default().ByID(catalog.TypeProductShowcase)}}
	planned := d.Plan(uuid.New(), items)
	if _, err := d.Render(context.Background(), testParams(), planned, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(store.keys) != len(planned) {
		t.Fatalf("uploaded %d assets, want %d", len(store.keys), len(planned))
	}
	for i, pl := range planned {
		want := storage.AssetKey(pl.Creative.BundleID.String(), pl.Creative.ID.String(), "image/png")
		if store.keys[i] != want {
			t.Errorf("asset key %d = %q, want %q", i, store.keys[i], want)
		}
	}
}
