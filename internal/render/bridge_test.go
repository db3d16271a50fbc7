package render

import (
	"testing"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
)

func TestDims(t *testing.T) {
	cases := []struct {
		ratio string
		w, h  int
	}{
		{"1:1", 1080, 1080},
		{"4:5", 1080, 1350},
		{"9:16", 1080, 1920},
		{"16:9", 1920, 1080},
		{"weird", 1080, 1080},
	}
	for _, tc := range cases {
		w, h := Dims(tc.ratio)
		if w != tc.w || h != tc.h {
			t.Errorf("Dims(%q) = %dx%d, want %dx%d", tc.ratio, w, h, tc.w, tc.h)
		}
	}
}

func TestAccentColorSkipsExtremes(t *testing.T) {
	cases := []struct {
		name    string
		palette []string
		want    string
	}{
		{"skips near-white and near-black", []string{"#112233", "#FFFFFF", "#000000", "#E91E63"}, "#E91E63"},
		{"empty palette falls back", nil, defaultAccentColor},
		{"all extreme falls back", []string{"#FFFFFF", "#FEFEFE", "#010101"}, defaultAccentColor},
		{"garbage entries skipped", []string{"#111111", "not-a-color", "#00AACC"}, "#00AACC"},
		{"short hex accepted", []string{"#111", "#2aF"}, "#2AF"},
	}
	for _, tc := range cases {
		if got := AccentColor(tc.palette); got != tc.want {
			t.Errorf("%s: AccentColor(%v) = %q, want %q", tc.name, tc.palette, got, tc.want)
		}
	}
}

func TestPrimaryColor(t *testing.T) {
	if got := primaryColor([]string{"bogus", "#1a2b3c"}); got != "#1A2B3C" {
		t.Fatalf("got %q", got)
	}
	if got := primaryColor(nil); got != defaultBrandColor {
		t.Fatalf("got %q, want default", got)
	}
}

func TestBridgeHTML(t *testing.T) {
	def := *catalog.Default().ByID(catalog.TypeProductShowcase)
	cp := copygen.GeneratedCopy{
		Headline:    "CloudRest",
		PrimaryText: "Sleep deeper tonight.",
		CTA:         models.CTASignUp,
	}
	p := &models.Parameters{
		ProductName: "CloudRest",
		BrandColors: []string{"#112233", "#E91E63"},
		BrandFonts:  []string{"Inter", "Arial"},
		LogoURL:     "https://cdn/logo.png",
	}
	in := BridgeHTML(def, cp, p, "9:16")
	if in.Template != catalog.TypeProductShowcase {
		t.Errorf("template = %q", in.Template)
	}
	if in.Width != 1080 || in.Height != 1920 {
		t.Errorf("dims = %dx%d", in.Width, in.Height)
	}
	if in.CTALabel != "Sign Up" {
		t.Errorf("cta label = %q", in.CTALabel)
	}
	if in.BrandColor != "#112233" || in.AccentColor != "#E91E63" {
		t.Errorf("colors = %q / %q", in.BrandColor, in.AccentColor)
	}
	if in.FontFamily != "Inter" {
		t.Errorf("font = %q", in.FontFamily)
	}
}

func TestBridgeVideoSceneHint(t *testing.T) {
	cp := copygen.GeneratedCopy{PrimaryText: "script", Headline: "h"}
	p := &models.Parameters{
		ProductName: "X",
		Personas: []models.Persona{{
			ProblemScene: "stuck in traffic again",
			DreamScene:   "working from the beach",
		}},
	}

	unaware := *catalog.Default().ByID(catalog.TypeLifestyleSceneVideo)
	in := BridgeVideo(unaware, cp, p, "9:16")
	if in.SceneHint != "stuck in traffic again" {
		t.Errorf("unaware scene hint = %q", in.SceneHint)
	}

	aware := *catalog.Default().ByID(catalog.TypeProductDemoVideo)
	in = BridgeVideo(aware, cp, p, "16:9")
	if in.SceneHint != "working from the beach" {
		t.Errorf("aware scene hint = %q", in.SceneHint)
	}
	if in.DurationSeconds <= 0 {
		t.Error("expected a positive default duration")
	}
}

func TestBridgeRasterCarriesCards(t *testing.T) {
	def := *catalog.Default().ByID(catalog.TypeFeatureCarousel)
	cards := []copygen.CarouselCard{{Heading: "Calendar sync"}}
	in := BridgeRaster(def, copygen.GeneratedCopy{CTA: models.CTAShopNow}, &models.Parameters{}, "1:1", cards)
	if len(in.Cards) != 1 || in.Cards[0].Heading != "Calendar sync" {
		t.Fatalf("cards not carried: %+v", in.Cards)
	}
	if in.CTALabel != "Shop Now" {
		t.Errorf("cta label = %q", in.CTALabel)
	}
}
