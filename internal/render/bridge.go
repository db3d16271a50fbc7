package render

import (
	"strconv"
	"strings"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
)

// Canvas dimensions per supported aspect ratio.
var ratioDims = map[string][2]int{
	"1:1":  {1080, 1080},
	"4:5":  {1080, 1350},
	"9:16": {1080, 1920},
	"16:9": {1920, 1080},
}

// Dims returns pixel dimensions for an aspect ratio, defaulting to square.
func Dims(ratio string) (w, h int) {
	if d, ok := ratioDims[ratio]; ok {
		return d[0], d[1]
	}
	return 1080, 1080
}

// HTMLInput is the parameter object for the HTML/CSS-to-image backend.
type HTMLInput struct {
	Template     string   `json:"template"`
	AspectRatio  string   `json:"aspect_ratio"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Headline     string   `json:"headline"`
	Body         string   `json:"body"`
	CTALabel     string   `json:"cta_label"`
	BrandColor   string   `json:"brand_color"`
	AccentColor  string   `json:"accent_color"`
	FontFamily   string   `json:"font_family,omitempty"`
	LogoURL      string   `json:"logo_url,omitempty"`
	HeroImageURL string   `json:"hero_image_url,omitempty"`
	ImageURLs    []string `json:"image_urls,omitempty"`
}

// RasterInput is the parameter object for the layered raster backend.
type RasterInput struct {
	Width        int
	Height       int
	Background   string
	Accent       string
	Headline     string
	Body         string
	CTALabel     string
	HeroImageURL string
	Cards        []copygen.CarouselCard
}

// VideoInput is the parameter object for the external video backend.
type VideoInput struct {
	Script          string   `json:"script"`
	Headline        string   `json:"headline"`
	AspectRatio     string   `json:"aspect_ratio"`
	DurationSeconds int      `json:"duration_seconds"`
	ImageURLs       []string `json:"image_urls,omitempty"`
	SceneHint       string   `json:"scene_hint,omitempty"`
}

// BridgeHTML maps pipeline data into the HTML backend's input. Pure function.
func BridgeHTML(def catalog.Definition, cp copygen.GeneratedCopy, p *models.Parameters, ratio string) HTMLInput {
	w, h := Dims(ratio)
	in := HTMLInput{
		Template:     def.ID,
		AspectRatio:  ratio,
		Width:        w,
		Height:       h,
		Headline:     cp.Headline,
		Body:         cp.PrimaryText,
		CTALabel:     ctaLabel(cp.CTA),
		BrandColor:   primaryColor(p.BrandColors),
		AccentColor:  AccentColor(p.BrandColors),
		LogoURL:      p.LogoURL,
		HeroImageURL: p.HeroImageURL,
		ImageURLs:    p.ProductImages,
	}
	if len(p.BrandFonts) > 0 {
		in.FontFamily = p.BrandFonts[0]
	}
	return in
}

// BridgeRaster maps pipeline data into the raster backend's input. Carousel
// cards come from the generation-stage sidecar. Pure function.
func BridgeRaster(def catalog.Definition, cp copygen.GeneratedCopy, p *models.Parameters, ratio string, cards []copygen.CarouselCard) RasterInput {
	w, h := Dims(ratio)
	return RasterInput{
		Width:        w,
		Height:       h,
		Background:   primaryColor(p.BrandColors),
		Accent:       AccentColor(p.BrandColors),
		Headline:     cp.Headline,
		Body:         cp.PrimaryText,
		CTALabel:     ctaLabel(cp.CTA),
		HeroImageURL: p.HeroImageURL,
		Cards:        cards,
	}
}

// BridgeVideo maps pipeline data into the video backend's input. Pure function.
func BridgeVideo(def catalog.Definition, cp copygen.GeneratedCopy, p *models.Parameters, ratio string) VideoInput {
	in := VideoInput{
		Script:          cp.PrimaryText,
		Headline:        cp.Headline,
		AspectRatio:     ratio,
		DurationSeconds: 15,
		ImageURLs:       p.ProductImages,
	}
	persona := p.PrimaryPersona()
	if def.Strategy == models.StrategyProductUnaware && persona.ProblemScene != "" {
		in.SceneHint = persona.ProblemScene
	} else if persona.DreamScene != "" {
		in.SceneHint = persona.DreamScene
	}
	return in
}

const (
	defaultBrandColor  = "#1F2937"
	defaultAccentColor = "#2563EB"
)

func primaryColor(palette []string) string {
	for _, c := range palette {
		if _, ok := parseHex(c); ok {
			return normalizeHex(c)
		}
	}
	return defaultBrandColor
}

// AccentColor picks the first palette entry that is neither near-white nor
// near-black, so accents stay visible on light and dark canvases alike.
func AccentColor(palette []string) string {
	for _, c := range palette[min(1, len(palette)):] {
		rgb, ok := parseHex(c)
		if !ok {
			continue
		}
		lum := relativeLuminance(rgb)
		if lum > 0.92 || lum < 0.08 {
			continue
		}
		return normalizeHex(c)
	}
	return defaultAccentColor
}

type rgb struct{ r, g, b uint8 }

func parseHex(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToUpper(s)
}

func relativeLuminance(c rgb) float64 {
	return (0.2126*float64(c.r) + 0.7152*float64(c.g) + 0.0722*float64(c.b)) / 255
}

func ctaLabel(cta string) string {
	switch cta {
	case models.CTAShopNow:
		return "Shop Now"
	case models.CTASignUp:
		return "Sign Up"
	case models.CTALearnMore:
		return "Learn More"
	case models.CTAGetOffer:
		return "Get Offer"
	case models.CTAWatchMore:
		return "Watch More"
	}
	return "Learn More"
}
