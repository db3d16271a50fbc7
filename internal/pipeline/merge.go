package pipeline

import (
	"github.com/adforge/backend/internal/models"
	"github.com/adforge/backend/internal/scrape"
)

// Defaults supplied when neither the extractor nor the scraper produced a value.
const (
	defaultLanguage     = "en"
	defaultBusinessType = "ecommerce"
	defaultTone         = "confident"
)

// mergeSignals folds raw page signals into the extracted parameters: scraper
// data fills only fields the extractor left empty. Returns a new instance;
// the input is not mutated.
func mergeSignals(p *models.Parameters, sig *scrape.PageSignals) *models.Parameters {
	out := p.Clone()

	if len(out.BrandColors) == 0 {
		for _, role := range []string{"primary", "accent", "background"} {
			out.BrandColors = append(out.BrandColors, sig.ColorsByRole[role]...)
		}
	}
	if len(out.BrandFonts) == 0 {
		out.BrandFonts = append(out.BrandFonts, sig.Fonts...)
	}
	if out.LogoURL == "" {
		out.LogoURL = sig.LogoURL
	}
	if out.HeroImageURL == "" {
		out.HeroImageURL = sig.HeroImageURL
	}
	if len(out.ProductImages) == 0 {
		out.ProductImages = append(out.ProductImages, sig.ImageURLs...)
	}
	if out.Description == "" {
		out.Description = sig.Description
	}

	if out.Language == "" {
		out.Language = defaultLanguage
	}
	if out.BusinessType == "" {
		out.BusinessType = defaultBusinessType
	}
	if out.Tone == "" {
		out.Tone = defaultTone
	}
	out.Normalize()
	return out
}
