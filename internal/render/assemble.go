package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adforge/backend/internal/models"
)

// Launch defaults applied to every assembled bundle.
const (
	defaultDailyBudgetCents = 2000
	defaultBudgetCurrency   = "USD"
	defaultDurationDays     = 7
	defaultAgeMin           = 18
	defaultAgeMax           = 65
)

// Assemble folds rendered creatives, derived targeting and budget defaults
// into the final bundle record.
func Assemble(bundleID uuid.UUID, sourceURL string, p *models.Parameters, creatives []models.GeneratedCreative) models.CreativeBundle {
	now := time.Now().UTC()
	return models.CreativeBundle{
		ID:          bundleID,
		SourceURL:   sourceURL,
		ProductName: p.ProductName,
		Creatives:   creatives,
		Targeting:   deriveTargeting(p),
		Budget: models.Budget{
			DailyCents:   defaultDailyBudgetCents,
			Currency:     defaultBudgetCurrency,
			DurationDays: defaultDurationDays,
		},
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// deriveTargeting takes the widest age window across personas and keeps a
// gender filter only when every persona agrees on one.
func deriveTargeting(p *models.Parameters) models.Targeting {
	t := models.Targeting{
		AgeMin:    0,
		AgeMax:    0,
		Gender:    "all",
		Countries: p.TargetCountries,
	}
	var labels []string
	for _, persona := range p.Personas {
		if persona.AgeMin > 0 && (t.AgeMin == 0 || persona.AgeMin < t.AgeMin) {
			t.AgeMin = persona.AgeMin
		}
		if persona.AgeMax > t.AgeMax {
			t.AgeMax = persona.AgeMax
		}
		if persona.Label != "" {
			labels = append(labels, persona.Label)
		}
	}
	if t.AgeMin == 0 {
		t.AgeMin = defaultAgeMin
	}
	if t.AgeMax == 0 {
		t.AgeMax = defaultAgeMax
	}
	if skew := sharedGenderSkew(p.Personas); skew != "" {
		t.Gender = skew
	}
	if len(labels) > 0 {
		t.Rationale = fmt.Sprintf("Aimed at %s based on extracted personas.", strings.Join(labels, " and "))
	}
	return t
}

func sharedGenderSkew(personas []models.Persona) string {
	skew := ""
	for _, pe := range personas {
		g := strings.ToLower(strings.TrimSpace(pe.GenderSkew))
		if g == "" || g == "all" {
			return ""
		}
		if skew == "" {
			skew = g
			continue
		}
		if skew != g {
			return ""
		}
	}
	return skew
}
