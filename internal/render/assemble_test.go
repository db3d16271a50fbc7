package render

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/adforge/backend/internal/models"
)

func TestAssembleDefaults(t *testing.T) {
	bundleID := uuid.New()
	p := &models.Parameters{ProductName: "CloudRest"}
	p.Normalize()
	creatives := []models.GeneratedCreative{{ID: uuid.New(), BundleID: bundleID}}

	b := Assemble(bundleID, "https://cloudrest.example.com", p, creatives)
	if b.ID != bundleID {
		t.Errorf("bundle id mismatch")
	}
	if b.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", b.Status)
	}
	if b.Budget.DailyCents != defaultDailyBudgetCents || b.Budget.Currency != defaultBudgetCurrency {
		t.Errorf("budget = %+v", b.Budget)
	}
	if b.Targeting.AgeMin != defaultAgeMin || b.Targeting.AgeMax != defaultAgeMax {
		t.Errorf("default age window = %d-%d", b.Targeting.AgeMin, b.Targeting.AgeMax)
	}
	if b.Targeting.Gender != "all" {
		t.Errorf("gender = %q, want all", b.Targeting.Gender)
	}
	if len(b.Creatives) != 1 {
		t.Errorf("creatives not attached")
	}
}

func TestDeriveTargetingWidestWindow(t *testing.T) {
	p := &models.Parameters{
		ProductName: "X",
		Personas: []models.Persona{
			{Label: "young professionals", AgeMin: 25, AgeMax: 34, GenderSkew: "female"},
			{Label: "new parents", AgeMin: 30, AgeMax: 45, GenderSkew: "female"},
		},
		TargetCountries: []string{"US", "CA"},
	}
	tg := deriveTargeting(p)
	if tg.AgeMin != 25 || tg.AgeMax != 45 {
		t.Errorf("age window = %d-%d, want 25-45", tg.AgeMin, tg.AgeMax)
	}
	if tg.Gender != "female" {
		t.Errorf("gender = %q, want shared skew", tg.Gender)
	}
	if len(tg.Countries) != 2 {
		t.Errorf("countries = %v", tg.Countries)
	}
	if !strings.Contains(tg.Rationale, "young professionals") || !strings.Contains(tg.Rationale, "new parents") {
		t.Errorf("rationale missing persona labels: %q", tg.Rationale)
	}
}

func TestDeriveTargetingDisagreeingSkew(t *testing.T) {
	p := &models.Parameters{
		ProductName: "X",
		Personas: []models.Persona{
			{Label: "a", AgeMin: 20, AgeMax: 30, GenderSkew: "male"},
			{Label: "b", AgeMin: 20, AgeMax: 30, GenderSkew: "female"},
		},
	}
	if tg := deriveTargeting(p); tg.Gender != "all" {
		t.Fatalf("gender = %q, want all when personas disagree", tg.Gender)
	}

	p.Personas[1].GenderSkew = ""
	if tg := deriveTargeting(p); tg.Gender != "all" {
		t.Fatalf("gender = %q, want all when a persona has no skew", tg.Gender)
	}
}

func TestDeriveTargetingPartialAges(t *testing.T) {
	p := &models.Parameters{
		ProductName: "X",
		Personas:    []models.Persona{{Label: "a", AgeMax: 40}},
	}
	tg := deriveTargeting(p)
	if tg.AgeMin != defaultAgeMin {
		t.Errorf("missing age min should default, got %d", tg.AgeMin)
	}
	if tg.AgeMax != 40 {
		t.Errorf("age max = %d, want 40", tg.AgeMax)
	}
}
