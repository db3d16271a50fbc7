package catalog

import (
	"strings"
	"testing"

	"github.com/adforge/backend/internal/models"
)

func TestDefaultCatalogIntegrity(t *testing.T) {
	cat := Default()
	if cat.Len() != 8 {
		t.Fatalf("expected 8 catalog entries, got %d", cat.Len())
	}

	for _, d := range cat.All() {
		if d.ID == "" {
			t.Fatal("definition with empty ID")
		}
		if d.Strategy != models.StrategyProductAware && d.Strategy != models.StrategyProductUnaware {
			t.Errorf("%s: unknown strategy %q", d.ID, d.Strategy)
		}
		if len(d.AspectRatios) == 0 {
			t.Errorf("%s: no aspect ratios", d.ID)
		}
		if d.SkipCondition != "" && !KnownSkipCondition(d.SkipCondition) {
			t.Errorf("%s: unknown skip condition %q", d.ID, d.SkipCondition)
		}
		if d.Copy == nil {
			t.Errorf("%s: no copy template", d.ID)
		}
	}
}

func TestByIDAndByStrategy(t *testing.T) {
	cat := Default()
	if cat.ByID(TypeProblemStatement) == nil {
		t.Fatal("problem_statement missing")
	}
	if cat.ByID("nope") != nil {
		t.Fatal("unknown id should return nil")
	}

	aware := cat.ByStrategy(models.StrategyProductAware)
	unaware := cat.ByStrategy(models.StrategyProductUnaware)
	if len(aware)+len(unaware) != cat.Len() {
		t.Fatalf("strategy split %d+%d != %d", len(aware), len(unaware), cat.Len())
	}
	if aware[0].ID != TypeProductShowcase {
		t.Errorf("expected product_showcase first in aware pass, got %s", aware[0].ID)
	}
	if unaware[0].ID != TypeProblemStatement {
		t.Errorf("expected problem_statement first in unaware pass, got %s", unaware[0].ID)
	}
}

func TestProblemStatementHasNoPrerequisites(t *testing.T) {
	d := Default().ByID(TypeProblemStatement)
	if len(d.RequiredParams) != 0 {
		t.Fatalf("baseline type must have no required params, got %v", d.RequiredParams)
	}
	if d.SkipCondition != "" {
		t.Fatalf("baseline type must have no skip condition, got %q", d.SkipCondition)
	}
	if len(d.Hooks["opener"]) == 0 {
		t.Fatal("expected an opener hook pool")
	}
}

func TestSkipHolds(t *testing.T) {
	rich := &models.Parameters{
		ProductName:     "X",
		ValueProps:      []string{"a", "b", "c"},
		ProductImages:   []string{"1", "2", "3"},
		SocialProof:     "10k reviews",
		CustomerPains:   []string{"p"},
		CustomerDesires: []string{"d"},
		Personas:        []models.Persona{{ProblemScene: "scene"}},
	}
	for name := range skipPredicates {
		if SkipHolds(name, rich) {
			t.Errorf("condition %q should not hold for rich parameters", name)
		}
	}

	poor := &models.Parameters{ProductName: "X"}
	for name := range skipPredicates {
		if !SkipHolds(name, poor) {
			t.Errorf("condition %q should hold for bare parameters", name)
		}
	}

	if SkipHolds("typo_condition", poor) {
		t.Error("unknown condition name must never hold")
	}
	if SkipHolds("", poor) {
		t.Error("empty condition name must never hold")
	}
}

func TestTemplatesNameOnlyKnownFields(t *testing.T) {
	// Every placeholder variable in the catalog must resolve against Parameters
	// (or be a hook reference), otherwise copy would silently lose text.
	p := &models.Parameters{ProductName: "X"}
	p.Normalize()
	for _, d := range Default().All() {
		if d.Copy == nil {
			continue
		}
		for _, pattern := range []string{d.Copy.PrimaryText, d.Copy.Headline, d.Copy.Description} {
			for _, name := range placeholderNames(pattern) {
				if name == "hook" {
					continue
				}
				if _, ok := p.Field(name); !ok {
					t.Errorf("%s: template references unknown field %q", d.ID, name)
				}
			}
		}
	}
}

func placeholderNames(pattern string) []string {
	var names []string
	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			return names
		}
		close := strings.IndexByte(pattern[open:], '}')
		if close < 0 {
			return names
		}
		inner := pattern[open+1 : open+close]
		inner = strings.SplitN(inner, ".", 2)[0]
		inner = strings.SplitN(inner, "[", 2)[0]
		names = append(names, inner)
		pattern = pattern[open+close+1:]
	}
}
