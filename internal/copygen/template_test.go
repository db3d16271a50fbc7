package copygen

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/adforge/backend/internal/models"
)

func TestRenderPatternSplicesListFragment(t *testing.T) {
	p := &models.Parameters{
		ProductName: "CloudRest",
		ValueProps:  []string{"Cooling gel."},
	}
	got := RenderPattern("{value_props[0]} — try {product_name}", p, nil, nil)
	want := "cooling gel — try CloudRest"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderPatternKeepsCaseAfterSentenceEnd(t *testing.T) {
	p := &models.Parameters{
		ProductName: "CloudRest",
		ValueProps:  []string{"Cooling gel."},
	}
	got := RenderPattern("Sleep better. {value_props[0]} included.", p, nil, nil)
	want := "Sleep better. Cooling gel included."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderPatternFallbacks(t *testing.T) {
	p := &models.Parameters{ProductName: "CloudRest"}
	fallbacks := map[string]string{"key_benefit": "Made to last"}

	got := RenderPattern("{key_benefit}. Meet {product_name}.", p, nil, fallbacks)
	want := "Made to last. Meet CloudRest."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderPatternStripsUnresolved(t *testing.T) {
	p := &models.Parameters{ProductName: "CloudRest"}
	got := RenderPattern("Try {product_name} {key_differentiator} today", p, nil, nil)
	want := "Try CloudRest today"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if strings.ContainsAny(got, "{}") {
		t.Fatalf("output leaks placeholder braces: %q", got)
	}
}

func TestRenderPatternOutOfRangeIndexUsesFallback(t *testing.T) {
	p := &models.Parameters{
		ProductName:   "CloudRest",
		CustomerPains: []string{"only one"},
	}
	fallbacks := map[string]string{"customer_pains": "tired of settling"}
	got := RenderPattern("{customer_pains[5]}?", p, nil, fallbacks)
	want := "tired of settling?"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderPatternListWithoutIndexJoins(t *testing.T) {
	p := &models.Parameters{ValueProps: []string{"soft", "cool", "durable"}}
	got := RenderPattern("{value_props}", p, nil, nil)
	if got != "soft, cool, durable" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderPatternHooks(t *testing.T) {
	p := &models.Parameters{ProductName: "CloudRest"}
	hooks := map[string]string{"opener": "Be honest."}
	got := RenderPattern("{hook.opener} You deserve {product_name}.", p, hooks, nil)
	want := "Be honest. You deserve CloudRest."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Unknown pool is stripped, not leaked.
	got = RenderPattern("{hook.missing} Try {product_name}.", p, hooks, nil)
	want = "Try CloudRest."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderPatternPersonaSubfield(t *testing.T) {
	p := &models.Parameters{
		ProductName: "CloudRest",
		Personas:    []models.Persona{{ProblemScene: "You're staring at the ceiling at 3am."}},
	}
	got := RenderPattern("{persona.problem_scene} Meet {product_name}.", p, nil, nil)
	want := "You're staring at the ceiling at 3am. Meet CloudRest."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanupCollapsesPunctuationRuns(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Sound familiar.?", "Sound familiar?"},
		{"Great.. Really", "Great. Really"},
		{"a  b\tc", "a b c"},
		{"  padded  ", "padded"},
		{"end!?", "end?"},
	}
	for _, tc := range cases {
		if got := cleanup(tc.in); got != tc.want {
			t.Errorf("cleanup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("CloudRest mattress quality sleep ", 2) // 66 chars
	got := truncate(long, HeadlineMaxLen)
	if n := utf8.RuneCountInString(got); n != HeadlineMaxLen {
		t.Fatalf("truncated length %d, want %d", n, HeadlineMaxLen)
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}

	short := "fits"
	if truncate(short, HeadlineMaxLen) != short {
		t.Fatal("short strings must pass through unchanged")
	}

	// Multibyte safety: limit counts runes, not bytes.
	uni := strings.Repeat("é", 50)
	got = truncate(uni, 10)
	if n := utf8.RuneCountInString(got); n != 10 {
		t.Fatalf("unicode truncation length %d, want 10", n)
	}
}

func TestParseToken(t *testing.T) {
	tok, ok := parseToken("value_props[2]")
	if !ok || tok.name != "value_props" || tok.index != 2 || tok.sub != "" {
		t.Fatalf("parse value_props[2] = %+v, %v", tok, ok)
	}
	tok, ok = parseToken("persona.label")
	if !ok || tok.name != "persona" || tok.sub != "label" || tok.index != -1 {
		t.Fatalf("parse persona.label = %+v, %v", tok, ok)
	}
	if _, ok := parseToken("value_props[x]"); ok {
		t.Fatal("non-numeric index should not parse")
	}
	if _, ok := parseToken(""); ok {
		t.Fatal("empty span should not parse")
	}
}
