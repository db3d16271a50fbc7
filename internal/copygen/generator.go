package copygen

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/models"
)

// GeneratedCopy is the resolved copy for one creative: no unresolved
// placeholders, all fields within their hard length limits.
type GeneratedCopy struct {
	PrimaryText string            `json:"primary_text"`
	Headline    string            `json:"headline"`
	Description string            `json:"description,omitempty"`
	CTA         string            `json:"cta"`
	Hooks       map[string]string `json:"hooks,omitempty"` // picked hook per pool
}

// HookSource picks an index into a hook pool of size n. Production uses a
// seeded rand; tests inject a fixed source so outputs stay reproducible.
type HookSource interface {
	Pick(n int) int
}

// RandHookSource is the production HookSource backed by math/rand.
type RandHookSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandHookSource creates a seeded hook source.
func NewRandHookSource(seed int64) *RandHookSource {
	return &RandHookSource{r: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniform index in [0, n).
func (s *RandHookSource) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Generator produces copy for selected ad types.
type Generator struct {
	hooks  HookSource
	logger *zap.Logger
}

// NewGenerator creates a copy generator.
func NewGenerator(hooks HookSource, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{hooks: hooks, logger: logger}
}

// Generate builds the copy for one definition. Types without a copy template
// get an empty primary text and the product name as headline so downstream
// bridges always have something to render.
func (g *Generator) Generate(def catalog.Definition, p *models.Parameters) GeneratedCopy {
	picked := g.pickHooks(def.Hooks)
	if def.Copy == nil {
		return GeneratedCopy{
			Headline: truncate(p.ProductName, HeadlineMaxLen),
			CTA:      remapCTA(models.CTALearnMore, p.BusinessType),
			Hooks:    picked,
		}
	}
	tpl := def.Copy

	out := GeneratedCopy{
		PrimaryText: RenderPattern(tpl.PrimaryText, p, picked, tpl.Fallbacks),
		Headline:    RenderPattern(tpl.Headline, p, picked, tpl.Fallbacks),
		CTA:         remapCTA(tpl.DefaultCTA, p.BusinessType),
		Hooks:       picked,
	}
	if tpl.Description != "" {
		out.Description = RenderPattern(tpl.Description, p, picked, tpl.Fallbacks)
	}

	// Length enforcement, headline first.
	out.Headline = truncate(out.Headline, HeadlineMaxLen)
	out.Description = truncate(out.Description, DescriptionMaxLen)
	if over := len([]rune(out.PrimaryText)); over > PrimaryTextOptimalLen {
		g.logger.Debug("primary text over optimal length",
			zap.String("type_id", def.ID), zap.Int("len", over))
	}
	out.PrimaryText = truncate(out.PrimaryText, PrimaryTextMaxLen)
	return out
}

// pickHooks chooses one hook per pool. Pools are visited in sorted-name order
// so a fixed HookSource yields a fixed result.
func (g *Generator) pickHooks(pools map[string][]string) map[string]string {
	if len(pools) == 0 {
		return nil
	}
	names := make([]string, 0, len(pools))
	for name := range pools {
		names = append(names, name)
	}
	sort.Strings(names)
	picked := make(map[string]string, len(names))
	for _, name := range names {
		pool := pools[name]
		if len(pool) == 0 {
			continue
		}
		picked[name] = pool[g.hooks.Pick(len(pool))]
	}
	return picked
}

// remapCTA adjusts the generic shop category to the business model: sign-up
// for subscription/software products, learn-more for service businesses.
func remapCTA(cta, businessType string) string {
	if cta != models.CTAShopNow {
		return cta
	}
	switch strings.ToLower(strings.TrimSpace(businessType)) {
	case "saas", "software", "subscription":
		return models.CTASignUp
	case "service":
		return models.CTALearnMore
	}
	return cta
}

// CarouselCard is one card of a carousel creative.
type CarouselCard struct {
	Heading  string `json:"heading"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url,omitempty"`
}

// Sidecar carries auxiliary copy between generation and render dispatch for
// specialized types. It is keyed by the creative's own ID, threaded through
// the pipeline call explicitly, and never shared across runs.
type Sidecar map[uuid.UUID][]CarouselCard

// CarouselCards builds one card per value proposition, pairing each with a
// product image while images last.
func (g *Generator) CarouselCards(p *models.Parameters) []CarouselCard {
	cards := make([]CarouselCard, 0, len(p.ValueProps))
	for i, vp := range p.ValueProps {
		card := CarouselCard{
			Heading: truncate(strings.TrimRight(vp, ".!?;, "), HeadlineMaxLen),
			Body:    truncate(p.ProductName, DescriptionMaxLen),
		}
		if i < len(p.ProductImages) {
			card.ImageURL = p.ProductImages[i]
		}
		cards = append(cards, card)
	}
	return cards
}
