// Package catalog holds the static ad-type registry: which creative kinds
// exist, what parameter data each needs, and how its copy is assembled.
// Entries are product-design data; all decision logic lives in the selector.
package catalog

import "github.com/adforge/backend/internal/models"

// Well-known type IDs referenced across the pipeline.
const (
	TypeProductShowcase      = "product_showcase"
	TypeBenefitStack         = "benefit_stack"
	TypeSocialProofSpotlight = "social_proof_spotlight"
	TypeProductDemoVideo     = "product_demo_video"
	TypeFeatureCarousel      = "feature_carousel"
	TypeProblemStatement     = "problem_statement"
	TypePainAgitate          = "pain_agitate"
	TypeLifestyleSceneVideo  = "lifestyle_scene_video"
)

// Default returns the production catalog. Declaration order is selection order
// within each strategy pass.
func Default() *Catalog {
	return New([]Definition{
		{
			ID:             TypeProductShowcase,
			Strategy:       models.StrategyProductAware,
			Format:         models.FormatStatic,
			AspectRatios:   []string{"1:1", "9:16"},
			RequiredParams: []string{"product_name"},
			Copy: &CopyTemplate{
				PrimaryText: "{key_benefit}. {product_name} gives you {value_props[0]} without the usual hassle. Try it today.",
				Headline:    "{product_name}",
				Description: "{key_differentiator}",
				DefaultCTA:  models.CTAShopNow,
				Fallbacks: map[string]string{
					"key_benefit":        "Made to work as hard as you do",
					"key_differentiator": "See the difference",
				},
			},
		},
		{
			ID:             TypeBenefitStack,
			Strategy:       models.StrategyProductAware,
			Format:         models.FormatStatic,
			AspectRatios:   []string{"1:1", "4:5"},
			RequiredParams: []string{"product_name", "value_props"},
			SkipCondition:  SkipFewValueProps,
			Copy: &CopyTemplate{
				PrimaryText: "Why people switch to {product_name}: {value_props[0]}. {value_props[1]}. {value_props[2]}.",
				Headline:    "{product_name} does more",
				DefaultCTA:  models.CTAShopNow,
			},
		},
		{
			ID:             TypeSocialProofSpotlight,
			Strategy:       models.StrategyProductAware,
			Format:         models.FormatStatic,
			AspectRatios:   []string{"1:1"},
			RequiredParams: []string{"product_name"},
			SkipCondition:  SkipNoSocialProof,
			Copy: &CopyTemplate{
				PrimaryText: "\"{testimonial}\" {social_proof}. See why people stay with {product_name}.",
				Headline:    "Loved by customers",
				Description: "{social_proof}",
				DefaultCTA:  models.CTAShopNow,
				Fallbacks: map[string]string{
					"social_proof": "Join thousands of happy customers",
				},
			},
		},
		{
			ID:             TypeProductDemoVideo,
			Strategy:       models.StrategyProductAware,
			Format:         models.FormatVideo,
			AspectRatios:   []string{"9:16", "16:9"},
			RequiredParams: []string{"product_name", "product_images"},
			SkipCondition:  SkipFewProductImages,
			Copy: &CopyTemplate{
				PrimaryText: "See {product_name} in action. {key_benefit}.",
				Headline:    "Watch the demo",
				DefaultCTA:  models.CTAWatchMore,
				Fallbacks: map[string]string{
					"key_benefit": "Built for everyday use",
				},
			},
		},
		{
			ID:             TypeFeatureCarousel,
			Strategy:       models.StrategyProductAware,
			Format:         models.FormatCarousel,
			AspectRatios:   []string{"1:1"},
			RequiredParams: []string{"product_name", "value_props"},
			SkipCondition:  SkipFewProductImages,
			Copy: &CopyTemplate{
				PrimaryText: "Swipe through everything {product_name} can do for you.",
				Headline:    "{product_name}, up close",
				DefaultCTA:  models.CTAShopNow,
			},
		},
		{
			ID:           TypeProblemStatement,
			Strategy:     models.StrategyProductUnaware,
			Format:       models.FormatStatic,
			AspectRatios: []string{"1:1", "9:16"},
			// No prerequisites: this type must stay eligible for every run.
			RequiredParams: nil,
			Copy: &CopyTemplate{
				PrimaryText: "{hook.opener} {customer_pains[0]}? There's a better way: {product_name}.",
				Headline:    "Sound familiar?",
				DefaultCTA:  models.CTALearnMore,
				Fallbacks: map[string]string{
					"customer_pains": "tired of settling for less",
					"product_name":   "our latest release",
				},
			},
			Hooks: map[string][]string{
				"opener": {
					"Be honest.",
					"Let's talk about it.",
					"You know the feeling.",
				},
			},
		},
		{
			ID:             TypePainAgitate,
			Strategy:       models.StrategyProductUnaware,
			Format:         models.FormatStatic,
			AspectRatios:   []string{"1:1", "4:5"},
			RequiredParams: []string{"customer_pains", "customer_desires"},
			SkipCondition:  SkipNoPainsOrDesires,
			Copy: &CopyTemplate{
				PrimaryText: "{customer_pains[0]}. {customer_pains[1]}. Imagine instead: {customer_desires[0]}. {product_name} gets you there.",
				Headline:    "Stop settling",
				DefaultCTA:  models.CTAShopNow,
			},
		},
		{
			ID:             TypeLifestyleSceneVideo,
			Strategy:       models.StrategyProductUnaware,
			Format:         models.FormatVideo,
			AspectRatios:   []string{"9:16"},
			RequiredParams: []string{"product_name", "persona.problem_scene"},
			Copy: &CopyTemplate{
				PrimaryText: "{persona.problem_scene} It doesn't have to be this way. Meet {product_name}.",
				Headline:    "A better day starts here",
				DefaultCTA:  models.CTALearnMore,
			},
		},
	})
}
