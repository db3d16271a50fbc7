package models

import (
	"errors"
	"strings"
)

// Persona describes one audience segment the creatives are aimed at.
type Persona struct {
	Label          string   `json:"label"`
	AgeMin         int      `json:"age_min"`
	AgeMax         int      `json:"age_max"`
	GenderSkew     string   `json:"gender_skew,omitempty"` // "male" | "female" | "all"
	Psychographics []string `json:"psychographics,omitempty"`
	Pains          []string `json:"pains,omitempty"`   // overrides of Parameters.CustomerPains
	Desires        []string `json:"desires,omitempty"` // overrides of Parameters.CustomerDesires
	ProblemScene   string   `json:"problem_scene,omitempty"`
	DreamScene     string   `json:"dream_scene,omitempty"`
}

// Testimonial is one piece of customer social proof.
type Testimonial struct {
	Author string `json:"author,omitempty"`
	Quote  string `json:"quote"`
}

// Parameters is the validated, immutable description of one product/offer.
// It is built once per pipeline run and never mutated in place; transformations
// (e.g. translation) return a new instance.
type Parameters struct {
	// Identity
	ProductName string `json:"product_name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`

	// Brand
	BrandName   string   `json:"brand_name,omitempty"`
	BrandColors []string `json:"brand_colors,omitempty"` // hex strings, primary first
	BrandFonts  []string `json:"brand_fonts,omitempty"`
	LogoURL     string   `json:"logo_url,omitempty"`

	// Imagery
	HeroImageURL  string   `json:"hero_image_url,omitempty"`
	ProductImages []string `json:"product_images,omitempty"`

	// Messaging
	KeyBenefit        string   `json:"key_benefit,omitempty"`
	KeyDifferentiator string   `json:"key_differentiator,omitempty"`
	ValueProps        []string `json:"value_props,omitempty"`      // 3-5 expected
	CustomerPains     []string `json:"customer_pains,omitempty"`   // 3-5 expected
	CustomerDesires   []string `json:"customer_desires,omitempty"` // 2-3 expected
	Objections        []string `json:"objections,omitempty"`
	UrgencyHooks      []string `json:"urgency_hooks,omitempty"`

	// Social proof
	SocialProof  string        `json:"social_proof,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`

	// Audience
	Personas []Persona `json:"personas,omitempty"` // 1-2 expected

	// Context
	Tone            string   `json:"tone,omitempty"`
	BusinessType    string   `json:"business_type,omitempty"` // "ecommerce" | "saas" | "subscription" | "service" | ...
	Language        string   `json:"language,omitempty"`
	TargetCountries []string `json:"target_countries,omitempty"`
}

// ErrMissingProductName reports parameters with no usable product name.
var ErrMissingProductName = errors.New("parameters: product name is required")

// Validate checks the minimum shape every downstream stage relies on and
// normalizes list fields so they are never nil.
func (p *Parameters) Validate() error {
	if strings.TrimSpace(p.ProductName) == "" {
		return ErrMissingProductName
	}
	p.Normalize()
	return nil
}

// Normalize replaces nil list fields with empty slices so length checks never
// need a nil guard, and trims surrounding whitespace on identity fields.
func (p *Parameters) Normalize() {
	p.ProductName = strings.TrimSpace(p.ProductName)
	if p.BrandColors == nil {
		p.BrandColors = []string{}
	}
	if p.BrandFonts == nil {
		p.BrandFonts = []string{}
	}
	if p.ProductImages == nil {
		p.ProductImages = []string{}
	}
	if p.ValueProps == nil {
		p.ValueProps = []string{}
	}
	if p.CustomerPains == nil {
		p.CustomerPains = []string{}
	}
	if p.CustomerDesires == nil {
		p.CustomerDesires = []string{}
	}
	if p.Objections == nil {
		p.Objections = []string{}
	}
	if p.UrgencyHooks == nil {
		p.UrgencyHooks = []string{}
	}
	if p.Testimonials == nil {
		p.Testimonials = []Testimonial{}
	}
	if p.Personas == nil {
		p.Personas = []Persona{}
	}
	if p.TargetCountries == nil {
		p.TargetCountries = []string{}
	}
}

// HasValueProps reports whether at least n value propositions are present.
func (p *Parameters) HasValueProps(n int) bool {
	return len(p.ValueProps) >= n
}

// HasSocialProof reports whether a proof statement or at least one testimonial exists.
func (p *Parameters) HasSocialProof() bool {
	return strings.TrimSpace(p.SocialProof) != "" || len(p.Testimonials) > 0
}

// HasProductImages reports whether at least n product image references are present.
func (p *Parameters) HasProductImages(n int) bool {
	return len(p.ProductImages) >= n
}

// HasPainsAndDesires reports whether both pain and desire lists are non-empty.
func (p *Parameters) HasPainsAndDesires() bool {
	return len(p.CustomerPains) > 0 && len(p.CustomerDesires) > 0
}

// HasProblemScene reports whether any persona carries a problem scene description.
func (p *Parameters) HasProblemScene() bool {
	for _, persona := range p.Personas {
		if strings.TrimSpace(persona.ProblemScene) != "" {
			return true
		}
	}
	return false
}

// PrimaryPersona returns the first persona, or a zero value when none exist.
func (p *Parameters) PrimaryPersona() Persona {
	if len(p.Personas) > 0 {
		return p.Personas[0]
	}
	return Persona{}
}

// Clone returns a deep copy; translation and other transformations mutate the
// copy and leave the original untouched.
func (p *Parameters) Clone() *Parameters {
	out := *p
	out.BrandColors = append([]string{}, p.BrandColors...)
	out.BrandFonts = append([]string{}, p.BrandFonts...)
	out.ProductImages = append([]string{}, p.ProductImages...)
	out.ValueProps = append([]string{}, p.ValueProps...)
	out.CustomerPains = append([]string{}, p.CustomerPains...)
	out.CustomerDesires = append([]string{}, p.CustomerDesires...)
	out.Objections = append([]string{}, p.Objections...)
	out.UrgencyHooks = append([]string{}, p.UrgencyHooks...)
	out.Testimonials = append([]Testimonial{}, p.Testimonials...)
	out.Personas = make([]Persona, len(p.Personas))
	for i, persona := range p.Personas {
		cp := persona
		cp.Psychographics = append([]string{}, persona.Psychographics...)
		cp.Pains = append([]string{}, persona.Pains...)
		cp.Desires = append([]string{}, persona.Desires...)
		out.Personas[i] = cp
	}
	out.TargetCountries = append([]string{}, p.TargetCountries...)
	return &out
}

// Field resolves a template variable name to its raw value. The second return
// is false when the name is unknown. List fields resolve to []string; persona
// fields resolve through the primary persona.
func (p *Parameters) Field(name string) (any, bool) {
	switch name {
	case "product_name":
		return p.ProductName, true
	case "category":
		return p.Category, true
	case "description":
		return p.Description, true
	case "price":
		return p.Price, true
	case "brand_name":
		return p.BrandName, true
	case "key_benefit":
		return p.KeyBenefit, true
	case "key_differentiator":
		return p.KeyDifferentiator, true
	case "value_props":
		return p.ValueProps, true
	case "customer_pains":
		return p.CustomerPains, true
	case "customer_desires":
		return p.CustomerDesires, true
	case "objections":
		return p.Objections, true
	case "urgency_hooks":
		return p.UrgencyHooks, true
	case "social_proof":
		return p.SocialProof, true
	case "testimonial":
		if len(p.Testimonials) == 0 {
			return "", true
		}
		return p.Testimonials[0].Quote, true
	case "persona":
		return p.PrimaryPersona(), true
	case "tone":
		return p.Tone, true
	case "business_type":
		return p.BusinessType, true
	case "language":
		return p.Language, true
	}
	return nil, false
}

// Field resolves persona sub-fields for dotted template paths ({persona.label}).
func (pe Persona) Field(name string) (any, bool) {
	switch name {
	case "label":
		return pe.Label, true
	case "problem_scene":
		return pe.ProblemScene, true
	case "dream_scene":
		return pe.DreamScene, true
	case "pains":
		return pe.Pains, true
	case "desires":
		return pe.Desires, true
	}
	return nil, false
}
