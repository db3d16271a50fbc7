package models

import (
	"time"

	"github.com/google/uuid"
)

// Strategy tags whether a creative targets audiences already aware of the product.
type Strategy string

const (
	StrategyProductAware   Strategy = "product_aware"
	StrategyProductUnaware Strategy = "product_unaware"
)

// Format tags the output kind of a creative.
type Format string

const (
	FormatStatic   Format = "static"
	FormatVideo    Format = "video"
	FormatCarousel Format = "carousel"
)

// CTA categories used by copy templates; platform mapping happens at publish time.
const (
	CTAShopNow   = "shop_now"
	CTASignUp    = "sign_up"
	CTALearnMore = "learn_more"
	CTAGetOffer  = "get_offer"
	CTAWatchMore = "watch_more"
)

// GeneratedCreative is one rendered (or render-pending) ad variant:
// one per selected type x aspect ratio. Asset fields are filled in after
// dispatch; everything else is immutable once generated.
type GeneratedCreative struct {
	ID          uuid.UUID `json:"id"`
	BundleID    uuid.UUID `json:"bundle_id"`
	TypeID      string    `json:"type_id"`
	Strategy    Strategy  `json:"strategy"`
	Format      Format    `json:"format"`
	AspectRatio string    `json:"aspect_ratio"`

	PrimaryText string `json:"primary_text"`
	Headline    string `json:"headline"`
	Description string `json:"description,omitempty"`
	CTA         string `json:"cta"`

	AssetURL   string        `json:"asset_url,omitempty"`
	RenderTime time.Duration `json:"render_time_ms,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Targeting is the audience specification attached to a bundle.
type Targeting struct {
	AgeMin    int      `json:"age_min"`
	AgeMax    int      `json:"age_max"`
	Gender    string   `json:"gender"` // "male" | "female" | "all"
	Countries []string `json:"countries,omitempty"`
	Rationale string   `json:"rationale,omitempty"`
}

// Budget holds launch defaults; amounts are in minor currency units.
type Budget struct {
	DailyCents   int64  `json:"daily_cents"`
	Currency     string `json:"currency"`
	DurationDays int    `json:"duration_days"`
}

// BundleStatus is the forward-only lifecycle of a creative bundle.
type BundleStatus string

const (
	StatusGenerating BundleStatus = "generating"
	StatusDraft      BundleStatus = "draft"
	StatusReady      BundleStatus = "ready"
	StatusLaunched   BundleStatus = "launched"
	StatusFailed     BundleStatus = "failed"
)

// bundleTransitions encodes the forward-only state machine; failed and
// launched are terminal.
var bundleTransitions = map[BundleStatus][]BundleStatus{
	StatusGenerating: {StatusDraft, StatusReady, StatusFailed},
	StatusDraft:      {StatusReady, StatusFailed},
	StatusReady:      {StatusLaunched, StatusFailed},
}

// CanTransition reports whether moving from -> to is a legal status change.
func CanTransition(from, to BundleStatus) bool {
	for _, next := range bundleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreativeBundle is the pipeline's final output: the generated creative set
// plus targeting and budget defaults.
type CreativeBundle struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id,omitempty"`
	SourceURL   string              `json:"source_url,omitempty"`
	ProductName string              `json:"product_name"`
	Creatives   []GeneratedCreative `json:"creatives"`
	Targeting   Targeting           `json:"targeting"`
	Budget      Budget              `json:"budget"`
	Status      BundleStatus        `json:"status"`
	FailReason  string              `json:"fail_reason,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
