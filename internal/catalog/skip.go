package catalog

import "github.com/adforge/backend/internal/models"

// Skip-condition names referenced by catalog entries.
const (
	SkipNoSocialProof    = "no_social_proof"
	SkipFewProductImages = "fewer_than_3_product_images"
	SkipFewValueProps    = "fewer_than_3_value_props"
	SkipNoPainsOrDesires = "missing_pains_or_desires"
	SkipNoProblemScene   = "no_problem_scene"
)

// skipPredicates maps a condition name to its check. A true result excludes
// the entry from selection.
var skipPredicates = map[string]func(*models.Parameters) bool{
	SkipNoSocialProof: func(p *models.Parameters) bool {
		return !p.HasSocialProof()
	},
	SkipFewProductImages: func(p *models.Parameters) bool {
		return !p.HasProductImages(3)
	},
	SkipFewValueProps: func(p *models.Parameters) bool {
		return !p.HasValueProps(3)
	},
	SkipNoPainsOrDesires: func(p *models.Parameters) bool {
		return !p.HasPainsAndDesires()
	},
	SkipNoProblemScene: func(p *models.Parameters) bool {
		return !p.HasProblemScene()
	},
}

// SkipHolds evaluates the named skip condition against the parameters.
// Unknown names never hold, so a misspelled condition widens selection
// instead of silently dropping a type.
func SkipHolds(name string, p *models.Parameters) bool {
	if name == "" {
		return false
	}
	pred, ok := skipPredicates[name]
	if !ok {
		return false
	}
	return pred(p)
}

// KnownSkipCondition reports whether name is a registered predicate; used by
// startup validation.
func KnownSkipCondition(name string) bool {
	_, ok := skipPredicates[name]
	return ok
}
