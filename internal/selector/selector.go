// Package selector decides which catalog ad types can be produced for one
// Parameters instance. Selection is a pure, deterministic filter: same catalog
// plus same parameters always yields the same ordered list.
package selector

import (
	"go.uber.org/zap"

	"github.com/adforge/backend/internal/catalog"
	"github.com/adforge/backend/internal/models"
)

// Selector evaluates catalog eligibility for a parameter set.
type Selector struct {
	cat    *catalog.Catalog
	logger *zap.Logger
}

// New creates a selector over the given catalog.
func New(cat *catalog.Catalog, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{cat: cat, logger: logger}
}

// Select returns the ad types to generate, product-aware entries first, each
// pass in catalog declaration order. The problem-statement type is guaranteed
// to appear so the unaware pass never comes back empty.
func (s *Selector) Select(p *models.Parameters) []catalog.Definition {
	var selected []catalog.Definition
	for _, d := range s.cat.ByStrategy(models.StrategyProductAware) {
		if s.eligible(d, p) {
			selected = append(selected, d)
		}
	}

	unawareStart := len(selected)
	for _, d := range s.cat.ByStrategy(models.StrategyProductUnaware) {
		if s.eligible(d, p) {
			selected = append(selected, d)
		}
	}
	if len(selected) == unawareStart {
		// The no-prerequisite baseline should have matched; if catalog data
		// ever regresses, force it back in rather than shipping zero unaware
		// creatives.
		if d := s.cat.ByID(catalog.TypeProblemStatement); d != nil {
			selected = append(selected, *d)
		}
	}
	return selected
}

// eligible checks required parameter paths and the skip condition. A missing
// or empty path is routine filtering, not an error.
func (s *Selector) eligible(d catalog.Definition, p *models.Parameters) bool {
	for _, path := range d.RequiredParams {
		if !p.PathPresent(path) {
			s.logger.Debug("ad type skipped: missing required param",
				zap.String("type_id", d.ID), zap.String("param", path))
			return false
		}
	}
	if catalog.SkipHolds(d.SkipCondition, p) {
		s.logger.Debug("ad type skipped: condition holds",
			zap.String("type_id", d.ID), zap.String("condition", d.SkipCondition))
		return false
	}
	return true
}

// SelectedIDs is a convenience for logging and tests.
func SelectedIDs(defs []catalog.Definition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}
