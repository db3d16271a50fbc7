package catalog

import "github.com/adforge/backend/internal/models"

// CopyTemplate declares how ad copy is assembled for one ad type. Patterns may
// contain {field}, {field[index]} and {field.subfield} placeholders resolving
// against the run's Parameters.
type CopyTemplate struct {
	PrimaryText string
	Headline    string
	Description string
	DefaultCTA  string
	// Fallbacks maps a variable name to the literal inserted when the field is
	// missing; unresolved placeholders without a fallback are stripped.
	Fallbacks map[string]string
}

// Definition is one static catalog entry describing a producible creative kind.
type Definition struct {
	ID           string
	Strategy     models.Strategy
	Format       models.Format
	AspectRatios []string
	// RequiredParams are dotted parameter paths that must resolve to non-empty
	// values for the type to be eligible.
	RequiredParams []string
	// SkipCondition names a predicate (see skip.go); when it holds, the type is
	// excluded regardless of RequiredParams.
	SkipCondition string
	Copy          *CopyTemplate
	// Hooks are opener-text pools keyed by variant name; the copy generator
	// picks one entry per pool at generation time.
	Hooks map[string][]string
}

// Catalog is a read-only registry of ad-type definitions, iterable in
// declaration order. Populated once at process start; no locking needed.
type Catalog struct {
	order []Definition
	byID  map[string]*Definition
}

// New builds a catalog from definitions, preserving declaration order.
func New(defs []Definition) *Catalog {
	c := &Catalog{order: defs, byID: make(map[string]*Definition, len(defs))}
	for i := range c.order {
		c.byID[c.order[i].ID] = &c.order[i]
	}
	return c
}

// ByID returns the definition for id, or nil when unknown.
func (c *Catalog) ByID(id string) *Definition {
	return c.byID[id]
}

// All returns the definitions in declaration order.
func (c *Catalog) All() []Definition {
	return c.order
}

// ByStrategy returns definitions with the given strategy tag, in declaration order.
func (c *Catalog) ByStrategy(s models.Strategy) []Definition {
	var out []Definition
	for _, d := range c.order {
		if d.Strategy == s {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.order) }
