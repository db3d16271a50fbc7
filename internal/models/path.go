package models

import "strings"

// PathPresent reports whether a dotted parameter path resolves to a present,
// non-empty value. Used by the selector's required-param check; a missing or
// empty value is routine filtering, never an error.
func (p *Parameters) PathPresent(path string) bool {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := p.Field(head)
	if !ok {
		return false
	}
	if nested {
		persona, ok := v.(Persona)
		if !ok {
			return false
		}
		v, ok = persona.Field(rest)
		if !ok {
			return false
		}
	}
	return valuePresent(v)
}

func valuePresent(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []string:
		return len(t) > 0
	case Persona:
		return t.Label != "" || t.ProblemScene != "" || t.DreamScene != ""
	}
	return false
}
