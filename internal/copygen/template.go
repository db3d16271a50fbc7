// Package copygen turns a selected ad-type definition plus a parameter set
// into constrained ad copy: placeholder resolution, fallback literals,
// punctuation cleanup and hard length limits.
package copygen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/adforge/backend/internal/models"
)

// Hard and advisory length limits for generated copy fields.
const (
	HeadlineMaxLen        = 40
	DescriptionMaxLen     = 30
	PrimaryTextMaxLen     = 500
	PrimaryTextOptimalLen = 125
)

const ellipsis = "…"

// token is one parsed {name}, {name[k]} or {name.sub} placeholder.
type token struct {
	raw   string // full span including braces
	name  string
	index int    // -1 when absent
	sub   string
}

// parseToken parses the inside of a {...} span. Returns ok=false for spans
// that do not look like a placeholder (left untouched, stripped later).
func parseToken(inner string) (token, bool) {
	t := token{raw: "{" + inner + "}", index: -1}
	rest := inner
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		t.sub = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '['); i >= 0 {
		if !strings.HasSuffix(rest, "]") {
			return token{}, false
		}
		n, err := strconv.Atoi(rest[i+1 : len(rest)-1])
		if err != nil || n < 0 {
			return token{}, false
		}
		t.index = n
		rest = rest[:i]
	}
	t.name = strings.TrimSpace(rest)
	if t.name == "" {
		return token{}, false
	}
	return t, true
}

// expand substitutes placeholders in pattern. Values that cannot be resolved
// (unknown field, empty string, empty list, out-of-range index) are left in
// place for the fallback pass. hooks supplies picked hook texts by pool name.
func expand(pattern string, p *models.Parameters, hooks map[string]string) string {
	var out strings.Builder
	out.Grow(len(pattern))
	for i := 0; i < len(pattern); {
		open := strings.IndexByte(pattern[i:], '{')
		if open < 0 {
			out.WriteString(pattern[i:])
			break
		}
		open += i
		out.WriteString(pattern[i:open])
		close := strings.IndexByte(pattern[open:], '}')
		if close < 0 {
			out.WriteString(pattern[open:])
			break
		}
		close += open
		tok, ok := parseToken(pattern[open+1 : close])
		if !ok {
			out.WriteString(pattern[open : close+1])
			i = close + 1
			continue
		}
		val, fromList, resolved := resolveToken(tok, p, hooks)
		if !resolved || val == "" {
			out.WriteString(tok.raw)
			i = close + 1
			continue
		}
		if fromList {
			val = spliceFragment(val, out.String())
		}
		out.WriteString(val)
		i = close + 1
	}
	return out.String()
}

// resolveToken looks a placeholder up on the parameters (or the hook picks).
// fromList marks values sourced from a list element, which get fragment
// splicing rules applied.
func resolveToken(t token, p *models.Parameters, hooks map[string]string) (val string, fromList, ok bool) {
	if t.name == "hook" {
		v, found := hooks[t.sub]
		return v, false, found
	}
	raw, found := p.Field(t.name)
	if !found {
		return "", false, false
	}
	if t.sub != "" {
		persona, isPersona := raw.(models.Persona)
		if !isPersona {
			return "", false, false
		}
		raw, found = persona.Field(t.sub)
		if !found {
			return "", false, false
		}
	}
	switch v := raw.(type) {
	case string:
		return v, false, true
	case []string:
		if t.index < 0 {
			return strings.Join(v, ", "), false, len(v) > 0
		}
		if t.index >= len(v) {
			// Out-of-range resolves to empty, which the caller treats as
			// unresolved so fallbacks can kick in.
			return "", true, true
		}
		return v[t.index], true, true
	}
	return "", false, false
}

// spliceFragment adapts a list-sourced fragment to its surroundings: trailing
// sentence punctuation is stripped, and unless the preceding sentence just
// ended, the first letter is lower-cased so the fragment reads naturally
// mid-sentence.
func spliceFragment(val, before string) string {
	val = strings.TrimRight(val, ".!?;, ")
	if val == "" {
		return val
	}
	if !afterSentenceEnd(before) {
		r, size := utf8.DecodeRuneInString(val)
		val = string(unicode.ToLower(r)) + val[size:]
	}
	return val
}

// afterSentenceEnd reports whether the nearest preceding non-space character
// is sentence-terminal punctuation.
func afterSentenceEnd(s string) bool {
	trimmed := strings.TrimRight(s, " \t\n")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// applyFallbacks replaces still-unresolved placeholders whose variable has a
// registered fallback literal; everything else left over is stripped so output
// never contains a {...} span.
func applyFallbacks(s string, fallbacks map[string]string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			out.WriteString(s[i:])
			break
		}
		open += i
		out.WriteString(s[i:open])
		close := strings.IndexByte(s[open:], '}')
		if close < 0 {
			// Unbalanced brace: drop it rather than leak it.
			i = open + 1
			continue
		}
		close += open
		if tok, ok := parseToken(s[open+1 : close]); ok {
			if lit, has := fallbacks[tok.name]; has {
				out.WriteString(lit)
			}
		}
		i = close + 1
	}
	return out.String()
}

// cleanup collapses concatenation artifacts: runs of sentence-terminal
// punctuation collapse to the final mark, repeated whitespace collapses to a
// single space, and the result is trimmed.
func cleanup(s string) string {
	var out []rune
	for _, r := range s {
		if r == '\t' || r == '\n' {
			r = ' '
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if isTerminal(prev) && isTerminal(r) {
				out[len(out)-1] = r
				continue
			}
			if prev == ' ' && r == ' ' {
				continue
			}
		}
		out = append(out, r)
	}
	return strings.TrimSpace(string(out))
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// truncate hard-limits s to max runes, replacing the tail with an ellipsis
// marker when it exceeds the limit.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + ellipsis
}

// RenderPattern runs the full templating sequence for one pattern: expand,
// fallbacks, strip, cleanup. Length limits are applied by the generator.
func RenderPattern(pattern string, p *models.Parameters, hooks map[string]string, fallbacks map[string]string) string {
	s := expand(pattern, p, hooks)
	s = applyFallbacks(s, fallbacks)
	return cleanup(s)
}
