package jsonschema

import (
	"regexp"
	"strings"
)

const maxStripDepth = 64

// strip removes, in place, every property of v that doc declares
// additionalProperties: false for. It follows properties, single-schema items,
// allOf and bare-key $refs. Alternatives (anyOf, oneOf) are not descended
// into because the matching branch is not known before validation.
func (e *Engine) strip(doc map[string]any, v any, depth int) {
	if doc == nil || depth > maxStripDepth {
		return
	}
	if ref, ok := doc["$ref"].(string); ok {
		if target, ok := e.schemas[strings.TrimSuffix(ref, "#")]; ok {
			e.strip(target, v, depth+1)
		}
		if !e.opts.ExtendRefs {
			return
		}
	}
	if all, ok := doc["allOf"].([]any); ok {
		for _, sub := range all {
			if sm, ok := sub.(map[string]any); ok {
				e.strip(sm, v, depth+1)
			}
		}
	}

	switch val := v.(type) {
	case map[string]any:
		props, _ := doc["properties"].(map[string]any)
		if ap, ok := doc["additionalProperties"].(bool); ok && !ap {
			patterns := compilePatterns(doc["patternProperties"])
			for k := range val {
				if _, declared := props[k]; declared || matchesAny(patterns, k) {
					continue
				}
				delete(val, k)
			}
		}
		for k, sub := range props {
			child, ok := val[k]
			if !ok {
				continue
			}
			if sm, ok := sub.(map[string]any); ok {
				e.strip(sm, child, depth+1)
			}
		}
	case []any:
		if items, ok := doc["items"].(map[string]any); ok {
			for _, it := range val {
				e.strip(items, it, depth+1)
			}
		}
	}
}

func compilePatterns(raw any) []*regexp.Regexp {
	pp, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make([]*regexp.Regexp, 0, len(pp))
	for p := range pp {
		// Invalid patterns fail compilation later; here they simply match nothing.
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

func matchesAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// cloneValue deep-copies the containers of a decoded JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = cloneValue(x)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, x := range t {
			s[i] = cloneValue(x)
		}
		return s
	default:
		return v
	}
}
