package store

import (
	"strings"
	"unicode"
)

// ToSnake converts a camelCase key to snake_case: "ownerId" -> "owner_id".
func ToSnake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts a snake_case key to camelCase: "owner_id" -> "ownerId".
func ToCamel(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	upper := false
	for i, r := range key {
		if r == '_' && i > 0 {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeKeys returns a copy of v with every map key converted to snake_case,
// descending into nested maps and arrays.
func SnakeKeys(v any) any {
	return mapKeys(v, ToSnake)
}

// CamelKeys is the inverse of SnakeKeys.
func CamelKeys(v any) any {
	return mapKeys(v, ToCamel)
}

func mapKeys(v any, fn func(string) string) any {
	switch t := v.(type) {
	case Record:
		return Record(mapObject(t, fn))
	case map[string]any:
		return mapObject(t, fn)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = mapKeys(e, fn)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = mapObject(e, fn)
		}
		return out
	}
	return v
}

func mapObject(m map[string]any, fn func(string) string) map[string]any {
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[fn(k)] = mapKeys(e, fn)
	}
	return out
}
