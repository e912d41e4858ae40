package resolver

import (
	"fmt"
	"sort"
)

// state accumulates the resolved tree and per-leaf source provenance
// across successive layer applications.
type state struct {
	config  map[string]interface{}
	sources map[string]interface{}
}

func newState() *state {
	return &state{config: map[string]interface{}{}, sources: map[string]interface{}{}}
}

// apply deep-merges overlay into the accumulated config, tagging every
// leaf it touches with source. Later calls win on scalar conflicts;
// nested maps recurse; arrays follow the given strategy. This is a
// hand-written recursive merge rather than a reflection-based library
// call — see DESIGN.md for why mergo's map-merge semantics were not a
// fit for this heterogeneous, dynamically-typed tree.
func (s *state) apply(overlay map[string]interface{}, source interface{}, arr ArrayStrategy) {
	s.config = mergeInto("", s.config, overlay, source, arr, s.sources)
}

func mergeInto(prefix string, dst, src map[string]interface{}, source interface{}, arr ArrayStrategy, sources map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = map[string]interface{}{}
	}
	for k, v := range src {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		if srcMap, ok := v.(map[string]interface{}); ok {
			dstMap, _ := dst[k].(map[string]interface{})
			dst[k] = mergeInto(path, dstMap, srcMap, source, arr, sources)
			continue
		}

		if srcArr, ok := v.([]interface{}); ok {
			dstArr, _ := dst[k].([]interface{})
			dst[k] = mergeArrays(dstArr, srcArr, arr)
			sources[path] = source
			continue
		}

		dst[k] = v
		sources[path] = source
	}
	return dst
}

func mergeArrays(dst, src []interface{}, strategy ArrayStrategy) []interface{} {
	switch strategy {
	case ArrayConcat:
		out := make([]interface{}, 0, len(dst)+len(src))
		out = append(out, dst...)
		out = append(out, src...)
		return out
	case ArrayUnique:
		combined := make([]interface{}, 0, len(dst)+len(src))
		combined = append(combined, dst...)
		combined = append(combined, src...)
		return uniquePreserveOrder(combined)
	default: // ArrayReplace
		return src
	}
}

func uniquePreserveOrder(items []interface{}) []interface{} {
	seen := map[string]bool{}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		key := uniqueKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// uniqueKey produces a stable dedup key for arbitrary decoded JSON/YAML
// values (strings, numbers, bools, nested maps/arrays).
func uniqueKey(v interface{}) string {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := "{"
		for _, k := range keys {
			s += k + ":" + uniqueKey(t[k]) + ","
		}
		return s + "}"
	case []interface{}:
		s := "["
		for _, e := range t {
			s += uniqueKey(e) + ","
		}
		return s + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}
