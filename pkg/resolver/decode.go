package resolver

import (
	"encoding/json"
	"strings"

	yaml "github.com/jesseduffield/yaml"
)

// decodeFile turns file bytes into a generic map, per spec's
// "decode(bytes) -> map" primitive. Format is chosen by extension;
// YAML is the default for anything not ending in .json, matching the
// overlay file candidates.
func decodeFile(path string, raw []byte) (map[string]interface{}, error) {
	if strings.HasSuffix(path, ".json") {
		var v map[string]interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}

	var v map[string]interface{}
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return normalizeTree(v).(map[string]interface{}), nil
}

// normalizeTree converts the map[interface{}]interface{} shapes that
// yaml.v2-family decoders produce for nested maps into
// map[string]interface{}, recursively, so every later stage can assume a
// single uniform tree shape regardless of source format.
func normalizeTree(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[toKeyString(k)] = normalizeTree(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeTree(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeTree(val)
		}
		return out
	default:
		return v
	}
}

func toKeyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return toString(k)
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
