package resolver

import (
	"fmt"
	"sort"
	"strings"
)

// sensitiveSubstrings are matched against the lowercased dotted path (the
// `*key*`-style patterns) to mask secrets in the debug dump.
var sensitiveSubstrings = []string{"key", "secret", "token", "password"}

func isSensitivePath(path string) bool {
	lower := strings.ToLower(path)
	for _, pat := range sensitiveSubstrings {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

// DebugDump renders the resolved config as a sorted list of lines, one
// "path = value  (source)" line per leaf, masking sensitive leaves with
// a fixed run of asterisks regardless of their actual value's length.
func DebugDump(config map[string]interface{}, sources map[string]interface{}) string {
	var lines []string
	collectLeaves("", config, &lines, sources)
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func collectLeaves(prefix string, node interface{}, lines *[]string, sources map[string]interface{}) {
	m, ok := node.(map[string]interface{})
	if !ok {
		display := fmt.Sprintf("%v", node)
		if isSensitivePath(prefix) {
			display = "********"
		}
		src := sources[prefix]
		*lines = append(*lines, fmt.Sprintf("%s = %s  (%s)", prefix, display, sourceLabel(src)))
		return
	}
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		collectLeaves(path, v, lines, sources)
	}
}

func sourceLabel(src interface{}) string {
	switch s := src.(type) {
	case Source:
		return string(s)
	case FileSource:
		return s.String()
	case EnvFileSource:
		return s.String()
	case nil:
		return "unknown"
	default:
		return fmt.Sprintf("%v", s)
	}
}
