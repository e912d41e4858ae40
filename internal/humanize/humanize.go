// Package humanize formats byte counts for display, split out as its
// own package so the registry and main's build-result printer can both depend on it
// without pulling in the rest of pkg/utils's terminal-rendering
// surface.
package humanize

import (
	"fmt"
	"math"
)

// Bytes formats b using decimal (base-1000) units, e.g. "1.23MB".
func Bytes(b int64) string {
	n := float64(b)
	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
	for _, unit := range units {
		if n > math.Pow(10, 3) {
			n /= math.Pow(10, 3)
		} else {
			val := fmt.Sprintf("%.2f%s", n, unit)
			if val == "0.00B" {
				return "0B"
			}
			return val
		}
	}
	return "a lot"
}
