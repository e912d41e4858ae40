package manifest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"manifestctl/pkg/module"
)

// sentinelVersion is the fixed ceiling used to compare open-ended ranges:
// an unbounded range such as ">=1.0.0" is treated as satisfying up to
// 999.999.999, which can make it outrank a narrower, more specific range
// during tiebreaking. This is intentional — a true-intersection mode
// would be a separately opted-in behavior, not a correction.
var sentinelVersion = versionTuple{999, 999, 999}

type versionTuple struct {
	major, minor, patch int
}

func (v versionTuple) less(other versionTuple) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

var exactPinRE = regexp.MustCompile(`^\d+(\.\d+){0,2}(-[0-9A-Za-z.-]+)?$`)

func isExactPin(rangeStr string) bool {
	return exactPinRE.MatchString(strings.TrimSpace(rangeStr))
}

// parseVersionPrefix extracts the leading MAJOR[.MINOR[.PATCH]] numbers
// from a range string, ignoring any operator/wildcard prefix.
func parseVersionPrefix(s string) versionTuple {
	s = strings.TrimLeft(s, "^~>=< ")
	parts := strings.SplitN(s, "-", 2)[0]
	fields := strings.Split(parts, ".")
	var nums [3]int
	for i := 0; i < 3 && i < len(fields); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			break
		}
		nums[i] = n
	}
	return versionTuple{nums[0], nums[1], nums[2]}
}

// maxSatisfying computes the "maximum version this range would match",
// bounded above by sentinelVersion: highest compatible ceiling, not a
// provably-intersected result.
func maxSatisfying(rangeStr string) versionTuple {
	r := strings.TrimSpace(rangeStr)
	if r == "" || r == "*" {
		return sentinelVersion
	}
	if isExactPin(r) {
		return parseVersionPrefix(r)
	}

	switch {
	case strings.HasPrefix(r, ">="), strings.HasPrefix(r, ">"):
		return sentinelVersion
	case strings.HasPrefix(r, "<="), strings.HasPrefix(r, "<"):
		return parseVersionPrefix(r)
	case strings.HasPrefix(r, "^"):
		v := parseVersionPrefix(r)
		switch {
		case v.major > 0:
			return versionTuple{v.major, 999, 999}
		case v.minor > 0:
			return versionTuple{0, v.minor, 999}
		default:
			return versionTuple{0, 0, v.patch}
		}
	case strings.HasPrefix(r, "~"):
		v := parseVersionPrefix(r)
		return versionTuple{v.major, v.minor, 999}
	default:
		return parseVersionPrefix(r)
	}
}

// ResolveDependencies picks one version declaration per package: a
// single declaration is used verbatim (empty -> "*"); multiple
// declarations are sorted by preference — exact pins before ranges,
// then by maxSatisfying descending, then by declared base version
// descending — and the head of that order is picked. No true semver
// intersection is computed.
func ResolveDependencies(pairs []module.Dependency) map[string]string {
	byPkg := map[string][]string{}
	var order []string
	for _, p := range pairs {
		if _, ok := byPkg[p.Package]; !ok {
			order = append(order, p.Package)
		}
		byPkg[p.Package] = append(byPkg[p.Package], p.VersionRange)
	}

	out := make(map[string]string, len(byPkg))
	for _, pkg := range order {
		ranges := byPkg[pkg]
		if len(ranges) == 1 {
			r := ranges[0]
			if r == "" {
				r = "*"
			}
			out[pkg] = r
			continue
		}

		sort.SliceStable(ranges, func(i, j int) bool {
			pi, pj := isExactPin(ranges[i]), isExactPin(ranges[j])
			if pi != pj {
				return pi // pins sort before ranges
			}
			mi, mj := maxSatisfying(ranges[i]), maxSatisfying(ranges[j])
			if mi != mj {
				return mj.less(mi) // descending by ceiling
			}
			// Two ranges with the same ceiling (e.g. two ^4.x.y carets)
			// aren't a tie: the one with the higher declared base version
			// is more restrictive and wins.
			bi, bj := parseVersionPrefix(ranges[i]), parseVersionPrefix(ranges[j])
			return bj.less(bi) // descending by base version
		})
		head := ranges[0]
		if head == "" {
			head = "*"
		}
		out[pkg] = head
	}
	return out
}
