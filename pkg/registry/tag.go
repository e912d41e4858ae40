package registry

import (
	"regexp"
	"strings"
	"time"

	"manifestctl/pkg/apperrors"
)

// tagNameRE, tagValRE and tagHostRE follow the Docker reference grammar
// this package targets: tagNameRE checks each '/'-separated repository
// segment (lowercase [a-z0-9] runs joined by '.', '_', '__' or dashes);
// tagValRE checks the tag, 1-128 characters starting with [a-z0-9] with
// a body of [A-Za-z0-9_.-]; tagHostRE checks a leading registry host
// with an optional :port.
var (
	tagNameRE = regexp.MustCompile(`^[a-z0-9]+(?:(?:[._]|__|[-]+)[a-z0-9]+)*$`)
	tagValRE  = regexp.MustCompile(`^[a-z0-9][\w.-]{0,127}$`)
	tagHostRE = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9.-]*[a-zA-Z0-9])?(?::[0-9]+)?$`)
)

// ValidateTag checks a full image reference ("[registry/]name[:tag]")
// against Docker's tag grammar.
func ValidateTag(ref string) error {
	if ref == "" {
		return &apperrors.TagValidationError{Tag: ref, Message: "tag must not be empty"}
	}

	name, tag := splitRef(ref)
	segments := strings.Split(name, "/")
	if first := segments[0]; len(segments) > 1 && (strings.ContainsAny(first, ".:") || first == "localhost") {
		if !tagHostRE.MatchString(first) {
			return &apperrors.TagValidationError{Tag: ref, Message: "invalid registry host: " + first}
		}
		segments = segments[1:]
	}
	for _, seg := range segments {
		if seg == "" || !tagNameRE.MatchString(seg) {
			return &apperrors.TagValidationError{Tag: ref, Message: "invalid repository segment: " + seg}
		}
	}
	if tag != "" && !tagValRE.MatchString(tag) {
		return &apperrors.TagValidationError{Tag: ref, Message: "invalid tag component: " + tag}
	}
	return nil
}

func splitRef(ref string) (name, tag string) {
	// a ':' after the last '/' separates the tag; one before it is part
	// of a registry host:port.
	lastSlash := strings.LastIndex(ref, "/")
	rest := ref
	prefix := ""
	if lastSlash >= 0 {
		prefix = ref[:lastSlash+1]
		rest = ref[lastSlash+1:]
	}
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		return prefix + rest[:idx], rest[idx+1:]
	}
	return ref, ""
}

// SanitizeTagComponent rewrites a free-form string (e.g. a branch name)
// into a valid tag component: lowercased, disallowed characters replaced
// with '-', collapsed, trimmed of leading/trailing '.'/'-', and prefixed
// with 'x' if it would otherwise not start with [a-z0-9]. An input that
// sanitizes to nothing falls back to "latest".
func SanitizeTagComponent(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			if r == '-' && lastDash {
				continue
			}
			b.WriteRune(r)
			lastDash = r == '-'
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return "latest"
	}
	if c := out[0]; !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
		out = "x" + out
	}
	if len(out) > 128 {
		out = out[:128]
	}
	return out
}

// TimestampTag generates a sortable, valid tag component from a time,
// e.g. "20260731-142301".
func TimestampTag(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}
