package builder

import "strings"

// suggestFor matches a daemon failure message against known substrings
// and returns actionable hints. The list is narrow by design: a generic
// "check the Dockerfile" suggestion is worse than no suggestion when the
// real cause doesn't match.
func suggestFor(message string) []string {
	lower := strings.ToLower(message)
	var out []string

	switch {
	case strings.Contains(lower, "no such file or directory"):
		out = append(out, "verify the path referenced by the failing COPY/ADD instruction exists in the build context")
	case strings.Contains(lower, "pull access denied"), strings.Contains(lower, "repository does not exist"):
		out = append(out, "check the base image name and registry authentication")
	case strings.Contains(lower, "lookup") && strings.Contains(lower, "no such host"):
		out = append(out, "the daemon could not resolve a network address; check DNS or proxy settings")
	case strings.Contains(lower, "exit code: "), strings.Contains(lower, "returned a non-zero code"):
		out = append(out, "the RUN command failed; re-run it locally to see its full output")
	case strings.Contains(lower, "no space left on device"):
		out = append(out, "the daemon's disk is full; prune unused images and layers")
	case strings.Contains(lower, "permission denied"):
		out = append(out, "check file permissions and ownership inside the build context")
	}

	return out
}
