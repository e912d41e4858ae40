package dockerfile

import (
	"regexp"
	"strings"
)

// ValidationResult reports a Dockerfile's validity, errors, and warnings.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

var (
	fromRE       = regexp.MustCompile(`(?mi)^\s*FROM\s+\S+`)
	entrypointRE = regexp.MustCompile(`(?mi)^\s*(ENTRYPOINT|CMD)\s+`)
	aptInstallRE = regexp.MustCompile(`(?mi)^\s*RUN\s+.*apt-get\s+install\b`)
	aptNonIntRE  = regexp.MustCompile(`(?mi)^\s*RUN\s+.*apt-get\s+install\b.*(-y|--yes|--assume-yes)`)
)

// Validate checks the emitted Dockerfile against a fixed rule set. It
// deliberately checks only the fixed apt-get form for the
// non-interactive-flag warning — other installers (apk, yum, pip) are
// not checked, to avoid new false positives.
func Validate(dockerfile string) ValidationResult {
	var res ValidationResult

	if !fromRE.MatchString(dockerfile) {
		res.Errors = append(res.Errors, "no base-image (FROM) directive present")
	}
	if !entrypointRE.MatchString(dockerfile) {
		res.Errors = append(res.Errors, "no ENTRYPOINT or CMD directive present")
	}

	for _, line := range strings.Split(dockerfile, "\n") {
		if aptInstallRE.MatchString(line) && !aptNonIntRE.MatchString(line) {
			res.Warnings = append(res.Warnings, "apt-get install without a non-interactive flag: "+strings.TrimSpace(line))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
