// Package validator implements C2: pure, side-effect-free checks over a
// set of discovered modules, accumulating structured errors and warnings
// rather than failing fast.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"manifestctl/pkg/module"
)

// Severity distinguishes a hard failure from an advisory note.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding against a single module.
type Issue struct {
	ModulePath string
	Field      string
	Message    string
	Severity   Severity
}

// Result is the accumulated outcome of validating a module set.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// Valid reports whether no issue carries SeverityError.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

var (
	semverRE  = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)
	pkgNameRE = regexp.MustCompile(`^[@/a-zA-Z0-9._-]+$`)
	// versionRangeRE accepts common semver-range grammars: exact pins,
	// caret/tilde ranges, comparison operators, "*", and "x" wildcards.
	versionRangeRE = regexp.MustCompile(`^(\*|[\^~]?[0-9xX]+(\.[0-9xX]+)*(\.[0-9xX]+)?(-[0-9A-Za-z.-]+)?|(>=|<=|>|<|==|!=)\s*[0-9xX]+(\.[0-9xX]+)*)(\s*\|\|\s*.+)?$`)
)

// Validate runs every structural check across modules, in input order.
func Validate(modules []module.Module) Result {
	var res Result

	seen := map[string]string{} // lowercase name -> first module path
	add := func(issues ...Issue) {
		for _, iss := range issues {
			if iss.Severity == SeverityError {
				res.Errors = append(res.Errors, iss)
			} else {
				res.Warnings = append(res.Warnings, iss)
			}
		}
	}

	for _, m := range modules {
		add(checkRequiredFields(m)...)
		add(checkVersionFormat(m)...)
		add(checkConnectorType(m)...)
		add(checkSchemaVersion(m)...)
		add(checkDependencyShape(m)...)
		add(checkCapabilities(m)...)

		key := m.NameKey()
		if firstPath, dup := seen[key]; dup {
			add(Issue{
				ModulePath: m.Path,
				Field:      "name",
				Message:    fmt.Sprintf("Duplicate module name %q (case-insensitive match of %s)", m.Name, firstPath),
				Severity:   SeverityError,
			})
		} else {
			seen[key] = m.Path
		}
	}

	return res
}

func checkRequiredFields(m module.Module) []Issue {
	var out []Issue
	req := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			out = append(out, Issue{ModulePath: m.Path, Field: field, Message: field + " is required", Severity: SeverityError})
		}
	}
	req("name", m.Metadata.Name)
	req("description", m.Metadata.Description)
	req("version", m.Metadata.Version)
	if m.Kind == module.KindConnector {
		req("type", m.Metadata.Type)
	}
	return out
}

func checkVersionFormat(m module.Module) []Issue {
	if m.Metadata.Version == "" {
		return nil
	}
	if !semverRE.MatchString(m.Metadata.Version) {
		return []Issue{{
			ModulePath: m.Path, Field: "version",
			Message:  fmt.Sprintf("version %q is not valid semver (MAJOR.MINOR.PATCH[-pre][+build])", m.Metadata.Version),
			Severity: SeverityError,
		}}
	}
	return nil
}

func checkConnectorType(m module.Module) []Issue {
	if m.Kind != module.KindConnector || m.Metadata.Type == "" {
		return nil
	}
	if !module.ConnectorTypes[m.Metadata.Type] {
		return []Issue{{
			ModulePath: m.Path, Field: "type",
			Message:  fmt.Sprintf("connector type %q is not in the supported vocabulary", m.Metadata.Type),
			Severity: SeverityError,
		}}
	}
	return nil
}

func checkSchemaVersion(m module.Module) []Issue {
	if m.Metadata.SchemaVersion == "" {
		return []Issue{{
			ModulePath: m.Path, Field: "schemaVersion",
			Message:  "schemaVersion is absent",
			Severity: SeverityWarning,
		}}
	}
	if !module.SupportedSchemaVersions[m.Metadata.SchemaVersion] {
		return []Issue{{
			ModulePath: m.Path, Field: "schemaVersion",
			Message:  fmt.Sprintf("schemaVersion %q is not supported", m.Metadata.SchemaVersion),
			Severity: SeverityError,
		}}
	}
	return nil
}

func checkDependencyShape(m module.Module) []Issue {
	var out []Issue
	for _, dep := range m.Metadata.Dependencies {
		if !pkgNameRE.MatchString(dep.Package) {
			out = append(out, Issue{
				ModulePath: m.Path, Field: "dependencies",
				Message:  fmt.Sprintf("package name %q has an invalid shape", dep.Package),
				Severity: SeverityWarning,
			})
			continue
		}
		if dep.VersionRange != "" && !versionRangeRE.MatchString(dep.VersionRange) {
			out = append(out, Issue{
				ModulePath: m.Path, Field: "dependencies",
				Message:  fmt.Sprintf("version range %q for %s has an invalid shape", dep.VersionRange, dep.Package),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func checkCapabilities(m module.Module) []Issue {
	var out []Issue
	for _, c := range m.Metadata.Capabilities {
		if strings.TrimSpace(c) == "" {
			out = append(out, Issue{
				ModulePath: m.Path, Field: "capabilities",
				Message:  "capabilities must be non-empty strings",
				Severity: SeverityError,
			})
		}
	}
	return out
}
