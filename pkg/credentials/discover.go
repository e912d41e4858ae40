// Package credentials implements C3: scanning discovered modules for
// credential declarations and merging duplicates across them.
package credentials

import (
	"sort"
	"strings"

	"manifestctl/pkg/module"
)

// Discover merges every CredentialDecl found across modules (whether it
// came from the `credentials` array, an `@requires-credential` tagged
// comment, or an inline `:credential` directive — the loader has already
// flattened all three into Metadata.Credentials) into a sorted list of
// AggregatedCredential, keyed by name.
func Discover(modules []module.Module) []module.AggregatedCredential {
	type accum struct {
		agg      module.AggregatedCredential
		usedBy   map[string]bool
		typeSet  bool
	}

	byName := map[string]*accum{}
	var order []string

	for _, m := range modules {
		for _, decl := range m.Metadata.Credentials {
			a, ok := byName[decl.Name]
			if !ok {
				a = &accum{
					agg:    module.AggregatedCredential{Name: decl.Name},
					usedBy: map[string]bool{},
				}
				byName[decl.Name] = a
				order = append(order, decl.Name)
			}

			a.agg.Required = a.agg.Required || decl.Required
			a.usedBy[m.Name] = true

			if !a.typeSet && decl.Type != "" {
				a.agg.Type = decl.Type
				a.typeSet = true
			}
			// A later conflicting type never changes the pin. No warning
			// is emitted for the conflict, here or elsewhere; this
			// function is pure and returns only the merged result.

			if len(decl.Description) > len(a.agg.Description) {
				a.agg.Description = decl.Description
			}
			if a.agg.Service == "" && decl.Service != "" {
				a.agg.Service = decl.Service
			}
		}
	}

	out := make([]module.AggregatedCredential, 0, len(order))
	for _, name := range order {
		a := byName[name]
		usedBy := make([]string, 0, len(a.usedBy))
		for n := range a.usedBy {
			usedBy = append(usedBy, n)
		}
		sort.Strings(usedBy)
		a.agg.UsedBy = usedBy
		out = append(out, a.agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GroupByService buckets aggregated credentials under their declared
// Service, falling back to "other" when none was declared.
func GroupByService(list []module.AggregatedCredential) map[string][]module.AggregatedCredential {
	out := map[string][]module.AggregatedCredential{}
	for _, c := range list {
		service := c.Service
		if service == "" {
			service = "other"
		}
		out[service] = append(out[service], c)
	}
	return out
}

// PromptField is the shape the external interactive credential prompt
// consumes: one entry per aggregated credential, formatted for display.
type PromptField struct {
	Name        string
	Masked      bool
	Description string
	EnvVar      string
}

// maskedTypes are credential types whose prompt input should be masked.
var maskedTypes = map[string]bool{
	"api_key":  true,
	"password": true,
}

// FormatForPrompt adapts aggregated credentials into the shape consumed
// by an interactive prompt collector: masked vs. plain text by type,
// and optional-ness appended to the description.
func FormatForPrompt(list []module.AggregatedCredential) []PromptField {
	out := make([]PromptField, 0, len(list))
	for _, c := range list {
		desc := c.Description
		if c.Required {
			desc = strings.TrimSpace(desc + " (required)")
		} else {
			desc = strings.TrimSpace(desc + " (optional)")
		}
		out = append(out, PromptField{
			Name:        c.Name,
			Masked:      maskedTypes[c.Type],
			Description: desc,
			EnvVar:      EnvVarName(c.Name),
		})
	}
	return out
}

// EnvVarName derives the conventional per-credential environment variable
// name from a credential declaration name: insert '_' before each
// internal uppercase letter, replace '-'/whitespace with '_', collapse
// duplicate underscores, trim a leading underscore, uppercase.
func EnvVarName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '-' || r == ' ' || r == '\t':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	collapsed := strings.ToUpper(b.String())
	for strings.Contains(collapsed, "__") {
		collapsed = strings.ReplaceAll(collapsed, "__", "_")
	}
	return strings.TrimPrefix(collapsed, "_")
}
