// Package manifest implements C5: folding a validated module set into a
// single canonical manifest, reconciling overlapping dependency
// declarations.
package manifest

import (
	"sort"
	"time"

	"manifestctl/pkg/module"
)

// ToolEntry is one tool's projection into the manifest.
type ToolEntry struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Version      string                 `json:"version"`
	Path         string                 `json:"path"`
	Capabilities []string               `json:"capabilities,omitempty"`
	InputSchema  map[string]interface{} `json:"inputSchema,omitempty"`
}

// ConnectorEntry is one connector's projection into the manifest.
type ConnectorEntry struct {
	ToolEntry
	Type    string   `json:"type"`
	Methods []string `json:"methods,omitempty"`
}

// Meta carries the generation facts a manifest consumer needs.
type Meta struct {
	GeneratedAt     string `json:"generatedAt"`
	GeneratorVersion string `json:"generatorVersion"`
	ModuleCount     int    `json:"moduleCount"`
}

// Manifest is the single canonical artifact produced by a build.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Tools        []ToolEntry       `json:"tools"`
	Connectors   []ConnectorEntry  `json:"connectors"`
	Capabilities []string          `json:"capabilities"`
	Dependencies map[string]string `json:"dependencies"`
	Metadata     Meta              `json:"metadata"`
}

// Options configures a single Synthesize call.
type Options struct {
	// Name is the manifest/server name (e.g. the workspace directory name).
	Name string
	// WorkspaceVersion is the top-level version string read from the
	// workspace's well-known version file; "" falls back to "0.1.0".
	WorkspaceVersion string
	// GeneratorVersion is this tool's own version, stamped into metadata.
	GeneratorVersion string
	// Now overrides the generation timestamp; nil uses time.Now().
	Now func() time.Time
}

// Synthesize folds modules (already validated) into a Manifest, in
// module-input order for the tool/connector lists, with a sorted
// capability set and single-resolved-range dependencies.
func Synthesize(modules []module.Module, opts Options) Manifest {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	version := opts.WorkspaceVersion
	if version == "" {
		version = "0.1.0"
	}

	capSet := map[string]bool{}
	var tools []ToolEntry
	var connectors []ConnectorEntry
	var depPairs []module.Dependency

	for _, m := range modules {
		for _, c := range m.Metadata.Capabilities {
			capSet[c] = true
		}
		depPairs = append(depPairs, m.Metadata.Dependencies...)

		entry := ToolEntry{
			Name:         m.Metadata.Name,
			Description:  m.Metadata.Description,
			Version:      m.Metadata.Version,
			Path:         m.Path,
			Capabilities: m.Metadata.Capabilities,
			InputSchema:  m.Metadata.InputSchema,
		}

		switch m.Kind {
		case module.KindConnector:
			if m.Metadata.Type != "" {
				capSet[m.Metadata.Type+"-integration"] = true
			}
			connectors = append(connectors, ConnectorEntry{
				ToolEntry: entry,
				Type:      m.Metadata.Type,
				Methods:   m.Metadata.Methods,
			})
		default:
			tools = append(tools, entry)
		}
	}

	caps := make([]string, 0, len(capSet))
	for c := range capSet {
		caps = append(caps, c)
	}
	sort.Strings(caps)

	return Manifest{
		Name:         opts.Name,
		Version:      version,
		Tools:        tools,
		Connectors:   connectors,
		Capabilities: caps,
		Dependencies: ResolveDependencies(depPairs),
		Metadata: Meta{
			GeneratedAt:      now().UTC().Format(time.RFC3339),
			GeneratorVersion: opts.GeneratorVersion,
			ModuleCount:      len(modules),
		},
	}
}

// Validate checks that a manifest isn't empty: no tools and no
// connectors must fail validation even though Synthesize itself always
// succeeds.
func Validate(m Manifest) []string {
	var errs []string
	if len(m.Tools) == 0 && len(m.Connectors) == 0 {
		errs = append(errs, "manifest has no tools and no connectors")
	}
	for pkg, rng := range m.Dependencies {
		if rng == "" {
			errs = append(errs, "dependency "+pkg+" resolved to an empty range")
		}
	}
	return errs
}
