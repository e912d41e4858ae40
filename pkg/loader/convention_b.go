package loader

import (
	"encoding/json"
	"regexp"
	"strings"

	"manifestctl/pkg/module"
)

// docBlockRE matches any triple-quoted documentation block, single or
// double quoted.
var docBlockRE = regexp.MustCompile(`(?s)'''(.*?)'''|"""(.*?)"""`)

var (
	mcpToolRE     = regexp.MustCompile(`(?m)^\s*MCP Tool:\s*(.+)$`)
	descriptionRE = regexp.MustCompile(`(?m)^\s*Description:\s*(.+)$`)
	inputSchemaRE = regexp.MustCompile(`(?m)^\s*Input Schema:\s*`)
	pyVersionRE   = regexp.MustCompile(`(?m)^\s*Python Version:\s*(.+)$`)
	dependsRE     = regexp.MustCompile(`(?m)^\s*Dependencies:\s*(.+)$`)
	credentialRE  = regexp.MustCompile(`:credential\s+(\S+)\s+(\S+)\s+(required|optional):\s*(.*)`)
	importRE      = regexp.MustCompile(`(?m)^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import)`)
)

// pythonStdlib is a partial but representative set of standard-library
// top-level module names, used to filter import roots down to inferred
// third-party dependencies.
var pythonStdlib = map[string]bool{
	"os": true, "sys": true, "re": true, "json": true, "typing": true,
	"asyncio": true, "dataclasses": true, "collections": true, "itertools": true,
	"functools": true, "pathlib": true, "logging": true, "datetime": true,
	"time": true, "math": true, "random": true, "enum": true, "abc": true,
	"contextlib": true, "subprocess": true, "shutil": true, "io": true,
	"uuid": true, "hashlib": true, "base64": true, "urllib": true, "http": true,
	"unittest": true, "argparse": true, "copy": true, "threading": true,
	"multiprocessing": true, "socket": true, "struct": true, "textwrap": true,
}

// extractConventionB extracts metadata from a dynamic-source (Python)
// module: the leading triple-quoted documentation block's labeled lines,
// plus inline :credential directives found in any documentation block in
// the file and import-derived dependency inference.
func extractConventionB(src string) (module.Metadata, bool) {
	leading := leadingDocBlock(src)
	if leading == "" {
		return module.Metadata{}, false
	}

	nameMatch := mcpToolRE.FindStringSubmatch(leading)
	if nameMatch == nil {
		return module.Metadata{}, false
	}

	meta := module.Metadata{
		Name: strings.TrimSpace(nameMatch[1]),
	}

	if m := descriptionRE.FindStringSubmatch(leading); m != nil {
		meta.Description = strings.TrimSpace(m[1])
	}
	if m := pyVersionRE.FindStringSubmatch(leading); m != nil {
		// The Python Version line is recognized but its value is
		// discarded: Metadata has no field for it.
		_ = m[1]
	}

	if loc := inputSchemaRE.FindStringIndex(leading); loc != nil {
		if block, _, ok := findBalancedBraces(leading, loc[1]); ok {
			var schema map[string]interface{}
			if err := json.Unmarshal([]byte(block), &schema); err == nil {
				meta.InputSchema = schema
			}
		}
	}

	if m := dependsRE.FindStringSubmatch(leading); m != nil {
		for _, pkg := range strings.Split(m[1], ",") {
			pkg = strings.TrimSpace(pkg)
			if pkg == "" {
				continue
			}
			name, rangeStr := splitPackageSpec(pkg)
			meta.Dependencies = append(meta.Dependencies, module.Dependency{
				Package: name, VersionRange: rangeStr,
			})
		}
	}

	meta.Credentials = extractInlineCredentials(src)
	meta.Dependencies = append(meta.Dependencies, inferImportDependencies(src)...)

	return meta, true
}

// leadingDocBlock returns the content of the first triple-quoted block in
// the source only if it begins at (or near) the top of the file.
func leadingDocBlock(src string) string {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, `"""`) && !strings.HasPrefix(trimmed, `'''`) {
		return ""
	}
	m := docBlockRE.FindStringSubmatch(trimmed)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// extractInlineCredentials scans every documentation block in the file
// (not just the leading one) for `:credential` directives.
func extractInlineCredentials(src string) []module.CredentialDecl {
	var out []module.CredentialDecl
	for _, block := range docBlockRE.FindAllStringSubmatch(src, -1) {
		content := block[1]
		if content == "" {
			content = block[2]
		}
		for _, m := range credentialRE.FindAllStringSubmatch(content, -1) {
			out = append(out, module.CredentialDecl{
				Name:        m[1],
				Type:        m[2],
				Required:    strings.EqualFold(m[3], "required"),
				Description: strings.TrimSpace(m[4]),
			})
		}
	}
	return out
}

// inferImportDependencies collects import roots from the module body,
// filtering out anything in the standard-library set, and treats the
// remainder as dependencies with an unconstrained version range.
func inferImportDependencies(src string) []module.Dependency {
	seen := map[string]bool{}
	var out []module.Dependency
	for _, m := range importRE.FindAllStringSubmatch(src, -1) {
		root := m[1]
		if root == "" {
			root = m[2]
		}
		root = strings.SplitN(root, ".", 2)[0]
		if root == "" || pythonStdlib[root] || seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, module.Dependency{Package: root, VersionRange: "*"})
	}
	return out
}

// splitPackageSpec splits a CSV dependency entry like "requests>=2.0" into
// its name and version-range components.
func splitPackageSpec(spec string) (name, rangeStr string) {
	for _, sep := range []string{">=", "<=", "==", "~=", ">", "<", "!="} {
		if idx := strings.Index(spec, sep); idx != -1 {
			return strings.TrimSpace(spec[:idx]), strings.TrimSpace(spec[idx:])
		}
	}
	return spec, "*"
}
