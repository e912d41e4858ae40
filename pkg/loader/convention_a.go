package loader

import (
	"regexp"
	"strings"

	"manifestctl/pkg/module"
)

// metadataDeclRE finds a top-level `metadata` declaration: `export const
// metadata = {`, `const metadata: ToolMetadata = {`, `let metadata = {`,
// etc. One of const/let/var is required; `export` and a type annotation
// are optional.
var metadataDeclRE = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+metadata\s*(?::\s*[\w.<>\[\]| ]+)?\s*=\s*`)

// requiresCredentialRE matches a tagged-comment credential declaration:
// `@requires-credential NAME type required|optional - description`
var requiresCredentialRE = regexp.MustCompile(`@requires-credential\s+(\S+)\s+(\S+)\s+(required|optional)\s*-?\s*(.*)`)

// extractConventionA extracts metadata from a typed-source (TypeScript)
// module: a top-level `metadata` object literal plus any
// `@requires-credential` tagged-comment declarations.
func extractConventionA(src string) (module.Metadata, bool) {
	loc := metadataDeclRE.FindStringIndex(src)
	if loc == nil {
		return module.Metadata{}, false
	}

	block, _, ok := findBalancedBraces(src, loc[1])
	if !ok {
		return module.Metadata{}, false
	}

	tree, err := parseJSLiteral(block)
	if err != nil {
		// The declaration is present but is not free of live expressions —
		// skip with a warning rather than aborting the load.
		return module.Metadata{}, false
	}

	obj, ok := tree.(map[string]interface{})
	if !ok {
		return module.Metadata{}, false
	}

	meta := projectCommon(obj)
	meta.Credentials = append(meta.Credentials, extractTaggedCredentials(src)...)
	return meta, true
}

// extractTaggedCredentials harvests `@requires-credential` blocks from
// anywhere in the source, not just inside the metadata literal — they
// commonly live in a doc-comment above the declaration.
func extractTaggedCredentials(src string) []module.CredentialDecl {
	var out []module.CredentialDecl
	for _, m := range requiresCredentialRE.FindAllStringSubmatch(src, -1) {
		out = append(out, module.CredentialDecl{
			Name:        m[1],
			Type:        m[2],
			Required:    strings.EqualFold(m[3], "required"),
			Description: strings.TrimSpace(m[4]),
		})
	}
	return out
}
