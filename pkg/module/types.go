// Package module defines the data model shared by every stage of the
// build pipeline: the discovered Module, its per-kind metadata, and the
// credential declarations harvested from it.
package module

// Kind distinguishes a callable tool from an external-service connector.
type Kind string

const (
	KindTool      Kind = "tool"
	KindConnector Kind = "connector"
)

// Language identifies which of the two supported source conventions a
// module is written in.
type Language string

const (
	// LangTS is spec.md's "Convention A (typed source)".
	LangTS Language = "typescript"
	// LangPy is spec.md's "Convention B (dynamic source)".
	LangPy Language = "python"
)

// ConnectorTypes is the closed vocabulary accepted for a connector's
// Metadata.Type.
var ConnectorTypes = map[string]bool{
	"database":  true,
	"email":     true,
	"oauth":     true,
	"http":      true,
	"messaging": true,
	"storage":   true,
	"search":    true,
	"ai":        true,
	"other":     true,
}

// CredentialTypes is the closed vocabulary for CredentialDecl.Type.
var CredentialTypes = map[string]bool{
	"api_key":              true,
	"password":             true,
	"token":                true,
	"oauth":                true,
	"oauth_client_id":      true,
	"oauth_client_secret":  true,
	"oauth_refresh_token":  true,
	"none":                 true,
}

// SupportedSchemaVersions is the closed set accepted by the validator.
var SupportedSchemaVersions = map[string]bool{
	"1.0": true,
}

// CredentialDecl is a single credential requirement as declared inside
// one module, regardless of which of the three source notations carried it.
type CredentialDecl struct {
	Name        string
	Type        string
	Required    bool
	Description string
	Service     string
	Validation  string
}

// Dependency is a single package-name/version-range pair as declared by
// a module.
type Dependency struct {
	Package      string
	VersionRange string
}

// Metadata is the record extracted from a module's source, shared by
// tools and connectors. Loader stages populate it; the validator and
// downstream components read it directly.
type Metadata struct {
	Name           string
	Description    string
	Version        string
	SchemaVersion  string
	InputSchema    map[string]interface{}
	Capabilities   []string
	Dependencies   []Dependency
	Credentials    []CredentialDecl

	// Connector-only fields; zero value on tool modules.
	Type           string
	Authentication map[string]interface{}
	Methods        []string
}

// AggregatedCredential is the merge of one or more CredentialDecls
// sharing the same Name, across all modules that declared it.
type AggregatedCredential struct {
	Name        string
	Type        string
	Required    bool
	Description string
	Service     string
	UsedBy      []string
}

// Module is one discovered unit in the workspace.
type Module struct {
	Name     string
	Path     string
	Kind     Kind
	Language Language
	Metadata Metadata
}

// NameKey returns the case-insensitive comparison key for the module's name.
func (m Module) NameKey() string {
	return lowerASCII(m.Name)
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
