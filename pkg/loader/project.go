package loader

import "manifestctl/pkg/module"

// asString reads a string field, tolerating absence or wrong type.
func asString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func asStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asObject(m map[string]interface{}, key string) map[string]interface{} {
	v, ok := m[key]
	if !ok {
		return nil
	}
	obj, _ := v.(map[string]interface{})
	return obj
}

func asBool(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// asDependencies reads a `dependencies` field shaped as an object mapping
// package name to version range string.
func asDependencies(m map[string]interface{}) []module.Dependency {
	obj := asObject(m, "dependencies")
	if obj == nil {
		return nil
	}
	out := make([]module.Dependency, 0, len(obj))
	for pkg, v := range obj {
		rangeStr, _ := v.(string)
		out = append(out, module.Dependency{Package: pkg, VersionRange: rangeStr})
	}
	return out
}

// asCredentials reads a `credentials` field shaped as an array of objects.
func asCredentials(m map[string]interface{}) []module.CredentialDecl {
	v, ok := m["credentials"]
	if !ok {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]module.CredentialDecl, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, module.CredentialDecl{
			Name:        asString(obj, "name"),
			Type:        asString(obj, "type"),
			Required:    asBool(obj, "required"),
			Description: asString(obj, "description"),
			Service:     asString(obj, "service"),
			Validation:  asString(obj, "validation"),
		})
	}
	return out
}

// projectCommon fills the fields shared between tool and connector
// metadata from a generic decoded tree.
func projectCommon(obj map[string]interface{}) module.Metadata {
	return module.Metadata{
		Name:          asString(obj, "name"),
		Description:   asString(obj, "description"),
		Version:       asString(obj, "version"),
		SchemaVersion: asString(obj, "schemaVersion"),
		InputSchema:   asObject(obj, "inputSchema"),
		Capabilities:  asStringSlice(obj, "capabilities"),
		Dependencies:  asDependencies(obj),
		Credentials:   asCredentials(obj),
		Type:          asString(obj, "type"),
		Authentication: asObject(obj, "authentication"),
		Methods:        asStringSlice(obj, "methods"),
	}
}
