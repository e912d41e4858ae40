package resolver

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// Resolve applies every configuration layer in precedence order (lowest
// to highest): built-in defaults, base config file, environment-specific
// overlay file, CONFIG_* environment variables, then `--a.b.c=v` CLI
// arguments. The result is a pure function of its Input — identical
// inputs always produce a bit-identical Result.
func Resolve(in Input) (Result, error) {
	readFile := in.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	statFile := in.Stat
	if statFile == nil {
		statFile = func(path string) (bool, error) {
			_, err := os.Stat(path)
			if err == nil {
				return true, nil
			}
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}

	arr := in.Array
	if arr == "" {
		arr = ArrayReplace
	}

	st := newState()

	if in.Defaults != nil {
		st.apply(in.Defaults, SourceDefault, arr)
	}

	if in.ConfigPath != "" {
		raw, err := readFile(in.ConfigPath)
		if err != nil {
			return Result{}, err
		}
		tree, err := decodeFile(in.ConfigPath, raw)
		if err != nil {
			return Result{}, err
		}
		st.apply(tree, FileSource{Path: in.ConfigPath}, arr)
	}

	for _, candidate := range OverlayCandidates(in.ConfigPath, in.Env) {
		exists, err := statFile(candidate)
		if err != nil {
			return Result{}, err
		}
		if !exists {
			continue
		}
		raw, err := readFile(candidate)
		if err != nil {
			return Result{}, err
		}
		tree, err := decodeFile(candidate, raw)
		if err != nil {
			return Result{}, err
		}
		st.apply(tree, EnvFileSource{Path: candidate}, arr)
		break
	}

	envTree := envVarTree(in.EnvVars)
	if len(envTree) > 0 {
		st.apply(envTree, SourceEnvVar, arr)
	}

	cliTree := cliArgTree(in.CliArgs)
	if len(cliTree) > 0 {
		st.apply(cliTree, SourceCLI, arr)
	}

	return Result{Config: st.config, Sources: st.sources}, nil
}

const envPrefix = "CONFIG_"

// envVarTree scans EnvVars for the CONFIG_ prefix and builds a nested
// tree from the dotted path each variable implies.
func envVarTree(vars map[string]string) map[string]interface{} {
	out := map[string]interface{}{}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !strings.HasPrefix(k, envPrefix) {
			continue
		}
		rest := strings.TrimPrefix(k, envPrefix)
		if rest == "" {
			continue
		}
		segments := strings.Split(strings.ToLower(rest), "_")
		setPath(out, segments, coerceValue(vars[k]))
	}
	return out
}

// cliArgTree parses `--config.a.b.c=v` or `--a.b.c=v` style arguments
// into a nested tree.
func cliArgTree(args []string) map[string]interface{} {
	out := map[string]interface{}{}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		body := strings.TrimPrefix(arg, "--")
		eq := strings.IndexByte(body, '=')
		if eq == -1 {
			continue
		}
		key := body[:eq]
		val := body[eq+1:]
		key = strings.TrimPrefix(key, "config.")
		segments := strings.Split(key, ".")
		setPath(out, segments, coerceValue(val))
	}
	return out
}

func setPath(tree map[string]interface{}, segments []string, value interface{}) {
	cur := tree
	for i, seg := range segments {
		if i == len(segments)-1 {
			cur[seg] = value
			return
		}
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[seg] = next
		}
		cur = next
	}
}

// Lookup reads a dotted path out of a resolved config tree.
func Lookup(config map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var cur interface{} = config
	for _, seg := range segments {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupInt is a convenience accessor for numeric leaves (decoded as
// float64, matching encoding/json's default number representation).
func LookupInt(config map[string]interface{}, path string) (int, bool) {
	v, ok := Lookup(config, path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}
