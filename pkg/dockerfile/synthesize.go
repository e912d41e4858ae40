package dockerfile

import (
	"fmt"
	"sort"
	"strings"

	"manifestctl/pkg/manifest"
	"manifestctl/pkg/module"
)

const (
	baseImageTS = "node:20-slim"
	baseImagePy = "python:3.11-slim"
)

// Options configures a single Synthesize call.
type Options struct {
	EnvironmentVariables map[string]string
	Labels               map[string]string
	HealthCheck          bool // default on; set HealthCheckSet to force off
	HealthCheckSet       bool
	ConfigPath           string
}

func (o Options) healthCheckEnabled() bool {
	if !o.HealthCheckSet {
		return true
	}
	return o.HealthCheck
}

// Output is the pair of artifacts Synthesize produces.
type Output struct {
	Dockerfile   string
	Dockerignore string
}

// Synthesize emits a Dockerfile and .dockerignore for the given manifest
// and module composition.
func Synthesize(m manifest.Manifest, modules []module.Module, opts Options) Output {
	comp := Analyze(modules)
	mode := comp.SelectMode()

	var b strings.Builder

	switch mode {
	case ModeSingleStageTS:
		writeSingleStage(&b, baseImageTS, "node", m, opts)
	case ModeSingleStagePy:
		writeSingleStage(&b, baseImagePy, "python", m, opts)
	case ModeMultiStage:
		writeMultiStage(&b, m, opts)
	}

	return Output{
		Dockerfile:   b.String(),
		Dockerignore: Dockerignore(),
	}
}

func writeCommonSetup(b *strings.Builder) {
	b.WriteString("WORKDIR /app\n")
	b.WriteString("RUN mkdir -p tools connectors config\n")
}

func writeCopyModules(b *strings.Builder, m manifest.Manifest, configPath string) {
	fmt.Fprintf(b, "COPY manifest.json ./manifest.json\n")
	if configPath != "" {
		fmt.Fprintf(b, "COPY %s ./config/\n", configPath)
	}
	b.WriteString("COPY tools/ ./tools/\n")
	b.WriteString("COPY connectors/ ./connectors/\n")
}

func writeEnvAndLabels(b *strings.Builder, m manifest.Manifest, opts Options) {
	keys := make([]string, 0, len(opts.EnvironmentVariables))
	for k := range opts.EnvironmentVariables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "ENV %s=%q\n", k, opts.EnvironmentVariables[k])
	}

	labels := map[string]string{
		"org.opencontainers.image.title":   m.Name,
		"org.opencontainers.image.version": m.Version,
	}
	for k, v := range opts.Labels {
		labels[k] = v
	}
	toolNames := make([]string, 0, len(m.Tools))
	for _, t := range m.Tools {
		toolNames = append(toolNames, t.Name)
	}
	sort.Strings(toolNames)
	labels["mcp.server.tools"] = strings.Join(toolNames, ",")

	labelKeys := make([]string, 0, len(labels))
	for k := range labels {
		labelKeys = append(labelKeys, k)
	}
	sort.Strings(labelKeys)
	for _, k := range labelKeys {
		fmt.Fprintf(b, "LABEL %s=%q\n", k, labels[k])
	}
}

func writeHealthCheck(b *strings.Builder, opts Options) {
	if !opts.healthCheckEnabled() {
		return
	}
	b.WriteString("HEALTHCHECK --interval=30s --timeout=5s --retries=3 CMD [\"node\", \"-e\", \"process.exit(0)\"]\n")
}

func writeSingleStage(b *strings.Builder, baseImage, runtime string, m manifest.Manifest, opts Options) {
	fmt.Fprintf(b, "FROM %s\n", baseImage)
	writeCommonSetup(b)
	writeCopyModules(b, m, opts.ConfigPath)
	if runtime == "python" {
		b.WriteString("RUN pip install --no-cache-dir -r requirements.txt 2>/dev/null || true\n")
	} else {
		b.WriteString("RUN npm install --production\n")
	}
	writeEnvAndLabels(b, m, opts)
	writeHealthCheck(b, opts)
	if runtime == "python" {
		b.WriteString("ENTRYPOINT [\"python\", \"runtime/loader.py\"]\n")
	} else {
		b.WriteString("ENTRYPOINT [\"node\", \"runtime/loader.js\"]\n")
	}
}

func writeMultiStage(b *strings.Builder, m manifest.Manifest, opts Options) {
	b.WriteString("FROM " + baseImageTS + " AS ts-builder\n")
	b.WriteString("WORKDIR /build\n")
	b.WriteString("COPY tools/ ./tools/\n")
	b.WriteString("COPY connectors/ ./connectors/\n")
	b.WriteString("RUN npm install --production || true\n")
	b.WriteString("\n")

	b.WriteString("FROM " + baseImagePy + " AS py-builder\n")
	b.WriteString("WORKDIR /build\n")
	b.WriteString("COPY tools/ ./tools/\n")
	b.WriteString("COPY connectors/ ./connectors/\n")
	b.WriteString("RUN pip install --no-cache-dir -r requirements.txt 2>/dev/null || true\n")
	b.WriteString("\n")

	b.WriteString("FROM " + baseImageTS + "\n")
	writeCommonSetup(b)
	b.WriteString("COPY --from=ts-builder /build/tools/ ./tools/\n")
	b.WriteString("COPY --from=ts-builder /build/connectors/ ./connectors/\n")
	b.WriteString("COPY --from=py-builder /build/tools/ ./tools/\n")
	b.WriteString("COPY --from=py-builder /build/connectors/ ./connectors/\n")
	fmt.Fprintf(b, "COPY manifest.json ./manifest.json\n")
	if opts.ConfigPath != "" {
		fmt.Fprintf(b, "COPY %s ./config/\n", opts.ConfigPath)
	}
	b.WriteString("RUN apt-get update -y && apt-get install -y --no-install-recommends python3 && rm -rf /var/lib/apt/lists/*\n")
	writeEnvAndLabels(b, m, opts)
	writeHealthCheck(b, opts)
	b.WriteString("ENTRYPOINT [\"node\", \"runtime/loader.js\"]\n")
}
