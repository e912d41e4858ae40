// Package dockerfile implements C6: choosing single-stage vs.
// multi-stage Dockerfile layout from module composition and emitting a
// buildable, validated artifact.
package dockerfile

import "manifestctl/pkg/module"

// Composition summarizes a module set's language mix, driving mode
// selection.
type Composition struct {
	HasTS           bool
	HasPy           bool
	ToolCount       int
	ConnectorCount  int
}

// Analyze inspects the module set's languages and kinds.
func Analyze(modules []module.Module) Composition {
	var c Composition
	for _, m := range modules {
		switch m.Language {
		case module.LangTS:
			c.HasTS = true
		case module.LangPy:
			c.HasPy = true
		}
		switch m.Kind {
		case module.KindTool:
			c.ToolCount++
		case module.KindConnector:
			c.ConnectorCount++
		}
	}
	return c
}

// Mode is the Dockerfile synthesis mode.
type Mode string

const (
	ModeSingleStageTS Mode = "single-stage-ts"
	ModeSingleStagePy Mode = "single-stage-py"
	ModeMultiStage     Mode = "multi-stage"
)

// SelectMode picks the synthesis mode from the module composition.
func (c Composition) SelectMode() Mode {
	switch {
	case c.HasTS && c.HasPy:
		return ModeMultiStage
	case c.HasTS:
		return ModeSingleStageTS
	default:
		return ModeSingleStagePy
	}
}
