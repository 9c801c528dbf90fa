// Package features derives which optional runtime capabilities a compiled
// CLI actually needs, so renderers can skip the subsystems a target never
// uses.
//
// Analysis is a pure function of the IR. It performs no I/O and can be
// re-run cheaply whenever thresholds change, without re-parsing the source
// description.
package features

import (
	"strings"

	"github.com/clifactory/clifactory/internal/config"
	"github.com/clifactory/clifactory/internal/ir"
)

// Component names the registry knows the optional features by.
const (
	ComponentArgumentParser = "argument-parser"
	ComponentRichOutput     = "rich-output"
	ComponentInteractive    = "interactive-shell"
	ComponentCompletion     = "shell-completion"
	ComponentPluginLoader   = "plugin-loader"
	ComponentConfigManager  = "config-manager"
)

// emphasisMarkers are the help-text markup fragments that force rich
// formatting support.
var emphasisMarkers = []string{
	"[bold]", "[italic]", "[dim]", "[green]", "[red]", "[yellow]", "[blue]", "**",
}

// Requirements is the derived capability set for one IR, plus a complexity
// score in [0,100] used for reporting and test triage.
type Requirements struct {
	RichFormatting    bool
	PromptSupport     bool
	CompletionSupport bool
	ConfigManager     bool
	PluginSupport     bool
	ComplexityScore   int
}

// Components lists the registry components this requirement set needs, in a
// fixed order. The argument parser is always first: every generated CLI
// parses arguments, so it is mandatory for every render.
func (r Requirements) Components() []string {
	components := []string{ComponentArgumentParser}
	if r.RichFormatting {
		components = append(components, ComponentRichOutput)
	}
	if r.PromptSupport {
		components = append(components, ComponentInteractive)
	}
	if r.CompletionSupport {
		components = append(components, ComponentCompletion)
	}
	if r.PluginSupport {
		components = append(components, ComponentPluginLoader)
	}
	if r.ConfigManager {
		components = append(components, ComponentConfigManager)
	}
	return components
}

// Analyzer applies configured thresholds and weights to an IR.
type Analyzer struct {
	cfg config.FeaturesConfig
}

// NewAnalyzer returns an analyzer using the given thresholds. Zero-valued
// settings fall back to the documented defaults.
func NewAnalyzer(cfg config.FeaturesConfig) *Analyzer {
	if cfg.RichDescriptionThreshold <= 0 {
		cfg.RichDescriptionThreshold = 120
	}
	if cfg.RichCommandThreshold <= 0 {
		cfg.RichCommandThreshold = 2
	}
	if cfg.Weights == (config.ScoreWeights{}) {
		cfg.Weights = config.DefaultWeights()
	}
	return &Analyzer{cfg: cfg}
}

// Analyze derives the requirements for one compiled CLI.
func (a *Analyzer) Analyze(built *ir.IR) Requirements {
	req := Requirements{
		RichFormatting:    a.needsRichFormatting(built.CLI),
		PromptSupport:     built.Flags.Interactive,
		CompletionSupport: built.CLI.Completion.Enabled,
		ConfigManager:     built.Flags.ConfigFile,
		PluginSupport:     built.Flags.Plugins,
	}
	req.ComplexityScore = a.score(built.CLI, req)
	return req
}

// needsRichFormatting is a UX heuristic, not a hard rule: long help text,
// markup in descriptions, custom help sections, or a wide top-level command
// surface all push a CLI past plain output.
func (a *Analyzer) needsRichFormatting(schema *ir.CLISchema) bool {
	if len(schema.Root.Subcommands) > a.cfg.RichCommandThreshold {
		return true
	}
	if len(schema.HeaderSections) > 0 || schema.FooterNote != "" {
		return true
	}
	for _, cmd := range schema.Commands {
		if len(cmd.Description) > a.cfg.RichDescriptionThreshold {
			return true
		}
		if hasEmphasis(cmd.Description) {
			return true
		}
	}
	return hasEmphasis(schema.Description)
}

func hasEmphasis(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range emphasisMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// score computes the weighted complexity sum, clamped to [0,100]. The
// weights are stable configuration so scores stay comparable over time.
func (a *Analyzer) score(schema *ir.CLISchema, req Requirements) int {
	w := a.cfg.Weights

	optionCount := len(schema.GlobalOptions)
	for _, cmd := range schema.Commands {
		optionCount += len(cmd.Options)
	}

	enabled := 0
	for _, on := range []bool{
		req.RichFormatting, req.PromptSupport, req.CompletionSupport,
		req.ConfigManager, req.PluginSupport,
	} {
		if on {
			enabled++
		}
	}

	score := len(schema.Commands)*w.Command +
		schema.MaxDepth*w.Depth +
		optionCount*w.Option +
		enabled*w.Feature

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
