package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clifactory/clifactory/internal/config"
	"github.com/clifactory/clifactory/internal/ir"
)

func buildIR(t *testing.T, description map[string]any) *ir.IR {
	t.Helper()
	built, err := ir.Build(description, "python")
	require.NoError(t, err)
	return built
}

func smallDescription() map[string]any {
	return map[string]any{
		"package_name": "tiny",
		"cli": map[string]any{
			"name":        "tiny",
			"description": "Tiny tool",
			"commands": map[string]any{
				"run": map[string]any{"description": "Run it"},
			},
		},
		"completion": map[string]any{"enabled": false},
	}
}

func TestSmallCLINeedsNothingOptional(t *testing.T) {
	analyzer := NewAnalyzer(config.Default().Features)
	req := analyzer.Analyze(buildIR(t, smallDescription()))

	assert.False(t, req.RichFormatting)
	assert.False(t, req.PromptSupport)
	assert.False(t, req.CompletionSupport)
	assert.False(t, req.ConfigManager)
	assert.False(t, req.PluginSupport)
	assert.Equal(t, []string{ComponentArgumentParser}, req.Components())
}

func TestRichFormattingTriggers(t *testing.T) {
	analyzer := NewAnalyzer(config.Default().Features)

	t.Run("long description", func(t *testing.T) {
		description := smallDescription()
		cli := description["cli"].(map[string]any)
		cli["commands"] = map[string]any{
			"run": map[string]any{"description": strings.Repeat("very long help ", 20)},
		}
		req := analyzer.Analyze(buildIR(t, description))
		assert.True(t, req.RichFormatting)
	})

	t.Run("emphasis markers", func(t *testing.T) {
		description := smallDescription()
		cli := description["cli"].(map[string]any)
		cli["commands"] = map[string]any{
			"run": map[string]any{"description": "Run with [bold]style[/bold]"},
		}
		req := analyzer.Analyze(buildIR(t, description))
		assert.True(t, req.RichFormatting)
	})

	t.Run("many top-level commands", func(t *testing.T) {
		description := smallDescription()
		cli := description["cli"].(map[string]any)
		cli["commands"] = map[string]any{
			"one":   map[string]any{"description": "One"},
			"two":   map[string]any{"description": "Two"},
			"three": map[string]any{"description": "Three"},
		}
		req := analyzer.Analyze(buildIR(t, description))
		assert.True(t, req.RichFormatting)
	})

	t.Run("footer note", func(t *testing.T) {
		description := smallDescription()
		cli := description["cli"].(map[string]any)
		cli["footer_note"] = "See the manual for more."
		req := analyzer.Analyze(buildIR(t, description))
		assert.True(t, req.RichFormatting)
	})
}

func TestFlagMirroring(t *testing.T) {
	description := smallDescription()
	description["features"] = map[string]any{
		"interactive": true,
		"plugins":     true,
		"config":      true,
	}
	description["completion"] = map[string]any{"enabled": true}

	analyzer := NewAnalyzer(config.Default().Features)
	req := analyzer.Analyze(buildIR(t, description))

	assert.True(t, req.PromptSupport)
	assert.True(t, req.PluginSupport)
	assert.True(t, req.ConfigManager)
	assert.True(t, req.CompletionSupport)
	assert.Equal(t, []string{
		ComponentArgumentParser,
		ComponentInteractive,
		ComponentCompletion,
		ComponentPluginLoader,
		ComponentConfigManager,
	}, req.Components())
}

func TestComplexityScore(t *testing.T) {
	analyzer := NewAnalyzer(config.FeaturesConfig{
		RichDescriptionThreshold: 120,
		RichCommandThreshold:     2,
		Weights:                  config.ScoreWeights{Command: 4, Depth: 8, Option: 2, Feature: 10},
	})

	// One command, depth one, no options, no features: 4 + 8 = 12.
	req := analyzer.Analyze(buildIR(t, smallDescription()))
	assert.Equal(t, 12, req.ComplexityScore)
}

func TestComplexityScoreClamped(t *testing.T) {
	commands := map[string]any{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z"} {
		commands[name] = map[string]any{"description": "Command " + name}
	}
	description := smallDescription()
	description["cli"].(map[string]any)["commands"] = commands

	analyzer := NewAnalyzer(config.Default().Features)
	req := analyzer.Analyze(buildIR(t, description))

	assert.Equal(t, 100, req.ComplexityScore)
	assert.LessOrEqual(t, req.ComplexityScore, 100)
}

func TestAnalyzeIsPureAndRepeatable(t *testing.T) {
	built := buildIR(t, smallDescription())
	analyzer := NewAnalyzer(config.Default().Features)

	first := analyzer.Analyze(built)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, analyzer.Analyze(built))
	}
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	analyzer := NewAnalyzer(config.FeaturesConfig{})
	req := analyzer.Analyze(buildIR(t, smallDescription()))
	assert.Equal(t, 12, req.ComplexityScore)
}
