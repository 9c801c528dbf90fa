package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalDescription returns a valid description tests can then break in
// targeted ways.
func minimalDescription() map[string]any {
	return map[string]any{
		"package_name": "demo",
		"cli": map[string]any{
			"name":        "demo",
			"description": "A demo CLI",
			"commands": map[string]any{
				"build": map[string]any{
					"description": "Build the project",
				},
			},
		},
	}
}

func runValidation(t *testing.T, description map[string]any, target string, mode Mode) *Report {
	t.Helper()
	report, err := ValidateAll(description, target, mode)
	require.NoError(t, err)
	return report
}

func findDiagnostic(report *Report, contains string) (Diagnostic, bool) {
	for _, d := range report.Diagnostics {
		if strings.Contains(d.Message, contains) {
			return d, true
		}
	}
	return Diagnostic{}, false
}

func TestMinimalDescriptionPasses(t *testing.T) {
	report := runValidation(t, minimalDescription(), "python", ModeLenient)
	assert.True(t, report.IsValid(), "diagnostics: %v", report.Diagnostics)
}

func TestDuplicateSiblingCommands(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	// The list form is the only way a parsed description can carry two
	// siblings with the same name.
	cli["commands"] = []any{
		map[string]any{"name": "build", "description": "Build once"},
		map[string]any{"name": "build", "description": "Build again"},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	d, found := findDiagnostic(report, "duplicate command name")
	require.True(t, found)
	assert.True(t, d.Severity.Fails())
	assert.Equal(t, "cli.commands[1]", d.Location, "the second occurrence is reported")
}

func TestAtMostOneDefaultPerSiblingGroup(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"build": map[string]any{"description": "Build", "default": true},
		"run":   map[string]any{"description": "Run", "default": true},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, "already has a default command")
	assert.True(t, found)
}

func TestVariadicOrdering(t *testing.T) {
	makeDescription := func(args []any) map[string]any {
		description := minimalDescription()
		cli := description["cli"].(map[string]any)
		cli["commands"] = map[string]any{
			"copy": map[string]any{"description": "Copy files", "args": args},
		}
		return description
	}

	valid := makeDescription([]any{
		map[string]any{"name": "name", "required": true},
		map[string]any{"name": "files", "required": false, "nargs": "*"},
	})
	report := runValidation(t, valid, "python", ModeLenient)
	assert.True(t, report.IsValid(), "diagnostics: %v", report.Diagnostics)

	swapped := makeDescription([]any{
		map[string]any{"name": "files", "required": false, "nargs": "*"},
		map[string]any{"name": "name", "required": true},
	})
	report = runValidation(t, swapped, "python", ModeLenient)
	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, "follows an optional argument")
	assert.True(t, found)
}

func TestAtMostOneVariadicArgument(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"merge": map[string]any{
			"description": "Merge inputs",
			"args": []any{
				map[string]any{"name": "sources", "nargs": "*", "required": false},
				map[string]any{"name": "extras", "nargs": "+", "required": false},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)
	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, "already has a variadic argument")
	assert.True(t, found)
}

func TestArgumentDefaultTypeMismatch(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"serve": map[string]any{
			"description": "Serve",
			"args": []any{
				map[string]any{"name": "verbose", "type": "bool", "default": "yes", "required": false},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)
	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, "is not a boolean")
	assert.True(t, found)
}

func TestChoiceOptionRequiresChoices(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"deploy": map[string]any{
			"description": "Deploy",
			"options": []any{
				map[string]any{"name": "environment", "type": "choice"},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	d, found := findDiagnostic(report, `option "environment" declares type choice`)
	require.True(t, found, "the message must identify the option by name")
	assert.Equal(t, SeverityError, d.Severity)
}

func TestDuplicateShortOptions(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{
			"description": "Run",
			"options": []any{
				map[string]any{"name": "verbose", "short": "v"},
				map[string]any{"name": "version", "short": "v"},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)
	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, `already used by option "verbose"`)
	assert.True(t, found)
}

func TestNonKebabOptionNameWarns(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{
			"description": "Run",
			"options": []any{
				map[string]any{"name": "dryRun"},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.True(t, report.IsValid(), "kebab-case is advisory in lenient mode")
	d, found := findDiagnostic(report, "is not kebab-case")
	require.True(t, found)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Contains(t, d.Suggestion, "dry-run")

	report.Mode = ModeStrict
	assert.False(t, report.IsValid())
}

func TestUnknownTypesRejected(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{
			"description": "Run",
			"args": []any{
				map[string]any{"name": "count", "type": "integer"},
			},
			"options": []any{
				map[string]any{"name": "level", "type": "enum"},
			},
		},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, `unknown argument type "integer"`)
	assert.True(t, found)
	_, found = findDiagnostic(report, `unknown option type "enum"`)
	assert.True(t, found)
}

func TestHookDeclarationChecks(t *testing.T) {
	makeDescription := func(hook string) map[string]any {
		description := minimalDescription()
		cli := description["cli"].(map[string]any)
		cli["commands"] = map[string]any{
			"build": map[string]any{"description": "Build", "hook": hook},
		}
		return description
	}

	t.Run("wrong convention family is an error", func(t *testing.T) {
		report := runValidation(t, makeDescription("onBuild"), "python", ModeLenient)
		assert.False(t, report.IsValid())
		d, found := findDiagnostic(report, "does not match the snake_case naming convention")
		require.True(t, found)
		assert.Contains(t, d.Suggestion, "on_build")
	})

	t.Run("valid but unexpected hook warns", func(t *testing.T) {
		report := runValidation(t, makeDescription("on_compile"), "python", ModeLenient)
		assert.True(t, report.IsValid())
		d, found := findDiagnostic(report, "differs from the derived hook")
		require.True(t, found)
		assert.Contains(t, d.Suggestion, "on_build")
	})

	t.Run("derived hook passes per target family", func(t *testing.T) {
		for _, target := range []string{"python", "rust", "nodejs", "typescript"} {
			report := runValidation(t, minimalDescription(), target, ModeLenient)
			assert.True(t, report.IsValid(), "target %s: %v", target, report.Diagnostics)
		}
	})
}

func TestExitCodeRange(t *testing.T) {
	description := minimalDescription()
	description["error_codes"] = map[string]any{
		"ok":        0,
		"not_found": 4,
		"reserved":  126,
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	d, found := findDiagnostic(report, "outside the portable range")
	require.True(t, found)
	assert.Equal(t, "error_codes.reserved", d.Location)
}

func TestMissingCLISectionIsCritical(t *testing.T) {
	report := runValidation(t, map[string]any{"package_name": "demo"}, "python", ModeLenient)

	assert.False(t, report.IsValid())
	d, found := findDiagnostic(report, "no cli section")
	require.True(t, found)
	assert.Equal(t, SeverityCritical, d.Severity)
}

func TestUnknownTopLevelSectionWarns(t *testing.T) {
	description := minimalDescription()
	description["deployment"] = map[string]any{}

	report := runValidation(t, description, "python", ModeLenient)

	assert.True(t, report.IsValid())
	d, found := findDiagnostic(report, `unknown top-level section "deployment"`)
	require.True(t, found)
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestCompletionShells(t *testing.T) {
	description := minimalDescription()
	description["completion"] = map[string]any{
		"enabled": true,
		"shells":  []any{"bash", "powershell"},
	}

	report := runValidation(t, description, "python", ModeLenient)

	assert.False(t, report.IsValid())
	d, found := findDiagnostic(report, `unsupported completion shell "powershell"`)
	require.True(t, found)
	assert.Equal(t, "completion.shells[1]", d.Location)
}

func TestCompletionEnabledMustBeBool(t *testing.T) {
	description := minimalDescription()
	description["completion"] = map[string]any{"enabled": "yes"}

	report := runValidation(t, description, "python", ModeLenient)
	assert.False(t, report.IsValid())
	_, found := findDiagnostic(report, "must be a boolean")
	assert.True(t, found)
}

func TestWalkCommandsIsDeterministic(t *testing.T) {
	description := minimalDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"zeta":  map[string]any{"description": "Z"},
		"alpha": map[string]any{"description": "A", "subcommands": map[string]any{
			"inner": map[string]any{"description": "I"},
		}},
		"mid": map[string]any{"description": "M"},
	}

	var first []string
	for _, e := range walkCommands(description) {
		first = append(first, e.Location)
	}
	assert.Equal(t, []string{
		"cli.commands.alpha",
		"cli.commands.alpha.subcommands.inner",
		"cli.commands.mid",
		"cli.commands.zeta",
	}, first)

	for i := 0; i < 10; i++ {
		var again []string
		for _, e := range walkCommands(description) {
			again = append(again, e.Location)
		}
		assert.Equal(t, first, again)
	}
}
