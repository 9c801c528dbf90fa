package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clifactory/clifactory/internal/errors"
)

func sampleDescription() map[string]any {
	return map[string]any{
		"package_name": "workbench",
		"command_name": "wb",
		"display_name": "Workbench",
		"author":       "Dev Tools Team",
		"license":      "MIT",
		"description":  "Project workbench",
		"cli": map[string]any{
			"name":        "wb",
			"description": "Manage project builds and releases",
			"tagline":     "One tool for the whole build",
			"version":     "2.3.0",
			"options": []any{
				map[string]any{"name": "verbose", "short": "v", "type": "bool", "desc": "Verbose output"},
			},
			"commands": map[string]any{
				"project": map[string]any{
					"description": "Project operations",
					"subcommands": map[string]any{
						"build": map[string]any{
							"description": "Build the project",
							"args": []any{
								map[string]any{"name": "target-dir", "type": "path", "required": true, "desc": "Where to build"},
								map[string]any{"name": "extras", "type": "string", "required": false, "nargs": "*"},
							},
							"options": []any{
								map[string]any{"name": "profile", "type": "choice", "choices": []any{"debug", "release"}, "default": "debug"},
							},
						},
						"clean": map[string]any{"description": "Remove build output"},
					},
				},
				"status": map[string]any{"description": "Show project status"},
			},
		},
		"features": map[string]any{
			"interactive": true,
			"plugins":     false,
		},
		"completion": map[string]any{
			"enabled": true,
			"shells":  []any{"bash", "zsh"},
		},
		"installation": map[string]any{
			"pypi_name":        "workbench-cli",
			"development_path": "./src",
			"extras": map[string]any{
				"apt":   []any{"git"},
				"cargo": []any{"serde"},
			},
		},
		"dependencies": map[string]any{
			"required": []any{
				"click",
				map[string]any{"name": "rg", "type": "command"},
			},
		},
	}
}

func TestBuildCommandTree(t *testing.T) {
	built, err := Build(sampleDescription(), "python")
	require.NoError(t, err)

	assert.Equal(t, "python", built.Target)
	assert.Equal(t, "wb", built.CLI.Root.Name)
	assert.True(t, built.CLI.Root.IsGroup)
	assert.Equal(t, 2, built.CLI.MaxDepth)

	require.Contains(t, built.CLI.Commands, "project")
	require.Contains(t, built.CLI.Commands, "project.build")
	require.Contains(t, built.CLI.Commands, "project.clean")
	require.Contains(t, built.CLI.Commands, "status")

	build := built.CLI.Commands["project.build"]
	assert.Equal(t, []string{"project", "build"}, build.Path)
	assert.Equal(t, "on_project_build", build.HookName)
	assert.Equal(t, 2, build.Depth)
	assert.False(t, build.IsGroup)

	project := built.CLI.Commands["project"]
	assert.True(t, project.IsGroup)
	assert.Equal(t, 1, project.Depth)
	assert.Len(t, project.Subcommands, 2)

	require.Len(t, build.Arguments, 2)
	assert.Equal(t, "target-dir", build.Arguments[0].Name)
	assert.Equal(t, "path", build.Arguments[0].Type)
	assert.True(t, build.Arguments[0].Required)
	assert.True(t, build.Arguments[1].Multiple)
	assert.Equal(t, "*", build.Arguments[1].Nargs)

	require.Len(t, build.Options, 1)
	assert.Equal(t, "choice", build.Options[0].Type)
	assert.Equal(t, []string{"debug", "release"}, build.Options[0].Choices)
}

func TestBuildHookConventionPerTarget(t *testing.T) {
	for target, want := range map[string]string{
		"python":     "on_project_build",
		"rust":       "on_project_build",
		"nodejs":     "onProjectBuild",
		"typescript": "onProjectBuild",
	} {
		built, err := Build(sampleDescription(), target)
		require.NoError(t, err, target)
		assert.Equal(t, want, built.CLI.Commands["project.build"].HookName, target)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	description := sampleDescription()
	first, err := Build(description, "nodejs")
	require.NoError(t, err)
	second, err := Build(description, "nodejs")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Every command reachable from the root must appear in the flattened table.
func TestBuildTreeIndexInvariant(t *testing.T) {
	built, err := Build(sampleDescription(), "python")
	require.NoError(t, err)

	var walk func(cmds []*Command)
	count := 0
	walk = func(cmds []*Command) {
		for _, cmd := range cmds {
			count++
			indexed, ok := built.CLI.Commands[cmd.DottedPath()]
			require.True(t, ok, "missing table entry for %s", cmd.DottedPath())
			assert.Same(t, cmd, indexed)
			walk(cmd.Subcommands)
		}
	}
	walk(built.CLI.Root.Subcommands)
	assert.Equal(t, len(built.CLI.Commands), count)
}

func TestBuildProjectAndInstallation(t *testing.T) {
	built, err := Build(sampleDescription(), "python")
	require.NoError(t, err)

	assert.Equal(t, "Workbench", built.Project.DisplayName)
	assert.Equal(t, "2.3.0", built.Project.Version)
	assert.Equal(t, "MIT", built.Project.License)
	assert.Equal(t, "workbench", built.Project.PackageName)

	assert.Equal(t, "workbench-cli", built.Installation.RegistryName)
	assert.Equal(t, "./src", built.Installation.DevelopmentPath)
	assert.Equal(t, []string{"git"}, built.Installation.Extras["apt"])

	assert.Equal(t, []string{"click"}, built.Dependencies["python"])
	assert.Equal(t, []string{"rg", "git"}, built.Dependencies["system"])
	assert.Equal(t, []string{"serde"}, built.Dependencies["rust"])
}

func TestBuildFeatureFlagsAndCompletion(t *testing.T) {
	built, err := Build(sampleDescription(), "python")
	require.NoError(t, err)

	assert.True(t, built.Flags.Interactive)
	assert.False(t, built.Flags.Plugins)
	assert.True(t, built.CLI.Completion.Enabled)
	assert.Equal(t, []string{"bash", "zsh"}, built.CLI.Completion.Shells)
}

func TestBuildCompletionDefaults(t *testing.T) {
	built, err := Build(map[string]any{"cli": map[string]any{"name": "x"}}, "python")
	require.NoError(t, err)
	assert.True(t, built.CLI.Completion.Enabled)
	assert.Equal(t, []string{"bash", "zsh", "fish"}, built.CLI.Completion.Shells)
}

func TestBuildSourceCopyDoesNotAlias(t *testing.T) {
	description := sampleDescription()
	built, err := Build(description, "python")
	require.NoError(t, err)

	description["cli"].(map[string]any)["name"] = "mutated"
	assert.Equal(t, "wb", built.Source["cli"].(map[string]any)["name"])
}

func TestBuildUnknownTypeIsDefect(t *testing.T) {
	description := sampleDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{
			"description": "Run",
			"args": []any{
				map[string]any{"name": "count", "type": "integer"},
			},
		},
	}

	_, err := Build(description, "python")
	require.Error(t, err)
	assert.True(t, errors.IsDefect(err))
	var perr *errors.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeUnknownType, perr.Code)
}

func TestBuildChoicesCoupledToChoiceType(t *testing.T) {
	description := sampleDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{
			"description": "Run",
			"options": []any{
				map[string]any{"name": "format", "type": "str", "choices": []any{"a", "b"}},
				map[string]any{"name": "profile", "type": "choice", "choices": []any{"debug", "release"}},
			},
		},
	}

	built, err := Build(description, "python")
	require.NoError(t, err)

	options := built.CLI.Commands["run"].Options
	require.Len(t, options, 2)
	for _, opt := range options {
		if opt.Type == "choice" {
			assert.Equal(t, []string{"debug", "release"}, opt.Choices)
		} else {
			assert.Empty(t, opt.Choices, "option %s must not carry choices", opt.Name)
		}
	}
}

func TestBuildBadHookIsDefect(t *testing.T) {
	description := sampleDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = map[string]any{
		"run": map[string]any{"description": "Run", "hook": "onRun"},
	}

	_, err := Build(description, "python")
	require.Error(t, err)
	assert.True(t, errors.IsDefect(err))
}

func TestBuildDuplicateListCommandsIsDefect(t *testing.T) {
	description := sampleDescription()
	cli := description["cli"].(map[string]any)
	cli["commands"] = []any{
		map[string]any{"name": "run", "description": "Run"},
		map[string]any{"name": "run", "description": "Run again"},
	}

	_, err := Build(description, "python")
	require.Error(t, err)
	assert.True(t, errors.IsDefect(err))
	var perr *errors.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeBrokenTree, perr.Code)
}

func TestBuildUnknownTarget(t *testing.T) {
	_, err := Build(sampleDescription(), "fortran")
	require.Error(t, err)
	var perr *errors.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeUnknownTarget, perr.Code)
}
