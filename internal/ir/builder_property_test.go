//go:build property

package ir

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/clifactory/clifactory/internal/naming"
)

// TestBuilderProperties validates the structural guarantees of IR building
// over generated command trees.
func TestBuilderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	commandNames := []string{
		"build", "run", "sync", "fetch", "status", "deploy", "clean", "init",
	}

	// Generates a two-level command tree description from index picks into
	// the name pool. Duplicate picks collapse in the map form, which is
	// exactly what a parsed map-form description would do.
	descriptionGen := gen.SliceOfN(6, gen.IntRange(0, len(commandNames)-1)).Map(
		func(picks []int) map[string]any {
			commands := map[string]any{}
			for i, pick := range picks {
				name := commandNames[pick]
				spec := map[string]any{"description": "generated " + name}
				if i%2 == 0 {
					sub := commandNames[(pick+3)%len(commandNames)]
					spec["subcommands"] = map[string]any{
						sub: map[string]any{"description": "generated " + sub},
					}
				}
				commands[name] = spec
			}
			return map[string]any{
				"package_name": "generated",
				"cli": map[string]any{
					"name":        "generated",
					"description": "Generated CLI",
					"commands":    commands,
				},
			}
		})

	targetGen := gen.OneConstOf("python", "rust", "nodejs", "typescript")

	properties.Property("building twice yields structurally identical IR", prop.ForAll(
		func(description map[string]any, target string) bool {
			first, err1 := Build(description, target)
			second, err2 := Build(description, target)
			if err1 != nil || err2 != nil {
				return false
			}
			return equalCommands(first.CLI.Root, second.CLI.Root) &&
				len(first.CLI.Commands) == len(second.CLI.Commands)
		},
		descriptionGen,
		targetGen,
	))

	properties.Property("every reachable command is indexed", prop.ForAll(
		func(description map[string]any, target string) bool {
			built, err := Build(description, target)
			if err != nil {
				return false
			}
			ok := true
			var walk func(cmds []*Command)
			walk = func(cmds []*Command) {
				for _, cmd := range cmds {
					if built.CLI.Commands[cmd.DottedPath()] != cmd {
						ok = false
						return
					}
					walk(cmd.Subcommands)
				}
			}
			walk(built.CLI.Root.Subcommands)
			return ok
		},
		descriptionGen,
		targetGen,
	))

	properties.Property("derived hooks match the target convention", prop.ForAll(
		func(description map[string]any, target string) bool {
			built, err := Build(description, target)
			if err != nil {
				return false
			}
			conv, _ := naming.ConventionFor(target)
			for _, cmd := range built.CLI.Commands {
				if !naming.ValidHookName(cmd.HookName, conv) {
					return false
				}
			}
			return true
		},
		descriptionGen,
		targetGen,
	))

	properties.TestingRun(t)
}

func equalCommands(a, b *Command) bool {
	if a.Name != b.Name || a.HookName != b.HookName || a.Depth != b.Depth ||
		len(a.Subcommands) != len(b.Subcommands) {
		return false
	}
	for i := range a.Subcommands {
		if !equalCommands(a.Subcommands[i], b.Subcommands[i]) {
			return false
		}
	}
	return true
}
