package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clifactory/clifactory/internal/ir"
	"github.com/clifactory/clifactory/internal/validation"
)

var buildCmd = &cobra.Command{
	Use:   "build <description.yml>",
	Short: "Compile a description and print a per-target summary",
	Long: `Build validates a description, compiles it to the intermediate
representation for each requested target, and prints the command tree
together with the derived feature requirements. Nothing is written to
disk; use render for that.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := resolveTargets(cmd)
		if err != nil {
			return err
		}
		mode, err := parseMode(cmd)
		if err != nil {
			return err
		}
		description, err := loadDescription(args[0])
		if err != nil {
			return err
		}

		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		for _, target := range targets {
			built, report, err := p.Compile(cmd.Context(), description, target, args[0], mode)
			if err != nil {
				if report != nil {
					validation.WriteReport(os.Stdout, report)
				}
				return err
			}

			requirements := p.Analyze(built)
			fmt.Fprintf(os.Stdout, "== %s ==\n", target)
			fmt.Fprintf(os.Stdout, "project:    %s %s\n", projectName(built.Project), built.Project.Version)
			fmt.Fprintf(os.Stdout, "commands:   %d (max depth %d)\n", len(built.CLI.Commands), built.CLI.MaxDepth)
			fmt.Fprintf(os.Stdout, "components: %s\n", strings.Join(requirements.Components(), ", "))
			fmt.Fprintf(os.Stdout, "complexity: %d/100\n", requirements.ComplexityScore)

			paths := make([]string, 0, len(built.CLI.Commands))
			for path := range built.CLI.Commands {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				command := built.CLI.Commands[path]
				fmt.Fprintf(os.Stdout, "  %-24s -> %s\n", path, command.HookName)
			}
		}
		return nil
	},
}

// projectName picks the first populated identity field, the same fallback
// order renderers use for package naming.
func projectName(p ir.ProjectInfo) string {
	for _, candidate := range []string{p.DisplayName, p.PackageName, p.CommandName} {
		if candidate != "" {
			return candidate
		}
	}
	return "cli"
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringArrayP("target", "t", nil, "target language to compile for (repeatable, default all)")
	buildCmd.Flags().String("mode", "lenient", "validation mode (strict, lenient)")
}
