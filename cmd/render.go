package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/clifactory/clifactory/internal/renderer"
	"github.com/clifactory/clifactory/internal/validation"
)

var renderCmd = &cobra.Command{
	Use:   "render <description.yml>",
	Short: "Generate program sources for one or more targets",
	Long: `Render compiles a description and writes the generated sources under
<output>/<target>/. Targets are independent: a missing optional
component degrades that target's output with a visible note, and a
failure in one target never blocks the others.`,
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
		if err := p.Start(cmd.Context()); err != nil {
			return err
		}

		outputDir, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		results := p.RenderBatch(cmd.Context(), description, targets, args[0], mode)

		failed := 0
		for _, result := range results {
			fmt.Fprintf(os.Stdout, "== %s ==\n", result.Target)
			if result.Result == nil {
				// Validation or IR building blocked this target.
				if result.Report != nil {
					validation.WriteReport(os.Stdout, result.Report)
				}
				if result.Err != nil {
					fmt.Fprintf(os.Stdout, "error: %v\n", result.Err)
				}
				failed++
				continue
			}
			if result.Result.State == renderer.StateFailed {
				fmt.Fprintf(os.Stdout, "error: %v\n", result.Result.Err)
				failed++
				continue
			}
			for _, note := range result.Result.Degradations {
				fmt.Fprintf(os.Stdout, "warning: %s\n", note)
			}
			if err := writeFiles(outputDir, result.Target, result.Result.Files); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d targets failed", failed, len(results))
		}
		return nil
	},
}

// writeFiles persists one target's rendered files under dir/<target>/.
func writeFiles(dir, target string, files map[string]string) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		full := filepath.Join(dir, target, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		if err := os.WriteFile(full, []byte(files[path]), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", full, err)
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", full)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringArrayP("target", "t", nil, "target language to render (repeatable, default all)")
	renderCmd.Flags().String("mode", "lenient", "validation mode (strict, lenient)")
	renderCmd.Flags().StringP("output", "o", "./generated", "base directory for generated files")
}
