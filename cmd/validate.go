package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clifactory/clifactory/internal/naming"
	"github.com/clifactory/clifactory/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <description.yml>",
	Short: "Validate a CLI description without generating anything",
	Long: `Validate runs the full validator set against a description file and
prints every finding with its location and severity. In strict mode
warnings also fail the run; lenient mode fails only on errors.`,
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

		failed := false
		for _, target := range targets {
			report, err := validation.ValidateAll(description, target, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "== %s ==\n", target)
			validation.WriteReport(os.Stdout, report)
			if !report.IsValid() {
				failed = true
			}
		}
		if failed {
			return fmt.Errorf("%s failed validation", args[0])
		}
		return nil
	},
}

// resolveTargets reads the repeatable --target flag, defaulting to every
// known target.
func resolveTargets(cmd *cobra.Command) ([]string, error) {
	targets, err := cmd.Flags().GetStringArray("target")
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return naming.Targets(), nil
	}
	return targets, nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringArrayP("target", "t", nil, "target language to validate for (repeatable, default all)")
	validateCmd.Flags().String("mode", "lenient", "validation mode (strict, lenient)")
}
