package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clifactory/clifactory/internal/naming"
	"github.com/clifactory/clifactory/internal/renderer"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported target languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderers := renderer.NewRegistry()
		for _, target := range renderers.Available() {
			convention, _ := naming.ConventionFor(target)
			fmt.Fprintf(os.Stdout, "%-12s hooks: %s\n", target, convention)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
