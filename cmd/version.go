package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clifactory/clifactory/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
