package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rulescout",
	Short: "Sync federal rulemaking metadata into Notion",
	Long: `Rule Scout tracks proposed rules from the Federal Register and their
public comment dockets on Regulations.gov, keeping a Notion database up to
date as comment periods and docket associations evolve.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
