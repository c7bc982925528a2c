package main

import (
	"os"

	"github.com/aretw0/towerbench/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Show a stored session",
	Long: `Prints a persisted session as a markdown report, a mermaid trajectory or raw JSON.
Without an ID it lists the stored sessions.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fail("%v", err)
		}

		if len(args) == 0 {
			if err := cli.ListSessions(cmd.Context(), cfg, os.Stdout); err != nil {
				fail("%v", err)
			}
			return
		}

		format, _ := cmd.Flags().GetString("format")
		if err := cli.Inspect(cmd.Context(), cli.InspectOptions{
			Config:    cfg,
			SessionID: args[0],
			Format:    format,
			Out:       os.Stdout,
		}); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", cli.FormatReport, "Output format: report, mermaid or json")
}
