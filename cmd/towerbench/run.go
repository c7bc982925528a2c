package main

import (
	"errors"
	"os"

	"github.com/aretw0/towerbench/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an evaluation over the configured puzzle sizes",
	Long: `Plays one episode per configured size against the configured agent, prints a
markdown report and writes results.json to the output directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fail("%v", err)
		}
		debug, _ := cmd.Flags().GetBool("debug")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		_, _, err = cli.RunExperiment(ctx, cli.ExperimentOptions{Config: cfg, Debug: debug, Out: os.Stdout})
		if err != nil {
			if sig := ctx.Signal(); sig != nil && errors.Is(err, ctx.Err()) {
				fail("interrupted by %v, partial results saved", sig)
			}
			fail("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntSlice("sizes", nil, "Puzzle sizes to evaluate (overrides puzzle_sizes)")
	runCmd.Flags().Int("concurrency", 0, "Episodes to run in parallel")
	runCmd.Flags().StringP("output", "o", "", "Directory for results.json")
}
