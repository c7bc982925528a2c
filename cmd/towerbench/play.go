package main

import (
	"os"

	"github.com/aretw0/towerbench/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an episode yourself in the terminal",
	Long: `Starts one episode and reads a move list per turn from standard input,
e.g. [[1, 0, 2], [2, 0, 1]]. An empty list or end of input gives up.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fail("%v", err)
		}
		debug, _ := cmd.Flags().GetBool("debug")
		size, _ := cmd.Flags().GetInt("size")
		id, _ := cmd.Flags().GetString("session")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if _, err := cli.RunPlay(ctx, cli.PlayOptions{
			Config:    cfg,
			Size:      size,
			SessionID: id,
			Debug:     debug,
			In:        os.Stdin,
			Out:       os.Stdout,
		}); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntP("size", "n", 3, "Number of disks")
	playCmd.Flags().String("session", "", "Session ID (generated when empty)")
}
