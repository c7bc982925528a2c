package main

import (
	"fmt"

	"github.com/aretw0/towerbench/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP turn API",
	Long: `Exposes episodes over a JSON API so remote agents can play turn by turn.
Prometheus metrics are served on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fail("%v", err)
		}
		debug, _ := cmd.Flags().GetBool("debug")
		port, _ := cmd.Flags().GetInt("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		fmt.Printf("Starting towerbench server on :%d\n", port)
		if err := cli.Serve(ctx, cli.ServeOptions{Config: cfg, Port: port, Debug: debug}); err != nil {
			fail("%v", err)
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Printf("Server stopped gracefully (%v)\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
