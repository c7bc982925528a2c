package main

import (
	"fmt"
	"os"

	"github.com/aretw0/towerbench/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "towerbench",
	Short: "Towerbench evaluates agents on multi-turn Tower of Hanoi episodes",
	Long: `Towerbench plays Tower of Hanoi episodes against an agent one batch of moves at a time,
enforcing turn, move, repeated-invalid and revisit limits, and reports how each episode ended.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose debug logging")
	rootCmd.PersistentFlags().String("model", "", "Model name (\"optimal\" plays the built-in reference solver)")
}

// loadConfig reads --config over the defaults and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("model") {
		cfg.Model, _ = cmd.Flags().GetString("model")
	}
	if f := cmd.Flags().Lookup("sizes"); f != nil && f.Changed {
		cfg.PuzzleSizes, _ = cmd.Flags().GetIntSlice("sizes")
	}
	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		cfg.OutputDir, _ = cmd.Flags().GetString("output")
	}
	return cfg, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
