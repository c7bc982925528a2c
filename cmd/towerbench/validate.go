package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	Long:  `Loads the configuration and reports every invalid field at once.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fail("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			fail("validation failed:\n%v", err)
		}
		fmt.Printf("Configuration is valid: %s on %s, sizes %v\n", cfg.Model, cfg.Puzzle, cfg.PuzzleSizes)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
