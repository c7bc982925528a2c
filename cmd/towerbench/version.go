package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/towerbench"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of towerbench",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("towerbench version %s\n", strings.TrimSpace(towerbench.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
