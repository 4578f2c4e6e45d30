package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of section-combiner",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "section-combiner %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
