package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldform"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fieldform",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fieldform version %s\n", strings.TrimSpace(fieldform.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
