package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fieldform"
	"github.com/aretw0/fieldform/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [session-id]",
	Short: "Fill a form interactively",
	Long: `Opens the root screen of a form-filling session in an interactive console.
An existing session is resumed; a missing one is started under the given id.
Type 'help' at the prompt for the available commands.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" && len(args) > 0 {
			sessionID = args[0]
		}
		fresh, _ := cmd.Flags().GetBool("fresh")
		quiet, _ := cmd.Flags().GetBool("quiet")

		err = cli.Execute(cli.RunOptions{
			Config:    cfg,
			SessionID: sessionID,
			Fresh:     fresh,
			Quiet:     quiet,
			Version:   fieldform.Version,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Session ID to start or resume")
	runCmd.Flags().Bool("fresh", false, "Discard any stored state for the session before starting")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and status messages")
}
