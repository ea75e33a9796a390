package main

import (
	"fmt"

	"github.com/aretw0/fieldform/internal/cli"
	"github.com/aretw0/fieldform/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the metamodel as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the definition tree. With --session
the definitions that session has reached are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			model, err := cli.LoadSchema(cmd.Context(), cfg.Schema)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(model.Root(), nil))
			return nil
		}

		return withRuntime(cmd, func(rt *cli.Runtime) error {
			snap, err := rt.Store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", sessionID, err)
			}
			overlay, err := graph.OverlayFromSnapshot(snap)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rt.Schema.Root(), overlay))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the definitions reached by this session")
}
