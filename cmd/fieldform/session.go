package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/fieldform/internal/cli"
	"github.com/aretw0/fieldform/internal/logging"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *cli.Runtime) error {
			sessions, err := rt.Manager.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No stored sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Stored Sessions:")
			for _, s := range sessions {
				fmt.Fprintln(out, "- "+s)
			}
			return nil
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored screen tree of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *cli.Runtime) error {
			snap, err := rt.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *cli.Runtime) error {
			failed := 0
			for _, sessionID := range args {
				if err := rt.Manager.Delete(cmd.Context(), sessionID); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", sessionID, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sessions not removed", failed, len(args))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func withRuntime(cmd *cobra.Command, fn func(*cli.Runtime) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Level())
	rt, err := cli.NewRuntime(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()
	return fn(rt)
}
