package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fieldform/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldform",
	Short: "fieldform fills hierarchical survey records screen by screen",
	Long: `fieldform drives form-filling sessions over a survey metamodel: every
entity instance is a screen, multiple attributes are paged instance by
instance, and each edit is written through to the record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands). They override fieldform.yaml
	// and FIELDFORM_* environment variables when set.
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default: ./fieldform.yaml when present)")
	flags.StringP("schema", "s", "", "Metamodel file (.yaml, .json) or directory of definition documents")
	flags.String("store", "", "Session store: memory, file, sqlite or redis")
	flags.String("store-path", "", "Directory or database file for the file and sqlite stores")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.String("redis-password", "", "Redis password")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves the configuration for cmd, including its flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path, cmd.Flags())
}
