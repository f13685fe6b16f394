package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portsched",
		Short: "Port scheduler - dock, cargo and undocking credential scheduling",
		Long: `portsched drives the port scheduler: it assigns ships to docks, cranes to
cargo, recovers each dock's undocking credential and releases docks after the
grace period.

Examples:
  portsched run --config configs/config.yaml
  portsched simulate scenarios/basic.yaml --trace
  portsched partition --workers 3 --length 2
  portsched history
  portsched history --run simulate-a3f8e2b1 --kind undock
  portsched config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs, /etc/port-scheduler)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewPartitionCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// loadConfig loads the configuration named by --config and applies --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
