package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the port scheduler configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PS_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Examples:
  portsched config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			fmt.Println("Port Scheduler Configuration")
			fmt.Println("============================")

			fmt.Println("Port:")
			if len(cfg.Port.Docks) == 0 {
				fmt.Println("  (no docks configured)")
			}
			for id, d := range cfg.Port.Docks {
				fmt.Printf("  Dock %-3d category %-3d cranes %v\n", id, d.Category, d.Cranes)
			}

			fmt.Println("\nSearch:")
			fmt.Printf("  Workers:          %d\n", cfg.Search.Workers)
			if cfg.Search.RateLimit > 0 {
				fmt.Printf("  Rate Limit:       %.1f guesses/s per worker (burst: %d)\n", cfg.Search.RateLimit, cfg.Search.Burst)
			} else {
				fmt.Printf("  Rate Limit:       unlimited\n")
			}

			fmt.Println("\nSimulator:")
			fmt.Printf("  URL:              %s\n", cfg.Simulator.URL)
			fmt.Printf("  Handshake:        %s\n", cfg.Simulator.HandshakeTimeout)

			fmt.Println("\nOracle:")
			fmt.Printf("  Address:          %s\n", cfg.Oracle.Address)
			fmt.Printf("  Dial Timeout:     %s\n", cfg.Oracle.DialTimeout)
			fmt.Printf("  Breaker:          %d failures, %s cooldown\n", cfg.Oracle.BreakerFailures, cfg.Oracle.BreakerCooldown)

			fmt.Println("\nDatabase:")
			fmt.Printf("  Enabled:          %t\n", cfg.Database.Enabled)
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			if cfg.Database.URL != "" {
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			} else {
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)
			fmt.Printf("  Persist Level:    %s\n", cfg.Logging.PersistLevel)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Endpoint:         %s%s\n", cfg.Metrics.Address, cfg.Metrics.Path)

			fmt.Println("\nDaemon:")
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
			fmt.Printf("  Run Prefix:       %s\n", cfg.Daemon.RunPrefix)

			return nil
		},
	}

	return cmd
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
