package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/persistence"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/database"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var (
		runID string
		kind  string
		limit int
		logs  bool
		level string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect journaled runs",
		Long: `List recorded runs, or show the event journal of one run.
Requires database.enabled in the configuration.

Examples:
  portsched history
  portsched history --run simulate-a3f8e2b1
  portsched history --run simulate-a3f8e2b1 --kind move_cargo --limit 20
  portsched history --run simulate-a3f8e2b1 --logs --level WARNING`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			runs := persistence.NewGormRunRepository(db, nil)
			if runID == "" {
				return listRuns(ctx, runs, limit)
			}

			run, err := runs.FindByID(ctx, runID)
			if err != nil {
				return err
			}
			printRun(run)

			if logs {
				var levelPtr *string
				if level != "" {
					levelPtr = &level
				}
				entries, err := persistence.NewGormRunLogRepository(db, nil).GetLogs(ctx, runID, limit, levelPtr, nil)
				if err != nil {
					return fmt.Errorf("failed to read run logs: %w", err)
				}
				printLogs(entries)
				return nil
			}

			var kindPtr *string
			if kind != "" {
				kindPtr = &kind
			}
			events, err := runs.Events(ctx, runID, kindPtr, limit)
			if err != nil {
				return err
			}
			printEvents(events)

			credentials, err := runs.Credentials(ctx, runID)
			if err != nil {
				return err
			}
			if len(credentials) > 0 {
				fmt.Println("\nCredentials:")
				for dockID := 0; dockID < run.Docks; dockID++ {
					if c, ok := credentials[dockID]; ok {
						fmt.Printf("  dock %-3d %s\n", dockID, c)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to inspect (omit to list runs)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter events by kind (dock, move_cargo, undock, end_timestep)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows to show")
	cmd.Flags().BoolVar(&logs, "logs", false, "Show the run log instead of events")
	cmd.Flags().StringVar(&level, "level", "", "Filter logs by level (DEBUG, INFO, WARNING, ERROR)")

	return cmd
}

func listRuns(ctx context.Context, runs *persistence.GormRunRepository, limit int) error {
	records, err := runs.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-28s %-10s %-10s %-6s %-8s %s\n", "RUN ID", "MODE", "STATUS", "DOCKS", "WORKERS", "STARTED")
	fmt.Println("─────────────────────────────────────────────────────────────────────────────────")
	for _, r := range records {
		fmt.Printf("%-28s %-10s %-10s %-6d %-8d %s\n",
			truncate(r.ID, 28),
			r.Mode,
			r.Status,
			r.Docks,
			r.Workers,
			r.StartedAt.Format(time.RFC3339),
		)
	}
	fmt.Printf("\nTotal: %d runs\n", len(records))
	return nil
}

func printRun(run *persistence.RunRecord) {
	fmt.Printf("Run: %s\n", run.ID)
	fmt.Println("══════════════════════════════════════════════")
	fmt.Printf("  Mode:             %s\n", run.Mode)
	fmt.Printf("  Status:           %s\n", run.Status)
	fmt.Printf("  Docks:            %d\n", run.Docks)
	fmt.Printf("  Workers:          %d\n", run.Workers)
	fmt.Printf("  Started At:       %s\n", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Printf("  Finished At:      %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	for _, key := range []string{"timesteps", "ships_docked", "cargo_moves", "credentials", "stalled_docks", "error"} {
		if v, ok := run.Summary[key]; ok {
			fmt.Printf("  %-17s %v\n", key+":", v)
		}
	}
	fmt.Println()
}

func printEvents(events []persistence.EventRecord) {
	if len(events) == 0 {
		fmt.Println("No events recorded")
		return
	}

	fmt.Printf("%-6s %-5s %-13s %-6s %-4s %-5s %-6s %s\n", "SEQ", "T", "KIND", "SHIP", "DIR", "DOCK", "CARGO", "CRANE")
	for _, e := range events {
		fmt.Printf("%-6d %-5d %-13s %-6s %-4s %-5s %-6s %s\n",
			e.Sequence,
			e.Timestep,
			e.Kind,
			optional(e.ShipID),
			directionLabel(e.Direction),
			optional(e.DockID),
			optional(e.CargoIndex),
			optional(e.CraneID),
		)
	}
}

func printLogs(entries []persistence.RunLogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries recorded")
		return
	}
	// Newest first from the repository; print oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Printf("[%s] %s: %s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Message)
	}
}

// optional renders -1 (not applicable) as a dash
func optional(v int) string {
	if v < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func directionLabel(d int) string {
	switch {
	case d > 0:
		return "+1"
	case d < 0:
		return "-1"
	default:
		return "-"
	}
}
