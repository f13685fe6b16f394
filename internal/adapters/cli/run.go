package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	oraclegrpc "github.com/andrescamacho/portscheduler-go/internal/adapters/grpc"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/simulator"
	"github.com/andrescamacho/portscheduler-go/internal/adapters/websocket"
	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/application/scheduler"
	"github.com/andrescamacho/portscheduler-go/internal/application/search"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/config"
	"github.com/andrescamacho/portscheduler-go/pkg/utils"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler against the simulator and oracle",
		Long: `Connect to the simulator over WebSocket and to the oracle over gRPC, then
process timesteps until the simulator sends the finished sentinel.

Example:
  portsched run --config configs/config.yaml --workers 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if workers != 0 {
				cfg.Search.Workers = workers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := RunLive(ctx, cfg, utils.GenerateRunID("live"))
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override search.workers (2..8)")

	return cmd
}

// RunLive wires the scheduler to the WebSocket simulator and the gRPC oracle
// and runs it to completion. Any boundary failure ends the run with an error.
func RunLive(ctx context.Context, cfg *config.Config, runID string) (*scheduler.RunSummary, error) {
	registry, err := port.NewRegistryFromSpecs(cfg.Port.DockSpecs())
	if err != nil {
		return nil, fmt.Errorf("invalid dock layout: %w", err)
	}

	rt, err := newRuntime(cfg, runID)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	ctx = common.WithLogger(ctx, rt.logger)
	logger := rt.logger

	schedOpts, searchOpts, err := rt.options(cfg)
	if err != nil {
		return nil, err
	}

	sim, err := websocket.Dial(ctx, cfg.Simulator.URL, cfg.Simulator.HandshakeTimeout, websocket.HelloFrame{
		WorkerCount: cfg.Search.Workers,
		Docks:       registry.Len(),
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()
	logger.Log(common.LevelInfo, "Connected to simulator", map[string]interface{}{
		"action": "connect_simulator",
		"url":    cfg.Simulator.URL,
	})

	oracle, err := oraclegrpc.NewOracleClient(ctx, cfg.Oracle.Address, cfg.Oracle.DialTimeout,
		grpc.WithUnaryInterceptor(rt.oracleMetrics.UnaryClientInterceptor()))
	if err != nil {
		return nil, err
	}
	defer oracle.Close()
	oracle.WithBreaker(cfg.Oracle.BreakerFailures, cfg.Oracle.BreakerCooldown, nil)
	logger.Log(common.LevelInfo, "Connected to oracle", map[string]interface{}{
		"action":  "connect_oracle",
		"address": cfg.Oracle.Address,
	})

	sink := rt.journalSink(sim)
	var store port.AuthStringStore = sim
	if journal := rt.credentialStore(); journal != nil {
		store = simulator.TeeAuthStrings{sim, journal}
	}

	orchestrator, err := search.NewOrchestrator(oracle, store, sink, cfg.Search.Workers, searchOpts...)
	if err != nil {
		return nil, err
	}
	sched := scheduler.NewScheduler(registry, sink, orchestrator, schedOpts...)

	if err := rt.startRun(ctx, "live", registry.Len(), cfg.Search.Workers); err != nil {
		return nil, err
	}

	summary, err := scheduler.NewController(sched, sim, nil).Run(ctx)
	rt.finishRun(summary, err)
	if err != nil {
		logger.Log(common.LevelError, fmt.Sprintf("Scheduler run failed: %v", err), map[string]interface{}{
			"action": "run",
		})
		return summary, err
	}
	return summary, nil
}

func printSummary(summary *scheduler.RunSummary) {
	fmt.Println("\nRun Summary")
	fmt.Println("===========")
	fmt.Printf("  Timesteps:        %d\n", summary.Timesteps)
	fmt.Printf("  Ships Docked:     %d\n", summary.ShipsDocked)
	fmt.Printf("  Cargo Moves:      %d\n", summary.CargoMoves)
	fmt.Printf("  Credentials:      %d\n", summary.Credentials)
	if len(summary.StalledDocks) > 0 {
		fmt.Printf("  Stalled Docks:    %v\n", summary.StalledDocks)
	}
}
