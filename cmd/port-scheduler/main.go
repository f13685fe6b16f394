package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/cli"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/config"
	"github.com/andrescamacho/portscheduler-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/portscheduler-go/pkg/utils"
)

func main() {
	// Parse command-line flags
	configFlag := flag.String("config", "", "Path to config file (default: search config.yaml)")
	workersFlag := flag.Int("workers", 0, "Override search.workers (2..8)")
	flag.Parse()

	fmt.Println("Port Scheduler Daemon v0.1.0")
	fmt.Println("============================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)
	if *workersFlag != 0 {
		cfg.Search.Workers = *workersFlag
		if err := config.ValidateConfig(cfg); err != nil {
			log.Fatalf("Invalid worker override: %v", err)
		}
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	fmt.Println("PID file lock acquired")

	err := run(cfg)

	if releaseErr := pf.Release(); releaseErr != nil {
		log.Printf("Warning: failed to release PID file: %v", releaseErr)
	}
	if err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Docks: %d, search workers: %d\n", len(cfg.Port.Docks), cfg.Search.Workers)
	fmt.Printf("Simulator: %s\n", cfg.Simulator.URL)
	fmt.Printf("Oracle: %s\n", cfg.Oracle.Address)
	if cfg.Database.Enabled {
		fmt.Printf("Journal: %s\n", cfg.Database.Type)
	}
	if cfg.Metrics.Enabled {
		fmt.Printf("Metrics: %s%s\n", cfg.Metrics.Address, cfg.Metrics.Path)
	}

	runID := utils.GenerateRunID(cfg.Daemon.RunPrefix)
	fmt.Printf("Starting run %s\n", runID)

	summary, err := cli.RunLive(ctx, cfg, runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s finished: %d timesteps, %d ships docked, %d cargo moves, %d credentials\n",
		runID, summary.Timesteps, summary.ShipsDocked, summary.CargoMoves, summary.Credentials)
	if len(summary.StalledDocks) > 0 {
		fmt.Printf("Stalled docks: %v\n", summary.StalledDocks)
	}
	return nil
}
