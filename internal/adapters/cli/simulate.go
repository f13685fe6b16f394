package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portscheduler-go/internal/adapters/simulator"
	"github.com/andrescamacho/portscheduler-go/internal/application/common"
	"github.com/andrescamacho/portscheduler-go/internal/application/scheduler"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/pkg/utils"
)

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		workers     int
		trace       bool
		steps       bool
		configDocks bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scenario in-process against an in-memory oracle",
		Long: `Replay a YAML scenario through the scheduler without any external process.
Dock secrets come from the scenario or are derived from its seed.

Examples:
  portsched simulate scenarios/basic.yaml --trace
  portsched simulate scenarios/basic.yaml --workers 5 --config-docks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc, err := simulator.LoadScenario(args[0])
			if err != nil {
				return err
			}

			opts := simulator.HarnessOptions{Workers: workers}
			if opts.Workers == 0 && sc.Workers == 0 {
				opts.Workers = cfg.Search.Workers
			}
			if configDocks || len(sc.Docks) == 0 {
				opts.Docks = cfg.Port.DockSpecs()
			}
			if trace {
				opts.Trace = os.Stdout
			}
			if steps {
				opts.OnStep = printStep
			}

			rt, err := newRuntime(cfg, utils.GenerateRunID("simulate"))
			if err != nil {
				return err
			}
			defer rt.Close()

			opts.SchedulerOptions, opts.SearchOptions, err = rt.options(cfg)
			if err != nil {
				return err
			}
			opts.WrapSink = rt.journalSink
			opts.Store = rt.credentialStore()

			ctx := common.WithLogger(cmd.Context(), rt.logger)

			docks := len(sc.Docks)
			if len(opts.Docks) > 0 {
				docks = len(opts.Docks)
			}
			runWorkers := sc.Workers
			if opts.Workers != 0 {
				runWorkers = opts.Workers
			}
			if err := rt.startRun(ctx, "simulate", docks, runWorkers); err != nil {
				return err
			}

			result, err := simulator.RunScenario(ctx, sc, opts)
			if result != nil {
				rt.finishRun(result.Summary, err)
			} else {
				rt.finishRun(nil, err)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\nScenario: %s (run %s)\n", sc.Name, rt.runID)
			printSummary(result.Summary)

			if ids := result.Credentials.DockIDs(); len(ids) > 0 {
				fmt.Println("\nCredentials:")
				for _, id := range ids {
					credential, _ := result.Credentials.Get(id)
					fmt.Printf("  dock %-3d %s\n", id, credential)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override the scenario's worker count (2..8)")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every emitted event")
	cmd.Flags().BoolVar(&steps, "steps", false, "Print a line per timestep")
	cmd.Flags().BoolVar(&configDocks, "config-docks", false, "Use port.docks from the config instead of the scenario's layout")

	return cmd
}

func printStep(report *scheduler.StepReport) {
	fmt.Printf("t=%-4d released=%d ingested=%d docked=%d moves=%d searches=%d deferred=%d (%s)\n",
		report.Timestep,
		len(report.Released),
		report.Ingested,
		len(report.Docked),
		len(report.Moves),
		len(report.Searches),
		len(report.Deferred),
		report.Duration,
	)

	ids := make([]int, 0, len(report.Phases))
	for id := range report.Phases {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if phase := report.Phases[id]; phase != port.PhaseFree {
			fmt.Printf("       dock %-3d %s\n", id, phase)
		}
	}
}
