package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
)

// NewPartitionCommand creates the partition command
func NewPartitionCommand() *cobra.Command {
	var (
		workers int
		length  int
		preview int
	)

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Show how a credential search is divided among workers",
		Long: `Print each worker's prefix bucket, its candidate count and the first
candidates it will send to the oracle.

Example:
  portsched partition --workers 3 --length 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if preview < 0 {
				return fmt.Errorf("--preview must not be negative")
			}

			plan, err := credential.NewPlan(0, length, workers)
			if err != nil {
				return err
			}

			fmt.Printf("Credential length %d, %d workers", plan.Length, workers)
			if plan.FastPath {
				fmt.Print(" (fast path)")
			} else {
				fmt.Printf(", prefix length %d", plan.PrefixLength)
			}
			fmt.Printf("\nTotal candidates: %d\n\n", plan.Size())

			fmt.Printf("%-8s %-24s %-12s %s\n", "WORKER", "PREFIXES", "CANDIDATES", "FIRST")
			fmt.Println("──────────────────────────────────────────────────────────────────")

			for _, a := range plan.Assignments {
				size := credential.SpaceSize(a.Prefixes, plan.Length)
				if plan.FastPath {
					size = int64(len(credential.EdgeSymbols))
				}

				first := make([]string, 0, min(preview, int(size)))
				for candidate := range plan.Candidates(a) {
					if len(first) >= preview {
						break
					}
					first = append(first, candidate)
				}

				prefixes := strings.Join(a.Prefixes, ",")
				if prefixes == "" {
					prefixes = "-"
				}
				fmt.Printf("%-8d %-24s %-12d %s\n",
					a.WorkerID,
					truncate(prefixes, 24),
					size,
					strings.Join(first, " "),
				)
			}

			if idle := workers - len(plan.Assignments); idle > 0 {
				fmt.Printf("\n%d worker(s) idle\n", idle)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 3, "Number of search workers (2..8)")
	cmd.Flags().IntVar(&length, "length", 2, "Credential length")
	cmd.Flags().IntVar(&preview, "preview", 5, "Number of candidates to preview per worker")

	return cmd
}

// truncate shortens s to limit runes, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:max(limit-3, 0)]) + "..."
}
