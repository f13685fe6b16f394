package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
)

type partitionContext struct {
	plan *credential.Plan
	err  error
}

func (pc *partitionContext) reset() {
	pc.plan = nil
	pc.err = nil
}

// When steps

func (pc *partitionContext) iPlanASearchOfLengthForWorkers(length, workers int) error {
	pc.plan, pc.err = credential.NewPlan(0, length, workers)
	return nil
}

// Then steps

func (pc *partitionContext) thePlanShouldAssign(table *godog.Table) error {
	if pc.err != nil {
		return fmt.Errorf("planning failed: %v", pc.err)
	}

	var expected []credential.WorkerAssignment
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}
		worker, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return err
		}
		expected = append(expected, credential.WorkerAssignment{WorkerID: worker, Prefixes: splitList(row.Cells[1].Value)})
	}

	if len(expected) != len(pc.plan.Assignments) {
		return fmt.Errorf("expected %d assignments, got %d", len(expected), len(pc.plan.Assignments))
	}
	for i, want := range expected {
		got := pc.plan.Assignments[i]
		if got.WorkerID != want.WorkerID || strings.Join(got.Prefixes, ",") != strings.Join(want.Prefixes, ",") {
			return fmt.Errorf("assignment %d: expected worker %d with %v, got worker %d with %v",
				i, want.WorkerID, want.Prefixes, got.WorkerID, got.Prefixes)
		}
	}
	return nil
}

func (pc *partitionContext) thePlanShouldUseTheFastPath() error {
	if pc.err != nil {
		return fmt.Errorf("planning failed: %v", pc.err)
	}
	if !pc.plan.FastPath {
		return fmt.Errorf("expected a fast-path plan")
	}
	return nil
}

func (pc *partitionContext) thePlanShouldCoverCandidates(size int) error {
	if pc.err != nil {
		return fmt.Errorf("planning failed: %v", pc.err)
	}
	if pc.plan.Size() != int64(size) {
		return fmt.Errorf("expected %d candidates, got %d", size, pc.plan.Size())
	}
	return nil
}

func (pc *partitionContext) planningShouldFailWith(expected string) error {
	if pc.err == nil {
		return fmt.Errorf("expected planning to fail with '%s', but it succeeded", expected)
	}
	if !strings.Contains(pc.err.Error(), expected) {
		return fmt.Errorf("expected error containing '%s', got '%s'", expected, pc.err.Error())
	}
	return nil
}

// splitList parses "5,6,7"; an empty cell is an empty list
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitInts(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func InitializePartitionScenario(ctx *godog.ScenarioContext) {
	pc := &partitionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	ctx.Step(`^I plan a search of length (\d+) for (\d+) workers$`, pc.iPlanASearchOfLengthForWorkers)

	ctx.Step(`^the plan should assign:$`, pc.thePlanShouldAssign)
	ctx.Step(`^the plan should use the fast path$`, pc.thePlanShouldUseTheFastPath)
	ctx.Step(`^the plan should cover (\d+) candidates$`, pc.thePlanShouldCoverCandidates)
	ctx.Step(`^planning should fail with "([^"]*)"$`, pc.planningShouldFailWith)
}
