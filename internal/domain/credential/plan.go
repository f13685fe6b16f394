package credential

import (
	"fmt"
	"iter"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// WorkerAssignment is the bucket of prefixes owned by one worker
type WorkerAssignment struct {
	WorkerID int
	Prefixes []string
}

// Plan is the static division of one dock's search among workers.
//
// A fast-path plan has a single assignment for worker 0 with no prefixes.
// Otherwise there is one assignment per worker with a non-empty bucket, in
// worker id order.
type Plan struct {
	DockID       int
	Length       int
	PrefixLength int
	FastPath     bool
	Assignments  []WorkerAssignment
}

// ValidateWorkers rejects pool sizes outside MinWorkers..MaxWorkers
func ValidateWorkers(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return shared.NewUnsupportedWorkerCountError(workers, MinWorkers, MaxWorkers)
	}
	return nil
}

// NewPlan divides the search for a credential of the given length
func NewPlan(dockID, length, workers int) (*Plan, error) {
	if err := ValidateWorkers(workers); err != nil {
		return nil, err
	}
	if length < 1 || length > MaxCredentialLength {
		return nil, shared.NewCredentialError(fmt.Sprintf("dock %d has invalid credential length %d", dockID, length), dockID)
	}

	plan := &Plan{DockID: dockID, Length: length, PrefixLength: PrefixLength(length)}

	if length == 1 {
		plan.FastPath = true
		plan.Assignments = []WorkerAssignment{{WorkerID: 0}}
		return plan, nil
	}

	for workerID, bucket := range Buckets(length, workers) {
		if len(bucket) == 0 {
			continue
		}
		plan.Assignments = append(plan.Assignments, WorkerAssignment{WorkerID: workerID, Prefixes: bucket})
	}
	return plan, nil
}

// Candidates returns the ordered candidate sequence of one assignment
func (p *Plan) Candidates(a WorkerAssignment) iter.Seq[string] {
	if p.FastPath {
		return FastPathCandidates()
	}
	return Candidates(a.Prefixes, p.Length)
}

// Size counts every candidate in the plan
func (p *Plan) Size() int64 {
	if p.FastPath {
		return int64(len(EdgeSymbols))
	}
	var total int64
	for _, a := range p.Assignments {
		total += SpaceSize(a.Prefixes, p.Length)
	}
	return total
}
