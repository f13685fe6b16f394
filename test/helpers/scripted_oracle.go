package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// ScriptedOracle answers true only for the configured secret of a dock and
// records every worker's guesses in order.
type ScriptedOracle struct {
	mu       sync.Mutex
	secrets  map[int]string
	queries  map[int][]string
	setDocks map[int][]int
	sessions int

	// GuessErr, when set, is returned by the Nth guess of any worker (1-based)
	GuessErr     error
	FailAtGuess  int
	SessionErr   error
	totalGuesses int
}

func NewScriptedOracle() *ScriptedOracle {
	return &ScriptedOracle{
		secrets:  make(map[int]string),
		queries:  make(map[int][]string),
		setDocks: make(map[int][]int),
	}
}

// WithSecret sets the secret of a dock and returns the oracle
func (o *ScriptedOracle) WithSecret(dockID int, secret string) *ScriptedOracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.secrets[dockID] = secret
	return o
}

// Queries returns the guesses of one worker in issue order
func (o *ScriptedOracle) Queries(workerID int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.queries[workerID]...)
}

// AllQueries returns every worker's guesses
func (o *ScriptedOracle) AllQueries() map[int][]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[int][]string, len(o.queries))
	for w, q := range o.queries {
		out[w] = append([]string(nil), q...)
	}
	return out
}

// TotalQueries counts every guess
func (o *ScriptedOracle) TotalQueries() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totalGuesses
}

// SetDocks returns the docks a worker's sessions were bound to, in order
func (o *ScriptedOracle) SetDocks(workerID int) []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.setDocks[workerID]...)
}

// Sessions counts opened sessions
func (o *ScriptedOracle) Sessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions
}

// Reset clears the query log
func (o *ScriptedOracle) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queries = make(map[int][]string)
	o.setDocks = make(map[int][]int)
	o.totalGuesses = 0
	o.sessions = 0
}

// Session implements port.OracleDialer
func (o *ScriptedOracle) Session(ctx context.Context, workerID int) (port.OracleSession, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.SessionErr != nil {
		return nil, o.SessionErr
	}
	o.sessions++
	return &scriptedSession{oracle: o, workerID: workerID, dockID: -1}, nil
}

type scriptedSession struct {
	oracle   *ScriptedOracle
	workerID int
	dockID   int
}

func (s *scriptedSession) SetDock(ctx context.Context, dockID int) error {
	s.oracle.mu.Lock()
	defer s.oracle.mu.Unlock()
	s.dockID = dockID
	s.oracle.setDocks[s.workerID] = append(s.oracle.setDocks[s.workerID], dockID)
	return nil
}

func (s *scriptedSession) Guess(ctx context.Context, dockID int, candidate string) (bool, error) {
	o := s.oracle
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.dockID != dockID {
		return false, fmt.Errorf("worker %d guessed for dock %d while bound to %d", s.workerID, dockID, s.dockID)
	}

	o.totalGuesses++
	if o.GuessErr != nil && o.totalGuesses >= o.FailAtGuess {
		return false, o.GuessErr
	}

	o.queries[s.workerID] = append(o.queries[s.workerID], candidate)
	secret, ok := o.secrets[dockID]
	return ok && secret == candidate, nil
}

func (s *scriptedSession) Close() error { return nil }
