package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
)

// MemoryOracle answers guesses against per-dock secrets held in memory.
//
// Secrets set explicitly win. Otherwise a secret is derived from the seed,
// the dock id and the guessed length, so a run is reproducible.
type MemoryOracle struct {
	seed uint64

	mu       sync.Mutex
	secrets  map[int]string
	derived  map[secretKey]string
	queries  map[int][]string
	sessions int
}

type secretKey struct {
	dockID int
	length int
}

// NewMemoryOracle creates an oracle deriving secrets from seed
func NewMemoryOracle(seed uint64) *MemoryOracle {
	return &MemoryOracle{
		seed:    seed,
		secrets: make(map[int]string),
		derived: make(map[secretKey]string),
		queries: make(map[int][]string),
	}
}

// SetSecret fixes the secret of a dock
func (o *MemoryOracle) SetSecret(dockID int, secret string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.secrets[dockID] = secret
}

// Secret returns the secret a guess of the given length is checked against
func (o *MemoryOracle) Secret(dockID, length int) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.secretLocked(dockID, length)
}

func (o *MemoryOracle) secretLocked(dockID, length int) string {
	if s, ok := o.secrets[dockID]; ok {
		return s
	}
	key := secretKey{dockID: dockID, length: length}
	if s, ok := o.derived[key]; ok {
		return s
	}
	s := GenerateSecret(o.seed, dockID, length)
	o.derived[key] = s
	return s
}

// Queries returns the guesses issued by a worker, in order
func (o *MemoryOracle) Queries(workerID int) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.queries[workerID]...)
}

// ResetQueries clears the query log
func (o *MemoryOracle) ResetQueries() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queries = make(map[int][]string)
}

// SessionsOpened counts every session handed out
func (o *MemoryOracle) SessionsOpened() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessions
}

// Session implements port.OracleDialer
func (o *MemoryOracle) Session(ctx context.Context, workerID int) (port.OracleSession, error) {
	o.mu.Lock()
	o.sessions++
	o.mu.Unlock()
	return &memorySession{oracle: o, workerID: workerID, dockID: -1}, nil
}

// Check answers one guess without a session
func (o *MemoryOracle) Check(workerID, dockID int, candidate string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queries[workerID] = append(o.queries[workerID], candidate)
	return o.secretLocked(dockID, len(candidate)) == candidate
}

type memorySession struct {
	oracle   *MemoryOracle
	workerID int
	dockID   int
}

func (s *memorySession) SetDock(ctx context.Context, dockID int) error {
	s.dockID = dockID
	return nil
}

func (s *memorySession) Guess(ctx context.Context, dockID int, candidate string) (bool, error) {
	if s.dockID != dockID {
		return false, fmt.Errorf("session of worker %d is bound to dock %d, not %d", s.workerID, s.dockID, dockID)
	}
	return s.oracle.Check(s.workerID, dockID, candidate), nil
}

func (s *memorySession) Close() error { return nil }

// GenerateSecret derives a well-formed credential from the seed, the dock and
// the length
func GenerateSecret(seed uint64, dockID, length int) string {
	if length < 1 {
		return ""
	}
	rng := rand.New(rand.NewPCG(seed, uint64(dockID)<<32|uint64(length)))

	buf := make([]byte, length)
	for i := range buf {
		symbols := credential.InteriorSymbols
		if i == 0 || i == length-1 {
			symbols = credential.EdgeSymbols
		}
		buf[i] = symbols[rng.IntN(len(symbols))]
	}
	return string(buf)
}
