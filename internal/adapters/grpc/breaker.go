package grpc

import (
	"errors"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/portscheduler-go/internal/domain/shared"
)

// ErrOracleUnavailable is returned without contacting the oracle while the
// breaker is open
var ErrOracleUnavailable = errors.New("oracle unavailable: circuit open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerProbing
)

// breaker opens after maxFailures consecutive transport failures. Once the
// cooldown has passed calls go through again; the first failure reopens it
// and the first success closes it.
//
// Oracle verdicts and precondition errors never count as failures.
type breaker struct {
	maxFailures int
	cooldown    time.Duration
	clock       shared.Clock

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
}

func newBreaker(maxFailures int, cooldown time.Duration, clock shared.Clock) *breaker {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &breaker{maxFailures: maxFailures, cooldown: cooldown, clock: clock}
}

func (b *breaker) guard(call func() error) error {
	b.mu.Lock()
	if b.state == breakerOpen {
		if b.clock.Now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrOracleUnavailable
		}
		b.state = breakerProbing
	}
	b.mu.Unlock()

	err := call()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !isTransportFailure(err) {
		b.failures = 0
		if b.state == breakerProbing {
			b.state = breakerClosed
		}
		return err
	}

	b.failures++
	if b.state == breakerProbing || b.failures >= b.maxFailures {
		b.state = breakerOpen
		b.openedAt = b.clock.Now()
	}
	return err
}

func (b *breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == breakerOpen
}

func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
