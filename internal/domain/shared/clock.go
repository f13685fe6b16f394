package shared

import "time"

// Clock abstracts wall time so log timestamps and search durations can be
// pinned in tests. Scheduling itself never reads it: timesteps come from the
// simulator.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in UTC
type RealClock struct{}

func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// MockClock is a manually advanced clock for tests
type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// NewMockClock creates a MockClock starting at the given time.
// A zero start time is replaced by the Unix epoch so runs are reproducible.
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Unix(0, 0).UTC()
	}
	return &MockClock{CurrentTime: startTime}
}
