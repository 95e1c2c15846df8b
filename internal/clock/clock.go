package clock

import (
	"sync"
	"time"
)

// Clock supplies the timestamps written to items, master data and change logs.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func NewRealClock() Clock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to microseconds, the finest
// precision both Postgres and SQLite round-trip.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// MockClock is a settable clock for tests. It is safe for concurrent use.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

func NewMockClock(startTime time.Time) *MockClock {
	return &MockClock{current: startTime}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
