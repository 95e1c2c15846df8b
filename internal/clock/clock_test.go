package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	now := NewRealClock().Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%int(time.Microsecond))
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	clk := NewMockClock(start)
	assert.Equal(t, start, clk.Now())

	clk.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clk.Now())

	clk.Set(start)
	assert.Equal(t, start, clk.Now())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clk.Advance(time.Second)
		}()
	}
	wg.Wait()
	assert.Equal(t, start.Add(10*time.Second), clk.Now())
}
