package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Frozen(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now())
}

func TestClock_TruncatesToSeconds(t *testing.T) {
	clock := NewClock(time.Date(2024, 5, 1, 12, 0, 0, 999, time.UTC))
	assert.Equal(t, 0, clock.Now().Nanosecond())

	clock.Set(time.Date(2024, 5, 2, 0, 0, 1, 500, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 1, 0, time.UTC), clock.Now())
}

func TestClock_Advance(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())
}

func TestClock_ThreadSafe(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(100*time.Second), clock.Now())
}
