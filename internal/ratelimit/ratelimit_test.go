package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newWithClock returns a limiter whose clock the test can advance.
func newWithClock() (*Limiter, *time.Time) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowAdmitsExactlyMaxRequests(t *testing.T) {
	l, _ := newWithClock()

	for i := 0; i < 60; i++ {
		assert.True(t, l.Allow("user_1_openai", 60, time.Hour), "request %d should be admitted", i+1)
	}
	assert.False(t, l.Allow("user_1_openai", 60, time.Hour), "61st request must be rejected")
}

func TestRejectedCallsAreNotRecorded(t *testing.T) {
	l, clock := newWithClock()

	for i := 0; i < 3; i++ {
		l.Allow("id", 3, time.Minute)
	}
	// Hammer the limiter while saturated; none of these should extend the window.
	for i := 0; i < 10; i++ {
		assert.False(t, l.Allow("id", 3, time.Minute))
	}

	*clock = clock.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("id", 3, time.Minute), "window elapsed, request must be admitted again")
}

func TestWindowSlides(t *testing.T) {
	l, clock := newWithClock()

	assert.True(t, l.Allow("id", 2, time.Hour))
	*clock = clock.Add(30 * time.Minute)
	assert.True(t, l.Allow("id", 2, time.Hour))
	assert.False(t, l.Allow("id", 2, time.Hour))

	// 31 more minutes age out only the first timestamp.
	*clock = clock.Add(31 * time.Minute)
	assert.True(t, l.Allow("id", 2, time.Hour))
	assert.False(t, l.Allow("id", 2, time.Hour))
}

func TestRemaining(t *testing.T) {
	l, clock := newWithClock()

	assert.Equal(t, 5, l.Remaining("id", 5, time.Hour))
	l.Allow("id", 5, time.Hour)
	l.Allow("id", 5, time.Hour)
	assert.Equal(t, 3, l.Remaining("id", 5, time.Hour))

	// Remaining never goes negative even if the configured max shrinks.
	assert.Equal(t, 0, l.Remaining("id", 1, time.Hour))

	// Remaining does not consume budget.
	assert.Equal(t, 3, l.Remaining("id", 5, time.Hour))

	*clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 5, l.Remaining("id", 5, time.Hour))
}

func TestReset(t *testing.T) {
	l, _ := newWithClock()

	l.Allow("id", 1, time.Hour)
	assert.False(t, l.Allow("id", 1, time.Hour))

	l.Reset("id")
	assert.True(t, l.Allow("id", 1, time.Hour))
}

func TestIdentifiersAreIndependent(t *testing.T) {
	l, _ := newWithClock()

	assert.True(t, l.Allow("user_1_openai", 1, time.Hour))
	assert.False(t, l.Allow("user_1_openai", 1, time.Hour))
	assert.True(t, l.Allow("user_1_groq", 1, time.Hour))
	assert.True(t, l.Allow("user_2_openai", 1, time.Hour))
}

func TestConcurrentAllowDoesNotOverAdmit(t *testing.T) {
	l := New()

	const max = 50
	var admitted int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared", max, time.Hour) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, max, admitted)
}
