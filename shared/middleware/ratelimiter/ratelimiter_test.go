package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_Burst(t *testing.T) {
	rl := New(1, 3, time.Hour)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "identities have separate buckets")
}

func TestAllow_Refill(t *testing.T) {
	rl := New(50, 1, time.Hour)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.Eventually(t, func() bool { return rl.Allow("a") }, time.Second, 5*time.Millisecond)
}

func TestExpiration(t *testing.T) {
	rl := New(1, 1, 20*time.Millisecond)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Len())
	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, rl.Allow("a"), "expired bucket starts full")
}

func TestAllow_Concurrent(t *testing.T) {
	rl := New(0.001, 10, time.Hour)
	defer rl.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("same") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
