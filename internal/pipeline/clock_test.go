package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockMonotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClockConcurrentNext(t *testing.T) {
	c := NewClock()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	seen := make([][]int64, goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				seen[g] = append(seen[g], c.Next())
			}
		}(g)
	}
	wg.Wait()

	unique := map[int64]bool{}
	for _, vals := range seen {
		for _, v := range vals {
			assert.False(t, unique[v], "duplicate seq %d", v)
			unique[v] = true
		}
	}
	assert.Equal(t, int64(goroutines*perGoroutine), c.Current())
}
