package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequencer_SerializesPerKey(t *testing.T) {
	s := newSequencer()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  = map[int64]int{}
		maxSeen = map[int64]int{}
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(key int64) {
			defer wg.Done()
			unlock := s.Lock(key)
			defer unlock()

			mu.Lock()
			active[key]++
			if active[key] > maxSeen[key] {
				maxSeen[key] = active[key]
			}
			mu.Unlock()

			mu.Lock()
			active[key]--
			mu.Unlock()
		}(int64(i % 4))
	}
	wg.Wait()

	for key, n := range maxSeen {
		require.Equal(t, 1, n, "key %d", key)
	}
	require.Zero(t, s.size())
}
