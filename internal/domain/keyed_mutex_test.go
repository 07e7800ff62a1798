package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	t.Run("it should serialize holders of the same key", func(t *testing.T) {
		km := newKeyedMutex()

		var wg sync.WaitGroup
		counter := 0

		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				unlock := km.Lock("order-1")
				defer unlock()

				counter++
			}()
		}

		wg.Wait()
		require.Equal(t, 64, counter)
	})

	t.Run("it should drop entries once the last holder unlocks", func(t *testing.T) {
		km := newKeyedMutex()

		unlock := km.Lock("order-1")
		unlock()

		km.mu.Lock()
		defer km.mu.Unlock()
		require.Empty(t, km.entries)
	})

	t.Run("it should not block holders of different keys", func(t *testing.T) {
		km := newKeyedMutex()

		unlock := km.Lock("order-1")
		defer unlock()

		done := make(chan struct{})
		go func() {
			other := km.Lock("order-2")
			other()
			close(done)
		}()

		<-done
	})
}
