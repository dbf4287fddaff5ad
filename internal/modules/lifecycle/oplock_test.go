package lifecycle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpLockRunsAction(t *testing.T) {
	lock := NewOpLock()

	ran := false
	err := lock.Do(func() { ran = true })

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestOpLockSecondAcquisitionFailsImmediately(t *testing.T) {
	lock := NewOpLock()

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- lock.Do(func() {
			close(entered)
			<-release
		})
	}()

	<-entered

	// The lock is held: a concurrent attempt must fail, not queue.
	executed := false
	err := lock.Do(func() { executed = true })
	require.ErrorIs(t, err, ErrBusy)
	assert.False(t, executed)

	close(release)
	require.NoError(t, <-firstDone)

	// Released after the first holder finished: a third call succeeds.
	err = lock.Do(func() { executed = true })
	require.NoError(t, err)
	assert.True(t, executed)
}

func TestOpLockReleasedAfterPanic(t *testing.T) {
	lock := NewOpLock()

	require.Panics(t, func() {
		_ = lock.Do(func() { panic("boom") })
	})

	err := lock.Do(func() {})
	assert.NoError(t, err)
}

func TestOpLockExactlyOneWinner(t *testing.T) {
	lock := NewOpLock()

	const attempts = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	release := make(chan struct{})

	var winners, busy int
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := lock.Do(func() { <-release })
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else {
				busy++
			}
		}()
	}

	close(start)
	// Let the losers fail fast before releasing the winner.
	for {
		mu.Lock()
		failed := busy
		mu.Unlock()
		if failed == attempts-1 {
			break
		}
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, attempts-1, busy)
}
