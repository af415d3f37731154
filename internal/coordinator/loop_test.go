package coordinator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoLoop_RunsInPostOrder(t *testing.T) {
	loop := NewGoLoop(nil)
	require.NoError(t, loop.Start())
	defer loop.Stop()

	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		loop.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 99 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for posted functions")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestGoLoop_PostBeforeStart(t *testing.T) {
	loop := NewGoLoop(nil)
	ran := make(chan struct{})
	loop.Post(func() { close(ran) })

	require.NoError(t, loop.Start())
	defer loop.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted function did not run after Start")
	}
}

func TestGoLoop_After(t *testing.T) {
	loop := NewGoLoop(nil)
	require.NoError(t, loop.Start())
	defer loop.Stop()

	start := time.Now()
	fired := make(chan time.Duration, 1)
	loop.After(20*time.Millisecond, func() { fired <- time.Since(start) })

	select {
	case elapsed := <-fired:
		assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestGoLoop_StartTwice(t *testing.T) {
	loop := NewGoLoop(nil)
	require.NoError(t, loop.Start())
	defer loop.Stop()
	assert.Error(t, loop.Start())
}

func TestGoLoop_StopDropsPosts(t *testing.T) {
	loop := NewGoLoop(nil)
	require.NoError(t, loop.Start())
	loop.Stop()
	loop.Stop()

	ran := false
	loop.Post(func() { ran = true })
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran)
	assert.Error(t, loop.Start())
}
