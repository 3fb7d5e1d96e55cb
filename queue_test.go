package mvu

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_EnqueueDequeue(t *testing.T) {
	q := newEventQueue[string](0)

	ok := q.Enqueue("first")
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, "first", got)
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue[string](0)

	q.Enqueue("A")
	q.Enqueue("B")
	q.Enqueue("C")

	e1, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "A", e1)

	e2, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "B", e2)

	e3, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "C", e3)
}

func TestEventQueue_TryDequeue_Empty(t *testing.T) {
	q := newEventQueue[string](0)

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_Wait_SignalsAvailability(t *testing.T) {
	q := newEventQueue[string](0)

	done := make(chan string)

	go func() {
		<-q.Wait()
		if e, ok := q.TryDequeue(); ok {
			done <- e
		}
	}()

	// Give the goroutine time to block on the signal.
	time.Sleep(10 * time.Millisecond)

	q.Enqueue("wakeup")

	select {
	case e := <-done:
		assert.Equal(t, "wakeup", e)
	case <-time.After(time.Second):
		t.Fatal("waiter did not unblock")
	}
}

func TestEventQueue_Close_WakesWaiters(t *testing.T) {
	q := newEventQueue[string](0)

	done := make(chan struct{})

	go func() {
		<-q.Wait()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-done:
		assert.True(t, q.Closed())
	case <-time.After(time.Second):
		t.Fatal("waiter did not unblock after close")
	}
}

func TestEventQueue_Enqueue_AfterClose(t *testing.T) {
	q := newEventQueue[string](0)
	q.Close()

	ok := q.Enqueue("late")
	assert.False(t, ok, "enqueue after close should return false")
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_Close_Idempotent(t *testing.T) {
	q := newEventQueue[string](0)
	q.Close()
	q.Close() // must not panic on the already-closed signal channel
	assert.True(t, q.Closed())
}

func TestEventQueue_Len(t *testing.T) {
	q := newEventQueue[string](0)

	assert.Equal(t, 0, q.Len())

	q.Enqueue("1")
	assert.Equal(t, 1, q.Len())

	q.Enqueue("2")
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())

	q.TryDequeue()
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_Bounded_DropsNewest(t *testing.T) {
	q := newEventQueue[string](2)

	drops := 0
	q.overflow = func(pending int) {
		drops++
		assert.Equal(t, 2, pending)
	}

	assert.True(t, q.Enqueue("A"))
	assert.True(t, q.Enqueue("B"))
	assert.False(t, q.Enqueue("C"), "enqueue past capacity should be rejected")
	assert.Equal(t, 1, drops)

	// Accepted events keep their order; the dropped one never appears.
	e1, _ := q.TryDequeue()
	e2, _ := q.TryDequeue()
	assert.Equal(t, "A", e1)
	assert.Equal(t, "B", e2)
	_, ok := q.TryDequeue()
	assert.False(t, ok)

	// Draining frees capacity again.
	assert.True(t, q.Enqueue("D"))
}

func TestEventQueue_ConcurrentProducers(t *testing.T) {
	q := newEventQueue[string](0)

	const producers = 10
	const eventsPerProducer = 100

	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(producerID int) {
			defer wg.Done()
			for i := 0; i < eventsPerProducer; i++ {
				q.Enqueue(fmt.Sprintf("p%d-%d", producerID, i))
			}
		}(p)
	}

	received := make([]string, 0, producers*eventsPerProducer)

	consumerDone := make(chan struct{})
	go func() {
		for len(received) < producers*eventsPerProducer {
			e, ok := q.TryDequeue()
			if !ok {
				time.Sleep(time.Millisecond)
				continue
			}
			received = append(received, e)
		}
		close(consumerDone)
	}()

	wg.Wait()

	select {
	case <-consumerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer timeout")
	}

	// No event lost or duplicated, and same-producer insertion order holds.
	require.Len(t, received, producers*eventsPerProducer)
	seen := make(map[string]int, len(received))
	lastIndex := make(map[int]int)
	for p := 0; p < producers; p++ {
		lastIndex[p] = -1
	}
	for _, e := range received {
		seen[e]++
		var producer, index int
		_, err := fmt.Sscanf(e, "p%d-%d", &producer, &index)
		require.NoError(t, err)
		assert.Greaterf(t, index, lastIndex[producer], "producer %d reordered", producer)
		lastIndex[producer] = index
	}
	for e, n := range seen {
		assert.Equalf(t, 1, n, "event %s seen %d times", e, n)
	}
}
