package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/csvr/pkg/queue"
)

func TestQueueFIFO(t *testing.T) {
	t.Parallel()

	q := queue.New[int]()

	// Sending everything before receiving shows the queue does not block.
	for i := range 1000 {
		q.In() <- i
	}

	close(q.In())

	got := make([]int, 0, 1000)
	for v := range q.Out() {
		got = append(got, v)
	}

	want := make([]int, 1000)
	for i := range want {
		want[i] = i
	}

	assert.Equal(t, want, got)
}

func TestQueueManyProducersAndConsumers(t *testing.T) {
	t.Parallel()

	q := queue.New[int]()

	var producers sync.WaitGroup
	for p := range 4 {
		producers.Go(func() {
			for i := range 250 {
				q.In() <- p*1000 + i
			}
		})
	}

	var (
		mu       sync.Mutex
		seen     = map[int]bool{}
		perProd  = map[int][]int{}
		consumer sync.WaitGroup
	)

	for range 3 {
		consumer.Go(func() {
			for v := range q.Out() {
				mu.Lock()
				seen[v] = true
				perProd[v/1000] = append(perProd[v/1000], v)
				mu.Unlock()
			}
		})
	}

	producers.Wait()
	close(q.In())
	consumer.Wait()

	assert.Len(t, seen, 1000)
	assert.Len(t, perProd, 4)
}

func TestQueueCloseEmpty(t *testing.T) {
	t.Parallel()

	q := queue.New[string]()
	close(q.In())

	_, ok := <-q.Out()
	assert.False(t, ok)
}
