// Package queue provides an unbounded FIFO channel.
package queue

// Queue is an unbounded FIFO with channel endpoints. Sends on [Queue.In]
// never block for long, since a goroutine moves values into a growing
// buffer. Closing In closes Out once every buffered value is received.
type Queue[T any] struct {
	in  chan T
	out chan T
}

// New creates a new [Queue] and starts its buffering goroutine.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		in:  make(chan T),
		out: make(chan T),
	}

	go q.run()

	return q
}

// In returns the send side. Any number of goroutines may send; exactly one
// must close it when all senders are done.
func (q *Queue[T]) In() chan<- T {
	return q.in
}

// Out returns the receive side.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

func (q *Queue[T]) run() {
	defer close(q.out)

	var buf []T

	in := q.in
	for in != nil || len(buf) > 0 {
		// A nil out channel disables the send case while the buffer is empty.
		var (
			out  chan T
			next T
		)
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}

		select {
		case v, ok := <-in:
			if !ok {
				in = nil

				continue
			}

			buf = append(buf, v)

		case out <- next:
			var zero T

			buf[0] = zero
			buf = buf[1:]
		}
	}
}
