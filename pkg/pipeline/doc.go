// Package pipeline streams documents through a fixed pool of workers and
// aggregates their matches.
//
// A [Source] emits [Task]s onto an unbounded task queue and returns when it
// has nothing more to emit. The queue is then closed; each worker, on
// observing the close, sends exactly one end message to the report queue and
// exits. The aggregator forwards matches to a [Sink] in arrival order and
// returns once it has received one end message per worker.
//
// Three source strategies exist for paths: [SingleFile], [Snapshot] (a
// one-time listing of a directory, optionally staged into a work directory)
// and [Watch] (polling a directory until the context is cancelled). [Stdin]
// reads a whole document into memory.
package pipeline
