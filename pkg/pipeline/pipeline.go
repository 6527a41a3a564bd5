package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/csvr/pkg/log"
	"github.com/macropower/csvr/pkg/process"
	"github.com/macropower/csvr/pkg/queue"
)

// ErrWorkers is returned when the worker count is not positive.
var ErrWorkers = errors.New("worker count must be at least 1")

// Sink receives every match in arrival order.
type Sink interface {
	Report(m process.Match) error
}

// Summary describes a completed run.
type Summary struct {
	// RunID identifies the run in logs and traces.
	RunID       string
	Duration    time.Duration
	Bytes       int64
	Files       int
	FailedFiles int
	Records     int
	Matches     int
	// Ended counts the end messages received from workers. A run that
	// terminated normally has exactly one per worker.
	Ended int
}

// report is a message on the report queue: either the outcome of one task,
// or a worker's end message.
type report struct {
	err    error
	task   Task
	result process.Result
	end    bool
}

// Pipeline runs documents from a [Source] through a worker pool.
type Pipeline struct {
	proc    *process.Processor
	sink    Sink
	tracer  trace.Tracer
	workers int
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithWorkers sets the number of workers. Defaults to 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithTracerProvider sets the tracer provider for run and task spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		p.tracer = tp.Tracer("pipeline")
	}
}

// New creates a new [Pipeline].
func New(proc *process.Processor, sink Sink, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		proc:    proc,
		sink:    sink,
		tracer:  otel.Tracer("pipeline"),
		workers: 1,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrWorkers, p.workers)
	}

	return p, nil
}

// Run drives src to completion and returns once every worker has ended and
// every match has been delivered to the sink. Cancelling ctx stops sources
// that honour it; tasks already queued are still processed.
//
// The returned error is the source's error, if any. Per-document errors are
// logged and counted in [Summary.FailedFiles].
func (p *Pipeline) Run(ctx context.Context, src Source) (Summary, error) {
	runID := uuid.NewString()

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("workers", p.workers),
	))
	defer span.End()

	ctx = log.NewContext(ctx, log.WithContext(ctx).With(slog.String("run", runID)))

	start := time.Now()

	tasks := queue.New[Task]()
	reports := queue.New[report]()

	// Workers finish queued tasks even when ctx is cancelled.
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group

	g.Go(func() error {
		defer close(tasks.In())

		return src.Run(ctx, func(t Task) {
			tasks.In() <- t
		})
	})

	for id := range p.workers {
		g.Go(func() error {
			p.work(workCtx, id, tasks.Out(), reports.In())

			return nil
		})
	}

	sum := p.aggregate(ctx, reports.Out())

	// Every worker has sent its end message, so nothing else will be sent.
	close(reports.In())

	err := g.Wait()

	sum.RunID = runID
	sum.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("files", sum.Files),
		attribute.Int("matches", sum.Matches),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "source failed")

		return sum, fmt.Errorf("source: %w", err)
	}

	return sum, nil
}

func (p *Pipeline) work(ctx context.Context, id int, tasks <-chan Task, reports chan<- report) {
	logger := log.WithContext(ctx).With(slog.Int("worker", id))

	for t := range tasks {
		reports <- p.handle(ctx, id, t)
	}

	logger.DebugContext(ctx, "worker done")

	reports <- report{end: true}
}

func (p *Pipeline) handle(ctx context.Context, id int, t Task) report {
	ctx, span := p.tracer.Start(ctx, "worker.task", trace.WithAttributes(
		attribute.Int("worker", id),
		attribute.String("file", t.Path),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(
		slog.Int("worker", id),
		slog.String("file", t.Path),
	)

	var (
		res process.Result
		err error
	)
	if t.Content != nil {
		res, err = p.proc.ProcessBytes(ctx, t.Path, t.Content)
	} else {
		res, err = p.proc.ProcessFile(ctx, t.Path)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "process failed")
		logger.ErrorContext(ctx, "process file", slog.Any("error", err))

		return report{task: t, err: err}
	}

	if t.Remove {
		rmErr := os.Remove(t.Path)
		if rmErr != nil {
			logger.ErrorContext(ctx, "remove processed file", slog.Any("error", rmErr))
		}
	}

	return report{task: t, result: res}
}

// aggregate forwards matches to the sink until it has received one end
// message per worker.
func (p *Pipeline) aggregate(ctx context.Context, reports <-chan report) Summary {
	logger := log.WithContext(ctx)

	var sum Summary

	for r := range reports {
		if r.end {
			sum.Ended++
			if sum.Ended == p.workers {
				break
			}

			continue
		}

		sum.Files++

		if r.err != nil {
			sum.FailedFiles++

			continue
		}

		sum.Records += r.result.Records
		sum.Bytes += r.result.Bytes
		sum.Matches += len(r.result.Matches)

		for _, m := range r.result.Matches {
			err := p.sink.Report(m)
			if err != nil {
				logger.ErrorContext(ctx, "report match", slog.Any("error", err))
			}
		}
	}

	return sum
}
