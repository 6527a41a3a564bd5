package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/csvr/pkg/expr"
	"github.com/macropower/csvr/pkg/log"
	"github.com/macropower/csvr/pkg/rule"
	"github.com/macropower/csvr/pkg/table"
)

// Match records that a rule was satisfied by a record.
type Match struct {
	File   string   `json:"file"`
	Rule   string   `json:"rule"`
	Record []string `json:"record"`
}

// RecordString joins the record's fields with the table delimiter.
func (m Match) RecordString() string {
	return strings.Join(m.Record, string(table.Delimiter))
}

// Result is the outcome of processing one document.
type Result struct {
	// Matches in record order, then rule order.
	Matches []Match
	Records int
	Bytes   int64
}

// Processor evaluates a fixed rule set against documents. It holds no
// per-document state and is safe for concurrent use.
type Processor struct {
	tracer trace.Tracer
	rules  []*rule.Compiled
}

// Option configures a [Processor].
type Option func(*Processor)

// WithTracerProvider sets the tracer provider used for document spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Processor) {
		p.tracer = tp.Tracer("processor")
	}
}

// New creates a new [Processor] for rules.
func New(rules []*rule.Compiled, opts ...Option) *Processor {
	p := &Processor{
		tracer: otel.Tracer("processor"),
		rules:  rules,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Rules returns the rule set.
func (p *Processor) Rules() []*rule.Compiled {
	return p.rules
}

// ProcessFile processes the document at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Result, error) {
	d, err := table.Open(path)
	if err != nil {
		return Result{}, err //nolint:wrapcheck // Already wrapped by table.
	}

	res, err := p.Process(ctx, path, d)

	closeErr := d.Close()
	if err == nil && closeErr != nil {
		return Result{}, closeErr //nolint:wrapcheck // Already wrapped by table.
	}

	return res, err
}

// ProcessBytes processes an in-memory document. The name is recorded in
// each [Match].
func (p *Processor) ProcessBytes(ctx context.Context, name string, content []byte) (Result, error) {
	d, err := table.NewDocument(bytes.NewReader(content))
	if err != nil {
		return Result{}, err //nolint:wrapcheck // Already wrapped by table.
	}

	return p.Process(ctx, name, d)
}

// Process evaluates every rule against every record of d, building a fresh
// [expr.Context] per record. A read error aborts the document and no matches
// are returned for it.
func (p *Processor) Process(ctx context.Context, name string, d *table.Document) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "process.document", trace.WithAttributes(
		attribute.String("file", name),
		attribute.Int("rules", len(p.rules)),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(slog.String("file", name))

	var res Result

	headers := d.Headers()
	for rec, err := range d.Records() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "read failed")

			return Result{}, fmt.Errorf("%s: %w", name, err)
		}

		res.Records++

		rctx := expr.NewContext(headers, rec)
		for _, r := range p.rules {
			if r.Match(rctx) {
				res.Matches = append(res.Matches, Match{File: name, Rule: r.String(), Record: rec})
			}
		}
	}

	res.Bytes = d.BytesRead()

	span.SetAttributes(
		attribute.Int("records", res.Records),
		attribute.Int("matches", len(res.Matches)),
	)

	logger.DebugContext(ctx, "processed document",
		slog.Int("records", res.Records),
		slog.Int("matches", len(res.Matches)),
	)

	return res, nil
}
