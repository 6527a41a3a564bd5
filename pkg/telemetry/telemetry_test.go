package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/csvr/pkg/telemetry"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(t.Context(), "", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	tp, err := telemetry.NewTracerProvider(t.Context(), "127.0.0.1:4317", "test")
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(t.Context(), "span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// No collector is listening, so only check that shutdown returns.
	_ = tp.Shutdown(ctx)
}
