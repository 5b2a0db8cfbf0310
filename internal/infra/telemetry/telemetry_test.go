package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(context.Background(), Options{Writer: &buf})
	require.NoError(t, err)

	_, span := p.Tracer("").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Zero(t, buf.Len())
}

func TestInit_EnabledExportsSpansAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(context.Background(), Options{
		Writer:         &buf,
		ServiceName:    "cardflow",
		ServiceVersion: "test",
		Enabled:        true,
	})
	require.NoError(t, err)

	_, span := p.Tracer("").Start(context.Background(), "cardflow.run")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	counter, err := p.Meter("").Int64Counter("cardflow.runs")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, p.Shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "cardflow.run")
	assert.Contains(t, out, "cardflow.runs")
}
