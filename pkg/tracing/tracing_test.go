package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_DisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("wallet-client")
	assert.Equal(t, "wallet-client", cfg.AppName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestTracer_ReturnsNamedTracer(t *testing.T) {
	tr := Tracer("gateway")
	assert.NotNil(t, tr)

	_, span := tr.Start(context.Background(), "test-span")
	span.End()
}
