package ctxkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ok := CorrelationID(ctx)
	assert.False(t, ok)

	ctx = WithCorrelationID(ctx, "corr-1")
	v, ok := CorrelationID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "corr-1", v)
}

func TestAgentID_RoundTrip(t *testing.T) {
	ctx := WithAgentID(context.Background(), "agent-1")
	v, ok := AgentID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "agent-1", v)
}

func TestEnvelopeID_RoundTrip(t *testing.T) {
	ctx := WithEnvelopeID(context.Background(), "env-1")
	v, ok := EnvelopeID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "env-1", v)
}

func TestDeactivating_DefaultsFalse(t *testing.T) {
	assert.False(t, Deactivating(context.Background()))
	assert.True(t, Deactivating(WithDeactivating(context.Background())))
}
