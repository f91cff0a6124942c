package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentmesh/core/envelope"
)

func TestEnvelopePool_PutResetsFields(t *testing.T) {
	p := NewEnvelopePool()

	e := p.Get()
	e.EnvelopeID = "abc"
	e.CurrentHop = 3
	e.CorrelationID = "corr"
	e.Publishers = append(e.Publishers, envelope.NewAgentID())
	e.Metadata["k"] = "v"

	p.Put(e)

	reused := p.Get()
	assert.Empty(t, reused.EnvelopeID)
	assert.Zero(t, reused.CurrentHop)
	assert.Empty(t, reused.CorrelationID)
	assert.Empty(t, reused.Publishers)
	assert.Empty(t, reused.Metadata)
}

func TestGlobalEnvelopePool_IsUsable(t *testing.T) {
	e := GlobalEnvelopePool.Get()
	assert.NotNil(t, e.Metadata)
	GlobalEnvelopePool.Put(e)
}
