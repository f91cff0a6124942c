package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestAgentID_ParseAndString(t *testing.T) {
	id := NewAgentID()
	parsed, err := ParseAgentID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))
}

func TestAgentID_NilByDefault(t *testing.T) {
	var id AgentID
	assert.True(t, id.IsNil())
	assert.True(t, NilAgentID.IsNil())
}

func TestAgentID_MsgpackRoundTrip(t *testing.T) {
	id := NewAgentID()

	data, err := msgpack.Marshal(id)
	require.NoError(t, err)

	var decoded AgentID
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.True(t, id.Equal(decoded))
}

func TestAgentID_JSONRoundTrip(t *testing.T) {
	id := NewAgentID()

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded AgentID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equal(decoded))
}

func TestMustParseAgentID_PanicsOnGarbage(t *testing.T) {
	assert.Panics(t, func() {
		MustParseAgentID("not-a-uuid")
	})
}
