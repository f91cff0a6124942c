package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Count int            `msgpack:"count"`
	Tags  []string       `msgpack:"tags"`
	Meta  map[string]int `msgpack:"meta"`
}

func TestDeepCopy_IsIndependent(t *testing.T) {
	original := counterState{Count: 1, Tags: []string{"a"}, Meta: map[string]int{"x": 1}}

	copied, err := DeepCopy(original)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	copied.Tags[0] = "b"
	copied.Meta["x"] = 2
	assert.Equal(t, "a", original.Tags[0])
	assert.Equal(t, 1, original.Meta["x"])
}
