package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type depositPayload struct {
	Amount int `msgpack:"amount"`
}

func TestEncodeDecodePayload_RoundTrip(t *testing.T) {
	tp, err := EncodePayload(depositPayload{Amount: 42})
	require.NoError(t, err)
	assert.Contains(t, tp.TypeName, "depositPayload")
	assert.NotEmpty(t, tp.Data)

	var out depositPayload
	require.NoError(t, DecodePayload(tp, &out))
	assert.Equal(t, 42, out.Amount)
}

func TestEncodePayload_RejectsNil(t *testing.T) {
	_, err := EncodePayload(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodePayload_RejectsEmptyTypeName(t *testing.T) {
	err := DecodePayload(TypedPayload{}, &depositPayload{})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestTypeNameOf_PointerAndValueAgree(t *testing.T) {
	p := depositPayload{}
	assert.Equal(t, TypeNameOf(p), TypeNameOf(&p))
}
