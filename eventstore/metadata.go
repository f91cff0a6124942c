package eventstore

import "github.com/vmihailenco/msgpack/v5"

// encodeMetadata and decodeMetadata serialize the small free-form metadata
// map attached to events for storage in a single BLOB/bytea column, rather
// than a separate join table.
func encodeMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return msgpack.Marshal(m)
}

func decodeMetadata(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]string
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
