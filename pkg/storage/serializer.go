package storage

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidData is returned when a payload cannot belong to the serializer.
var ErrInvalidData = errors.New("storage: invalid data")

// Serializer converts values to and from stored bytes.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default serializer; stored values stay human readable.
type JSON struct {
	Pretty bool
}

func (s JSON) Marshal(v any) ([]byte, error) {
	if s.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// MsgPack encodes with MessagePack, using json struct tags so records share
// field names with the JSON serializer.
type MsgPack struct{}

func (MsgPack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgPack) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrInvalidData
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
