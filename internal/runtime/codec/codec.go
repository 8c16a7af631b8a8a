// Package codec provides the serializers and deserializers used by messaging
// components. JSON encoding is backed by sonic; protobuf encoding uses the
// standard protobuf runtime.
package codec

import (
	"io"

	"github.com/bytedance/sonic"
	"google.golang.org/protobuf/proto"
)

var defaultConfig = sonic.ConfigStd

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Encode writes v as JSON to w.
func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

// Decode reads JSON from r into v.
func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}

// MarshalJSON is a typed serializer usable directly as a component's
// Serialize function.
func MarshalJSON[T any](v T) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

// UnmarshalJSON is a typed deserializer usable directly as a component's
// Deserialize function.
func UnmarshalJSON[T any](data []byte) (T, error) {
	var v T
	err := defaultConfig.Unmarshal(data, &v)
	return v, err
}

// MarshalProto serializes a protobuf message.
func MarshalProto[T proto.Message](m T) ([]byte, error) {
	return proto.Marshal(m)
}

// UnmarshalProto deserializes a protobuf message of concrete type T. T is the
// element type; the returned value is the populated *T.
func UnmarshalProto[T any, PT interface {
	proto.Message
	*T
}](data []byte) (PT, error) {
	var v T
	msg := PT(&v)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
