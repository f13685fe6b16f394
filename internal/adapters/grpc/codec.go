package grpc

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype the oracle service is served with
const CodecName = "portwire"

func init() {
	encoding.RegisterCodec(wireCodec{})
}

// wireCodec encodes the oracle messages in the protobuf binary format
type wireCodec struct{}

func (wireCodec) Name() string { return CodecName }

func (wireCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("%s codec: cannot marshal %T", CodecName, v)
	}
	return m.marshalWire(), nil
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("%s codec: cannot unmarshal into %T", CodecName, v)
	}
	return m.unmarshalWire(data)
}
