package grpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Oracle wire messages. Field numbers are part of the protocol:
//
//	message DockRef      { int32 worker_id = 1; int32 dock_id = 2; }
//	message Ack          { }
//	message GuessRequest { int32 worker_id = 1; int32 dock_id = 2; string candidate = 3; }
//	message Verdict      { bool correct = 1; }

type wireMessage interface {
	marshalWire() []byte
	unmarshalWire(b []byte) error
}

type DockRef struct {
	WorkerID int32
	DockID   int32
}

type Ack struct{}

type GuessRequest struct {
	WorkerID  int32
	DockID    int32
	Candidate string
}

type Verdict struct {
	Correct bool
}

func (m *DockRef) marshalWire() []byte {
	var b []byte
	b = appendInt32(b, 1, m.WorkerID)
	b = appendInt32(b, 2, m.DockID)
	return b
}

func (m *DockRef) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeInt32(b, &m.WorkerID)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &m.DockID)
		}
		return -1, nil
	})
}

func (m *Ack) marshalWire() []byte { return nil }

func (m *Ack) unmarshalWire(b []byte) error {
	return consumeFields(b, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return -1, nil
	})
}

func (m *GuessRequest) marshalWire() []byte {
	var b []byte
	b = appendInt32(b, 1, m.WorkerID)
	b = appendInt32(b, 2, m.DockID)
	if m.Candidate != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, m.Candidate)
	}
	return b
}

func (m *GuessRequest) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeInt32(b, &m.WorkerID)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt32(b, &m.DockID)
		case num == 3 && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Candidate = s
			return n, nil
		}
		return -1, nil
	})
}

func (m *Verdict) marshalWire() []byte {
	if !m.Correct {
		return nil
	}
	b := protowire.AppendTag(nil, 1, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(true))
}

func (m *Verdict) unmarshalWire(b []byte) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Correct = protowire.DecodeBool(v)
			return n, nil
		}
		return -1, nil
	})
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func consumeInt32(b []byte, dst *int32) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int32(v)
	return n, nil
}

// consumeFields walks the fields of a message. field returns the bytes it
// consumed, or -1 to have an unknown field skipped.
func consumeFields(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if n < 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}
