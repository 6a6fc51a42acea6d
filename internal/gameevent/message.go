// Package gameevent encodes and decodes the legacy game event network message
// (CMsgSource1LegacyGameEvent) and binds its positional keys to names using an
// event descriptor.
package gameevent

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// KeyType mirrors the engine's game event key type ids.
type KeyType int32

const (
	KeyString KeyType = iota + 1
	KeyFloat
	KeyLong
	KeyShort
	KeyByte
	KeyBool
	KeyUint64
	KeyPlayerController
	KeyPlayerPawn
)

func (k KeyType) String() string {
	switch k {
	case KeyString:
		return "string"
	case KeyFloat:
		return "float"
	case KeyLong:
		return "long"
	case KeyShort:
		return "short"
	case KeyByte:
		return "byte"
	case KeyBool:
		return "bool"
	case KeyUint64:
		return "uint64"
	case KeyPlayerController:
		return "player_controller"
	case KeyPlayerPawn:
		return "player_pawn"
	default:
		return fmt.Sprintf("keytype(%d)", int32(k))
	}
}

// message field numbers
const (
	fieldEventName   protowire.Number = 1
	fieldEventID     protowire.Number = 2
	fieldKeys        protowire.Number = 3
	fieldServerTick  protowire.Number = 4
	fieldPassthrough protowire.Number = 5
)

// key_t field numbers
const (
	fieldKeyType   protowire.Number = 1
	fieldValString protowire.Number = 2
	fieldValFloat  protowire.Number = 3
	fieldValLong   protowire.Number = 4
	fieldValShort  protowire.Number = 5
	fieldValByte   protowire.Number = 6
	fieldValBool   protowire.Number = 7
	fieldValUint64 protowire.Number = 8
)

var ErrMalformed = errors.New("gameevent: malformed message")

// Key is one positional value of a legacy game event.
type Key struct {
	Type   KeyType
	String string
	Float  float32
	Long   int32
	Short  int32
	Byte   int32
	Bool   bool
	Uint64 uint64
}

// Message is the decoded wire form of a legacy game event.
type Message struct {
	Name        string
	ID          int32
	Keys        []Key
	ServerTick  int32
	Passthrough int32
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func (k Key) marshal() []byte {
	var b []byte
	b = appendInt32(b, fieldKeyType, int32(k.Type))
	switch k.Type {
	case KeyString:
		b = protowire.AppendTag(b, fieldValString, protowire.BytesType)
		b = protowire.AppendString(b, k.String)
	case KeyFloat:
		b = protowire.AppendTag(b, fieldValFloat, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(k.Float))
	case KeyLong, KeyPlayerPawn:
		b = appendInt32(b, fieldValLong, k.Long)
	case KeyShort, KeyPlayerController:
		b = appendInt32(b, fieldValShort, k.Short)
	case KeyByte:
		b = appendInt32(b, fieldValByte, k.Byte)
	case KeyBool:
		b = protowire.AppendTag(b, fieldValBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(k.Bool))
	case KeyUint64:
		b = protowire.AppendTag(b, fieldValUint64, protowire.VarintType)
		b = protowire.AppendVarint(b, k.Uint64)
	}
	return b
}

// Marshal encodes m in protobuf wire format.
func (m *Message) Marshal() []byte {
	var b []byte
	if m.Name != "" {
		b = protowire.AppendTag(b, fieldEventName, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	b = appendInt32(b, fieldEventID, m.ID)
	for _, k := range m.Keys {
		b = protowire.AppendTag(b, fieldKeys, protowire.BytesType)
		b = protowire.AppendBytes(b, k.marshal())
	}
	if m.ServerTick != 0 {
		b = appendInt32(b, fieldServerTick, m.ServerTick)
	}
	if m.Passthrough != 0 {
		b = appendInt32(b, fieldPassthrough, m.Passthrough)
	}
	return b
}

// Unmarshal decodes a legacy game event. Unknown fields are skipped.
func Unmarshal(b []byte) (*Message, error) {
	m := &Message{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldEventName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: event_name: %v", ErrMalformed, protowire.ParseError(n))
			}
			m.Name = v
			b = b[n:]
		case num == fieldEventID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: eventid: %v", ErrMalformed, protowire.ParseError(n))
			}
			m.ID = int32(v)
			b = b[n:]
		case num == fieldKeys && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: keys: %v", ErrMalformed, protowire.ParseError(n))
			}
			k, err := unmarshalKey(raw)
			if err != nil {
				return nil, err
			}
			m.Keys = append(m.Keys, k)
			b = b[n:]
		case num == fieldServerTick && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: server_tick: %v", ErrMalformed, protowire.ParseError(n))
			}
			m.ServerTick = int32(v)
			b = b[n:]
		case num == fieldPassthrough && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: passthrough: %v", ErrMalformed, protowire.ParseError(n))
			}
			m.Passthrough = int32(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

func unmarshalKey(b []byte) (Key, error) {
	var k Key
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Key{}, fmt.Errorf("%w: key tag: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldValString && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return Key{}, fmt.Errorf("%w: val_string: %v", ErrMalformed, protowire.ParseError(n))
			}
			k.String = v
			b = b[n:]
		case num == fieldValFloat && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return Key{}, fmt.Errorf("%w: val_float: %v", ErrMalformed, protowire.ParseError(n))
			}
			k.Float = math.Float32frombits(v)
			b = b[n:]
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Key{}, fmt.Errorf("%w: key field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			switch num {
			case fieldKeyType:
				k.Type = KeyType(int32(v))
			case fieldValLong:
				k.Long = int32(v)
			case fieldValShort:
				k.Short = int32(v)
			case fieldValByte:
				k.Byte = int32(v)
			case fieldValBool:
				k.Bool = protowire.DecodeBool(v)
			case fieldValUint64:
				k.Uint64 = v
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Key{}, fmt.Errorf("%w: key field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return k, nil
}
