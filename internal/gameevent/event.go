package gameevent

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKey    = errors.New("gameevent: unknown key")
	ErrKeyCount      = errors.New("gameevent: key count does not match descriptor")
	ErrEventMismatch = errors.New("gameevent: message does not belong to descriptor")
)

// KeyDef names one positional key of an event.
type KeyDef struct {
	Name string
	Type KeyType
}

// Descriptor describes an event the way the engine's event manager does: an
// id shared with clients plus the ordered key layout.
type Descriptor struct {
	ID   int32
	Name string
	Keys []KeyDef
}

func (d *Descriptor) index(name string) int {
	for i, k := range d.Keys {
		if k.Name == name {
			return i
		}
	}
	return -1
}

// Event is a decoded message bound to its descriptor.
type Event struct {
	desc *Descriptor
	msg  *Message
}

// Bind checks msg against desc and returns a named view of it.
func Bind(desc *Descriptor, msg *Message) (*Event, error) {
	if desc == nil || msg == nil {
		return nil, ErrEventMismatch
	}
	if msg.ID != desc.ID {
		return nil, fmt.Errorf("%w: id %d, want %d", ErrEventMismatch, msg.ID, desc.ID)
	}
	if len(msg.Keys) != len(desc.Keys) {
		return nil, fmt.Errorf("%w: %s has %d keys, got %d", ErrKeyCount, desc.Name, len(desc.Keys), len(msg.Keys))
	}
	return &Event{desc: desc, msg: msg}, nil
}

// New builds an event with zero values for every descriptor key.
func New(desc *Descriptor) *Event {
	msg := &Message{ID: desc.ID, Keys: make([]Key, len(desc.Keys))}
	for i, k := range desc.Keys {
		msg.Keys[i].Type = k.Type
	}
	return &Event{desc: desc, msg: msg}
}

func (e *Event) Name() string      { return e.desc.Name }
func (e *Event) ID() int32         { return e.desc.ID }
func (e *Event) Message() *Message { return e.msg }

func (e *Event) key(name string) (*Key, error) {
	i := e.desc.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownKey, e.desc.Name, name)
	}
	return &e.msg.Keys[i], nil
}

// Int returns an integer-typed key value.
func (e *Event) Int(name string) (int64, error) {
	k, err := e.key(name)
	if err != nil {
		return 0, err
	}
	switch k.Type {
	case KeyLong, KeyPlayerPawn:
		return int64(k.Long), nil
	case KeyShort, KeyPlayerController:
		return int64(k.Short), nil
	case KeyByte:
		return int64(k.Byte), nil
	case KeyUint64:
		return int64(k.Uint64), nil
	case KeyBool:
		if k.Bool {
			return 1, nil
		}
		return 0, nil
	case KeyFloat:
		return int64(k.Float), nil
	default:
		return 0, fmt.Errorf("gameevent: key %s is %s", name, k.Type)
	}
}

// PlayerSlot reads a player controller key as a slot number.
func (e *Event) PlayerSlot(name string) (int, error) {
	v, err := e.Int(name)
	if err != nil {
		return -1, err
	}
	return int(v & 0xFF), nil
}

func (e *Event) Float(name string) (float32, error) {
	k, err := e.key(name)
	if err != nil {
		return 0, err
	}
	if k.Type == KeyFloat {
		return k.Float, nil
	}
	v, err := e.Int(name)
	return float32(v), err
}

func (e *Event) StringValue(name string) (string, error) {
	k, err := e.key(name)
	if err != nil {
		return "", err
	}
	return k.String, nil
}

// SetInt stores v according to the key's declared type.
func (e *Event) SetInt(name string, v int64) error {
	k, err := e.key(name)
	if err != nil {
		return err
	}
	switch k.Type {
	case KeyLong, KeyPlayerPawn:
		k.Long = int32(v)
	case KeyShort, KeyPlayerController:
		k.Short = int32(v)
	case KeyByte:
		k.Byte = int32(v)
	case KeyUint64:
		k.Uint64 = uint64(v)
	case KeyBool:
		k.Bool = v != 0
	case KeyFloat:
		k.Float = float32(v)
	default:
		return fmt.Errorf("gameevent: key %s is %s", name, k.Type)
	}
	return nil
}

func (e *Event) SetFloat(name string, v float32) error {
	k, err := e.key(name)
	if err != nil {
		return err
	}
	if k.Type != KeyFloat {
		return fmt.Errorf("gameevent: key %s is %s", name, k.Type)
	}
	k.Float = v
	return nil
}

func (e *Event) SetBool(name string, v bool) error {
	k, err := e.key(name)
	if err != nil {
		return err
	}
	if k.Type != KeyBool {
		return fmt.Errorf("gameevent: key %s is %s", name, k.Type)
	}
	k.Bool = v
	return nil
}

// PlayerPing is the layout of the player_ping event.
func PlayerPing(id int32) *Descriptor {
	return &Descriptor{
		ID:   id,
		Name: "player_ping",
		Keys: []KeyDef{
			{Name: "userid", Type: KeyPlayerController},
			{Name: "entityid", Type: KeyLong},
			{Name: "x", Type: KeyFloat},
			{Name: "y", Type: KeyFloat},
			{Name: "z", Type: KeyFloat},
			{Name: "urgent", Type: KeyBool},
		},
	}
}
