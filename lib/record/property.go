// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"math"
	"strconv"
)

// Property is one named, typed slot of a record. Properties encode
// their value only; the owning Object writes the name key.
type Property interface {
	Name() string

	// HasValue reports whether the property would encode: it was
	// assigned, decoded, or carries a default.
	HasValue() bool

	EncodedLength() int
	Encode(buf []byte, offset int) (int, error)
	Decode(buf []byte, offset int) (int, error)

	// Reset drops any assigned or decoded value, reverting to the
	// default (or to unset for required properties).
	Reset()

	MarshalJSON() ([]byte, error)
}

// scalar holds the state shared by every single-valued property.
type scalar[T any] struct {
	name         string
	value        T
	defaultValue T
	set          bool
	hasDefault   bool
}

func (s *scalar[T]) Name() string { return s.name }

func (s *scalar[T]) HasValue() bool { return s.set || s.hasDefault }

func (s *scalar[T]) Reset() {
	var zero T
	s.value = zero
	s.set = false
}

// current returns the assigned value, the default, or the zero value.
func (s *scalar[T]) current() T {
	if s.set {
		return s.value
	}
	return s.defaultValue
}

func (s *scalar[T]) assign(value T) {
	s.value = value
	s.set = true
}

func (s *scalar[T]) requireValue() error {
	if !s.HasValue() {
		return propertyError(s.name, ErrUnsetProperty)
	}
	return nil
}

func (s *scalar[T]) marshalJSON(value any) ([]byte, error) {
	if !s.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(value)
}

// StringProperty holds UTF-8 text. A decoded value is a view into the
// decode buffer; Value copies it into a Go string.
type StringProperty struct {
	scalar[[]byte]
}

func NewStringProperty(name string) *StringProperty {
	return &StringProperty{scalar[[]byte]{name: name}}
}

// WithDefault makes the property optional.
func (p *StringProperty) WithDefault(value string) *StringProperty {
	p.defaultValue = []byte(value)
	p.hasDefault = true
	return p
}

func (p *StringProperty) Value() string { return string(p.current()) }

// Bytes returns the raw UTF-8 bytes without copying. The slice aliases
// the decode buffer when the value was decoded.
func (p *StringProperty) Bytes() []byte { return p.current() }

func (p *StringProperty) SetValue(value string) { p.assign([]byte(value)) }

// SetBytes assigns value without copying. The caller must not modify
// value afterwards.
func (p *StringProperty) SetBytes(value []byte) { p.assign(value) }

func (p *StringProperty) EncodedLength() int { return spanLength(len(p.current())) }

func (p *StringProperty) Encode(buf []byte, offset int) (int, error) {
	if err := p.requireValue(); err != nil {
		return 0, err
	}
	return encodeInto(buf, offset, p.EncodedLength(), func(dst []byte) []byte {
		return appendText(dst, p.current())
	})
}

func (p *StringProperty) Decode(buf []byte, offset int) (int, error) {
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(p.name, err)
	}
	value, n, err := readText(data, p.name)
	if err != nil {
		return 0, err
	}
	p.assign(value)
	return n, nil
}

func (p *StringProperty) MarshalJSON() ([]byte, error) { return p.marshalJSON(p.Value()) }

// IntegerProperty holds a signed 32-bit integer.
type IntegerProperty struct {
	scalar[int32]
}

func NewIntegerProperty(name string) *IntegerProperty {
	return &IntegerProperty{scalar[int32]{name: name}}
}

func (p *IntegerProperty) WithDefault(value int32) *IntegerProperty {
	p.defaultValue = value
	p.hasDefault = true
	return p
}

func (p *IntegerProperty) Value() int32 { return p.current() }

func (p *IntegerProperty) SetValue(value int32) { p.assign(value) }

func (p *IntegerProperty) EncodedLength() int { return intLength(int64(p.current())) }

func (p *IntegerProperty) Encode(buf []byte, offset int) (int, error) {
	if err := p.requireValue(); err != nil {
		return 0, err
	}
	return encodeInto(buf, offset, p.EncodedLength(), func(dst []byte) []byte {
		return appendInt(dst, int64(p.current()))
	})
}

func (p *IntegerProperty) Decode(buf []byte, offset int) (int, error) {
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(p.name, err)
	}
	value, n, err := readInt(data, math.MinInt32, math.MaxInt32, p.name)
	if err != nil {
		return 0, err
	}
	p.assign(int32(value))
	return n, nil
}

func (p *IntegerProperty) MarshalJSON() ([]byte, error) { return p.marshalJSON(p.Value()) }

// LongProperty holds a signed 64-bit integer. Keys are longs.
type LongProperty struct {
	scalar[int64]
}

func NewLongProperty(name string) *LongProperty {
	return &LongProperty{scalar[int64]{name: name}}
}

func (p *LongProperty) WithDefault(value int64) *LongProperty {
	p.defaultValue = value
	p.hasDefault = true
	return p
}

func (p *LongProperty) Value() int64 { return p.current() }

func (p *LongProperty) SetValue(value int64) { p.assign(value) }

func (p *LongProperty) EncodedLength() int { return intLength(p.current()) }

func (p *LongProperty) Encode(buf []byte, offset int) (int, error) {
	if err := p.requireValue(); err != nil {
		return 0, err
	}
	return encodeInto(buf, offset, p.EncodedLength(), func(dst []byte) []byte {
		return appendInt(dst, p.current())
	})
}

func (p *LongProperty) Decode(buf []byte, offset int) (int, error) {
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(p.name, err)
	}
	value, n, err := readInt(data, math.MinInt64, math.MaxInt64, p.name)
	if err != nil {
		return 0, err
	}
	p.assign(value)
	return n, nil
}

// MarshalJSON renders longs as JSON numbers. Keys exceed 2^53, which
// JavaScript consumers cannot represent exactly, but Go and jq can.
func (p *LongProperty) MarshalJSON() ([]byte, error) {
	if !p.HasValue() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, p.Value(), 10), nil
}

type BooleanProperty struct {
	scalar[bool]
}

func NewBooleanProperty(name string) *BooleanProperty {
	return &BooleanProperty{scalar[bool]{name: name}}
}

func (p *BooleanProperty) WithDefault(value bool) *BooleanProperty {
	p.defaultValue = value
	p.hasDefault = true
	return p
}

func (p *BooleanProperty) Value() bool { return p.current() }

func (p *BooleanProperty) SetValue(value bool) { p.assign(value) }

func (p *BooleanProperty) EncodedLength() int { return 1 }

func (p *BooleanProperty) Encode(buf []byte, offset int) (int, error) {
	if err := p.requireValue(); err != nil {
		return 0, err
	}
	return encodeInto(buf, offset, 1, func(dst []byte) []byte {
		if p.current() {
			return append(dst, simpleTrue)
		}
		return append(dst, simpleFalse)
	})
}

func (p *BooleanProperty) Decode(buf []byte, offset int) (int, error) {
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(p.name, err)
	}
	value, n, err := readBool(data, p.name)
	if err != nil {
		return 0, err
	}
	p.assign(value)
	return n, nil
}

func (p *BooleanProperty) MarshalJSON() ([]byte, error) { return p.marshalJSON(p.Value()) }

// BinaryProperty holds opaque bytes: resource payloads and checksums.
// Decoded values are views into the decode buffer.
type BinaryProperty struct {
	scalar[[]byte]
}

func NewBinaryProperty(name string) *BinaryProperty {
	return &BinaryProperty{scalar[[]byte]{name: name}}
}

func (p *BinaryProperty) WithDefault(value []byte) *BinaryProperty {
	p.defaultValue = value
	p.hasDefault = true
	return p
}

// Value returns the bytes without copying.
func (p *BinaryProperty) Value() []byte { return p.current() }

// SetValue assigns value without copying.
func (p *BinaryProperty) SetValue(value []byte) { p.assign(value) }

func (p *BinaryProperty) EncodedLength() int { return spanLength(len(p.current())) }

func (p *BinaryProperty) Encode(buf []byte, offset int) (int, error) {
	if err := p.requireValue(); err != nil {
		return 0, err
	}
	return encodeInto(buf, offset, p.EncodedLength(), func(dst []byte) []byte {
		return appendBytes(dst, p.current())
	})
}

func (p *BinaryProperty) Decode(buf []byte, offset int) (int, error) {
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(p.name, err)
	}
	value, n, err := readSpan(data, majorBytes, p.name)
	if err != nil {
		return 0, err
	}
	p.assign(value)
	return n, nil
}

// MarshalJSON renders the bytes as standard base64, matching
// encoding/json's treatment of []byte. An empty value renders as "".
func (p *BinaryProperty) MarshalJSON() ([]byte, error) {
	value := p.Value()
	if value == nil {
		value = []byte{}
	}
	return p.marshalJSON(value)
}

