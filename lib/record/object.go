// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"fmt"

	"github.com/camunda/camunda-sub024/lib/codec"
)

// Record is anything that can be encoded into and decoded from a
// caller-provided buffer.
type Record interface {
	// EncodedLength is the exact number of bytes Encode writes.
	EncodedLength() int

	// Encode writes the record into buf starting at offset and
	// returns the number of bytes written.
	Encode(buf []byte, offset int) (int, error)

	// Decode binds the record to the encoding that starts at offset
	// in buf and returns the number of bytes consumed. String and
	// binary values remain views into buf.
	Decode(buf []byte, offset int) (int, error)

	// Wrap decodes a buffer that must contain exactly one record.
	Wrap(buf []byte) error

	// Marshal encodes the record into a freshly allocated buffer.
	Marshal() ([]byte, error)

	Reset()
}

// Object is a record made of a fixed, ordered set of named
// properties. It is embedded by every concrete record type; the
// embedding type constructs its properties and hands them to
// NewObject.
//
// On the wire an Object is a CBOR map keyed by property name. Encode
// writes every property in declaration order. Decode accepts keys in
// any order and skips keys it does not know, so a reader tolerates
// records produced by a newer writer. Properties absent from the
// buffer take their defaults; an absent property without a default
// fails the decode with ErrMissingProperty.
type Object struct {
	properties []Property
	index      map[string]int
	// encoded is the region of the decode buffer this object was
	// bound to by the last successful Decode.
	encoded []byte
}

// NewObject declares a record with the given properties. arity is the
// number of properties the record type promises to declare; a
// mismatch or a repeated name is a programming error and panics.
func NewObject(arity int, properties ...Property) Object {
	if len(properties) != arity {
		panic(fmt.Sprintf("record: declared arity %d, got %d properties", arity, len(properties)))
	}
	index := make(map[string]int, len(properties))
	for i, property := range properties {
		name := property.Name()
		if _, duplicate := index[name]; duplicate {
			panic(fmt.Sprintf("record: property %q declared twice", name))
		}
		index[name] = i
	}
	return Object{properties: properties, index: index}
}

// Properties returns the declared properties in declaration order.
func (o *Object) Properties() []Property {
	return o.properties
}

func (o *Object) EncodedLength() int {
	length := headLength(uint64(len(o.properties)))
	for _, property := range o.properties {
		length += spanLength(len(property.Name())) + property.EncodedLength()
	}
	return length
}

func (o *Object) Encode(buf []byte, offset int) (int, error) {
	for _, property := range o.properties {
		if !property.HasValue() {
			return 0, propertyError(property.Name(), ErrUnsetProperty)
		}
	}
	length := o.EncodedLength()
	if offset < 0 || length > len(buf)-offset {
		return 0, fmt.Errorf("%w: need %d bytes at offset %d, buffer has %d",
			ErrBufferTooSmall, length, offset, len(buf))
	}

	head := appendHead(buf[offset:offset:offset+length], majorMap, uint64(len(o.properties)))
	position := offset + len(head)
	for _, property := range o.properties {
		key := appendText(buf[position:position:offset+length], []byte(property.Name()))
		position += len(key)
		n, err := property.Encode(buf[:offset+length], position)
		if err != nil {
			return 0, err
		}
		position += n
	}
	return position - offset, nil
}

func (o *Object) Decode(buf []byte, offset int) (int, error) {
	n, err := o.decode(buf, offset)
	if err != nil {
		o.Reset()
		return 0, err
	}
	return n, nil
}

func (o *Object) decode(buf []byte, offset int) (int, error) {
	o.Reset()
	data, err := window(buf, offset)
	if err != nil {
		return 0, err
	}
	pairs, position, err := expectHead(data, majorMap, "record")
	if err != nil {
		return 0, err
	}

	seen := make([]bool, len(o.properties))
	for pair := uint64(0); pair < pairs; pair++ {
		key, n, err := readText(data[position:], "property key")
		if err != nil {
			return 0, err
		}
		position += n

		index, known := o.index[string(key)]
		if !known {
			skipped, err := codec.SkipItem(data[position:])
			if err != nil {
				return 0, corruptf("skipping unknown property %q: %v", key, err)
			}
			position += skipped
			continue
		}
		if seen[index] {
			return 0, corruptf("property %q appears twice", key)
		}
		seen[index] = true

		n, err = o.properties[index].Decode(data, position)
		if err != nil {
			return 0, err
		}
		position += n
	}

	for index, property := range o.properties {
		if !seen[index] && !property.HasValue() {
			return 0, propertyError(property.Name(), ErrMissingProperty)
		}
	}
	o.encoded = data[:position:position]
	return position, nil
}

// Wrap binds the object to buf, which must hold exactly one
// well-formed CBOR item encoding this record.
func (o *Object) Wrap(buf []byte) error {
	if err := codec.Wellformed(buf); err != nil {
		o.Reset()
		return corruptf("%v", err)
	}
	_, err := o.Decode(buf, 0)
	return err
}

// Length returns the number of bytes consumed by the last successful
// Decode or Wrap, or zero.
func (o *Object) Length() int {
	return len(o.encoded)
}

func (o *Object) Marshal() ([]byte, error) {
	buf := make([]byte, o.EncodedLength())
	n, err := o.Encode(buf, 0)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Reset reverts every property to its default and unbinds the object
// from any decode buffer.
func (o *Object) Reset() {
	for _, property := range o.properties {
		property.Reset()
	}
	o.encoded = nil
}

// MarshalJSON renders the record as a JSON object with properties in
// declaration order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for i, property := range o.properties {
		if i > 0 {
			buffer.WriteByte(',')
		}
		fmt.Fprintf(&buffer, "%q:", property.Name())
		value, err := property.MarshalJSON()
		if err != nil {
			return nil, propertyError(property.Name(), err)
		}
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// Clone produces an independent deep copy of src by encoding it into a
// fresh buffer and binding a new record from newRecord to that buffer.
// Nothing in the copy aliases src's storage.
func Clone[T Record](src T, newRecord func() T) (T, error) {
	buf := make([]byte, src.EncodedLength())
	if _, err := src.Encode(buf, 0); err != nil {
		var zero T
		return zero, fmt.Errorf("cloning record: %w", err)
	}
	clone := newRecord()
	if err := clone.Wrap(buf); err != nil {
		var zero T
		return zero, fmt.Errorf("cloning record: %w", err)
	}
	return clone, nil
}
