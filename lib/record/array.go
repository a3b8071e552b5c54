// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// ArrayProperty is an ordered sequence of records of one type.
//
// After Decode the array is lazy: every element has been validated,
// but elements are only materialized as records when iterated, each
// iteration decoding afresh from the bound buffer. The first Add
// materializes the whole array so it can be appended to. An array
// always has a value (an absent array decodes as empty).
type ArrayProperty[T Record] struct {
	name       string
	newElement func() T

	elements []T

	// Lazy state: the encoded elements (without the array head) and
	// their count.
	lazy    bool
	encoded []byte
	count   int
}

func NewArrayProperty[T Record](name string, newElement func() T) *ArrayProperty[T] {
	return &ArrayProperty[T]{name: name, newElement: newElement}
}

func (a *ArrayProperty[T]) Name() string { return a.name }

func (a *ArrayProperty[T]) HasValue() bool { return true }

func (a *ArrayProperty[T]) Len() int {
	if a.lazy {
		return a.count
	}
	return len(a.elements)
}

// Add appends a new, empty element and returns it for the caller to
// populate.
func (a *ArrayProperty[T]) Add() T {
	a.materialize()
	element := a.newElement()
	a.elements = append(a.elements, element)
	return element
}

// All iterates the elements in order. Iteration may stop early and
// may be restarted. For a decoded array each step yields a new view
// decoded from the bound buffer; for a built array it yields the
// elements returned by Add.
func (a *ArrayProperty[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if !a.lazy {
			for _, element := range a.elements {
				if !yield(element) {
					return
				}
			}
			return
		}
		position := 0
		for i := range a.count {
			element := a.newElement()
			n, err := element.Decode(a.encoded, position)
			if err != nil {
				// Every element was validated when the array was
				// decoded, so the bound buffer changed underneath us.
				panic(fmt.Sprintf("record: array %q element %d no longer decodes: %v", a.name, i, err))
			}
			position += n
			if !yield(element) {
				return
			}
		}
	}
}

func (a *ArrayProperty[T]) Reset() {
	a.elements = nil
	a.lazy = false
	a.encoded = nil
	a.count = 0
}

func (a *ArrayProperty[T]) materialize() {
	if !a.lazy {
		return
	}
	elements := make([]T, 0, a.count+1)
	for element := range a.All() {
		elements = append(elements, element)
	}
	a.Reset()
	a.elements = elements
}

func (a *ArrayProperty[T]) EncodedLength() int {
	if a.lazy {
		return headLength(uint64(a.count)) + len(a.encoded)
	}
	length := headLength(uint64(len(a.elements)))
	for _, element := range a.elements {
		length += element.EncodedLength()
	}
	return length
}

func (a *ArrayProperty[T]) Encode(buf []byte, offset int) (int, error) {
	length := a.EncodedLength()
	if offset < 0 || length > len(buf)-offset {
		return 0, fmt.Errorf("%w: need %d bytes at offset %d, buffer has %d",
			ErrBufferTooSmall, length, offset, len(buf))
	}
	head := appendHead(buf[offset:offset:offset+length], majorArray, uint64(a.Len()))
	position := offset + len(head)
	if a.lazy {
		position += copy(buf[position:offset+length], a.encoded)
		return position - offset, nil
	}
	for i, element := range a.elements {
		n, err := element.Encode(buf[:offset+length], position)
		if err != nil {
			return 0, fmt.Errorf("array %q element %d: %w", a.name, i, err)
		}
		position += n
	}
	return position - offset, nil
}

func (a *ArrayProperty[T]) Decode(buf []byte, offset int) (int, error) {
	a.Reset()
	data, err := window(buf, offset)
	if err != nil {
		return 0, propertyError(a.name, err)
	}
	count, headSize, err := expectHead(data, majorArray, a.name)
	if err != nil {
		return 0, err
	}

	scratch := a.newElement()
	position := headSize
	for i := uint64(0); i < count; i++ {
		n, err := scratch.Decode(data, position)
		if err != nil {
			return 0, fmt.Errorf("array %q element %d: %w", a.name, i, err)
		}
		position += n
	}

	a.lazy = true
	a.encoded = data[headSize:position:position]
	a.count = int(count)
	return position, nil
}

func (a *ArrayProperty[T]) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('[')
	i := 0
	for element := range a.All() {
		if i > 0 {
			buffer.WriteByte(',')
		}
		value, err := json.Marshal(element)
		if err != nil {
			return nil, fmt.Errorf("array %q element %d: %w", a.name, i, err)
		}
		buffer.Write(value)
		i++
	}
	buffer.WriteByte(']')
	return buffer.Bytes(), nil
}
