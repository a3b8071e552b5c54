// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// CBOR major types used by the record layout (RFC 8949 §3.1).
const (
	majorUnsigned byte = 0
	majorNegative byte = 1
	majorBytes    byte = 2
	majorText     byte = 3
	majorArray    byte = 4
	majorMap      byte = 5
	majorSimple   byte = 7
)

const (
	simpleFalse byte = 0xf4
	simpleTrue  byte = 0xf5
)

// headLength returns the number of bytes the shortest-form head for
// argument arg occupies.
func headLength(arg uint64) int {
	switch {
	case arg < 24:
		return 1
	case arg <= math.MaxUint8:
		return 2
	case arg <= math.MaxUint16:
		return 3
	case arg <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// appendHead appends the shortest-form head for (major, arg).
func appendHead(dst []byte, major byte, arg uint64) []byte {
	initial := major << 5
	switch {
	case arg < 24:
		return append(dst, initial|byte(arg))
	case arg <= math.MaxUint8:
		return append(dst, initial|24, byte(arg))
	case arg <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(dst, initial|25), uint16(arg))
	case arg <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(dst, initial|26), uint32(arg))
	default:
		return binary.BigEndian.AppendUint64(append(dst, initial|27), arg)
	}
}

// readHead parses a definite-length head at the start of data.
// Indefinite lengths and reserved additional-information values are
// reported as corrupt: the record layout only ever writes definite
// lengths.
func readHead(data []byte) (major byte, arg uint64, n int, err error) {
	if len(data) == 0 {
		return 0, 0, 0, truncated("head")
	}
	major = data[0] >> 5
	info := data[0] & 0x1f
	switch {
	case info < 24:
		return major, uint64(info), 1, nil
	case info == 24:
		if len(data) < 2 {
			return 0, 0, 0, truncated("head")
		}
		return major, uint64(data[1]), 2, nil
	case info == 25:
		if len(data) < 3 {
			return 0, 0, 0, truncated("head")
		}
		return major, uint64(binary.BigEndian.Uint16(data[1:])), 3, nil
	case info == 26:
		if len(data) < 5 {
			return 0, 0, 0, truncated("head")
		}
		return major, uint64(binary.BigEndian.Uint32(data[1:])), 5, nil
	case info == 27:
		if len(data) < 9 {
			return 0, 0, 0, truncated("head")
		}
		return major, binary.BigEndian.Uint64(data[1:]), 9, nil
	case info == 31:
		return 0, 0, 0, corruptf("indefinite-length item (major type %d) is not supported", major)
	default:
		return 0, 0, 0, corruptf("reserved additional information %d", info)
	}
}

// expectHead reads a head and checks its major type.
func expectHead(data []byte, want byte, what string) (uint64, int, error) {
	major, arg, n, err := readHead(data)
	if err != nil {
		return 0, 0, err
	}
	if major != want {
		return 0, 0, corruptf("%s: expected major type %d, found %d", what, want, major)
	}
	return arg, n, nil
}

// readSpan reads a byte or text string of the given major type and
// returns a view of its payload (no copy) and the total bytes
// consumed.
func readSpan(data []byte, major byte, what string) ([]byte, int, error) {
	length, n, err := expectHead(data, major, what)
	if err != nil {
		return nil, 0, err
	}
	if length > uint64(len(data)-n) {
		return nil, 0, truncated(what)
	}
	end := n + int(length)
	return data[n:end:end], end, nil
}

func readText(data []byte, what string) ([]byte, int, error) {
	value, n, err := readSpan(data, majorText, what)
	if err != nil {
		return nil, 0, err
	}
	if !utf8.Valid(value) {
		return nil, 0, corruptf("%s: text string is not valid UTF-8", what)
	}
	return value, n, nil
}

func appendText(dst []byte, value []byte) []byte {
	return append(appendHead(dst, majorText, uint64(len(value))), value...)
}

func appendBytes(dst []byte, value []byte) []byte {
	return append(appendHead(dst, majorBytes, uint64(len(value))), value...)
}

func spanLength(length int) int {
	return headLength(uint64(length)) + length
}

func intLength(value int64) int {
	if value >= 0 {
		return headLength(uint64(value))
	}
	return headLength(uint64(^value))
}

func appendInt(dst []byte, value int64) []byte {
	if value >= 0 {
		return appendHead(dst, majorUnsigned, uint64(value))
	}
	// -1 - value, computed without overflow for math.MinInt64.
	return appendHead(dst, majorNegative, uint64(^value))
}

// readInt reads a major type 0 or 1 integer bounded to [min, max].
func readInt(data []byte, min, max int64, what string) (int64, int, error) {
	major, arg, n, err := readHead(data)
	if err != nil {
		return 0, 0, err
	}
	var value int64
	switch major {
	case majorUnsigned:
		if arg > math.MaxInt64 {
			return 0, 0, corruptf("%s: integer %d overflows int64", what, arg)
		}
		value = int64(arg)
	case majorNegative:
		if arg > math.MaxInt64 {
			return 0, 0, corruptf("%s: integer -1-%d overflows int64", what, arg)
		}
		value = ^int64(arg)
	default:
		return 0, 0, corruptf("%s: expected integer, found major type %d", what, major)
	}
	if value < min || value > max {
		return 0, 0, corruptf("%s: integer %d out of range [%d, %d]", what, value, min, max)
	}
	return value, n, nil
}

func readBool(data []byte, what string) (bool, int, error) {
	if len(data) == 0 {
		return false, 0, truncated(what)
	}
	switch data[0] {
	case simpleFalse:
		return false, 1, nil
	case simpleTrue:
		return true, 1, nil
	default:
		return false, 0, corruptf("%s: expected boolean, found initial byte 0x%02x", what, data[0])
	}
}

// window returns buf[offset:] after bounds-checking offset.
func window(buf []byte, offset int) ([]byte, error) {
	if offset < 0 || offset > len(buf) {
		return nil, corruptf("offset %d outside buffer of length %d", offset, len(buf))
	}
	return buf[offset:], nil
}

// encodeInto appends exactly length bytes produced by fill into
// buf[offset:]. buf is never grown.
func encodeInto(buf []byte, offset, length int, fill func([]byte) []byte) (int, error) {
	if offset < 0 || length > len(buf)-offset {
		return 0, fmt.Errorf("%w: need %d bytes at offset %d, buffer has %d",
			ErrBufferTooSmall, length, offset, len(buf))
	}
	written := fill(buf[offset:offset:offset+length])
	if len(written) != length {
		panic(fmt.Sprintf("record: encoder wrote %d bytes, predicted %d", len(written), length))
	}
	return length, nil
}
