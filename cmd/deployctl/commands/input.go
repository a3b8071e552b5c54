// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
)

// readInput reads the file named by the single positional argument,
// or stdin when there is none. With hexMode the input is hex text;
// whitespace between digits is ignored.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, error) {
	var data []byte
	var err error
	switch len(args) {
	case 0:
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	case 1:
		if data, err = os.ReadFile(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	if hexMode {
		return decodeHexInput(data)
	}
	return data, nil
}

func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	if len(cleaned) == 0 {
		return nil, errors.New("hex input is empty")
	}
	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return decoded[:count], nil
}
