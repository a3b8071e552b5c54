// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

// Package keygen mints partition-scoped keys. A key packs the id of
// the partition that minted it into its high bits, so keys minted on
// different partitions never collide and the owning partition can be
// recovered from any key.
package keygen

import (
	"fmt"
	"sync/atomic"
)

// counterBits is the width of the per-partition counter.
const counterBits = 51

const (
	counterMask = int64(1)<<counterBits - 1

	// MaxPartitionID is the largest partition id that fits above the
	// counter without making keys negative.
	MaxPartitionID = int32(1)<<(63-counterBits) - 1
)

// Encode packs a partition id and a counter value into a key.
func Encode(partitionID int32, counter int64) int64 {
	return int64(partitionID)<<counterBits | counter&counterMask
}

// PartitionOf returns the partition that minted key.
func PartitionOf(key int64) int32 {
	return int32(key >> counterBits)
}

// CounterOf returns the partition-local counter of key.
func CounterOf(key int64) int64 {
	return key & counterMask
}

// Generator mints strictly increasing keys for one partition. It is
// safe for concurrent use.
type Generator struct {
	partitionID int32
	counter     atomic.Int64
}

// NewGenerator returns a generator that continues after lastKey, the
// highest key this partition has minted so far (zero or negative when
// none). A lastKey from another partition is rejected: resuming from
// it would hand out keys the other partition may also mint.
func NewGenerator(partitionID int32, lastKey int64) (*Generator, error) {
	if partitionID < 1 || partitionID > MaxPartitionID {
		return nil, fmt.Errorf("partition id %d out of range [1, %d]", partitionID, MaxPartitionID)
	}
	g := &Generator{partitionID: partitionID}
	if lastKey > 0 {
		if owner := PartitionOf(lastKey); owner != partitionID {
			return nil, fmt.Errorf("last key %d belongs to partition %d, not %d", lastKey, owner, partitionID)
		}
		g.counter.Store(CounterOf(lastKey))
	}
	return g, nil
}

func (g *Generator) PartitionID() int32 { return g.partitionID }

// Next mints a new key.
func (g *Generator) Next() int64 {
	counter := g.counter.Add(1)
	if counter > counterMask {
		panic(fmt.Sprintf("keygen: partition %d exhausted its key space", g.partitionID))
	}
	return Encode(g.partitionID, counter)
}
