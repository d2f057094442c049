// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashtable implements an open-addressed, block-based aggregation
// table: an array of 16-lane blocks, each lane carrying a one-byte tag for
// a SIMD-style (here: scalar) parallel compare, plus a dense
// insertion-ordered `items` list for sort/iterate passes.
package hashtable

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

const (
	lanesPerBlock  = 16
	emptyTag       = 0
	reservedRemap  = 1 // fixed, deterministic remap for a real tag that collides with emptyTag
	loadNumerator  = 7
	loadDenominator = 8
)

type lane struct {
	tag  byte
	slot []byte // nil => lane is empty
}

type block struct {
	lanes [lanesPerBlock]lane
}

// Table is a thread-local aggregation hash table: key bytes -> slot bytes.
// It is never shared across goroutines; each worker owns one.
type Table struct {
	blocks     []block
	numBlocks  int
	keysSize   int
	valuesSize int
	items      [][]byte
}

// New creates a table sized for one aggregation slot = keysSize+valuesSize
// bytes, starting at a single block (16 lanes).
func New(keysSize, valuesSize int) *Table {
	return &Table{
		blocks:     make([]block, 1),
		numBlocks:  1,
		keysSize:   keysSize,
		valuesSize: valuesSize,
	}
}

// Items returns the dense, insertion-ordered slice of live slot pointers.
// Callers may sort this slice in place without
// touching table topology.
func (t *Table) Items() [][]byte { return t.items }

// Len reports the number of live entries.
func (t *Table) Len() int { return len(t.items) }

func hashAndTag(key []byte) (blockHash uint64, tag byte) {
	h := xxhash.Sum64(key)
	tag = byte(h)
	if tag == emptyTag {
		tag = reservedRemap
	}
	return h >> 8, tag
}

func (t *Table) blockIndex(h uint64) int {
	return int(h % uint64(t.numBlocks))
}

// Find reports the slot for key, or false if absent. It never allocates.
func (t *Table) Find(key []byte) ([]byte, bool) {
	h, tag := hashAndTag(key)
	idx := t.blockIndex(h)
	for {
		b := &t.blocks[idx]
		hasEmpty := false
		for i := range b.lanes {
			l := &b.lanes[i]
			if l.slot == nil {
				hasEmpty = true
				continue
			}
			if l.tag == tag && bytes.Equal(l.slot[:t.keysSize], key) {
				return l.slot, true
			}
		}
		if hasEmpty {
			return nil, false
		}
		idx++
		if idx == t.numBlocks {
			idx = 0
		}
	}
}

// FindOrCreate returns the slot for key, allocating and inserting a new
// (zero-valued) slot if absent. The `created` flag tells the
// caller whether it must run value initialization.
func (t *Table) FindOrCreate(key []byte) (slot []byte, created bool) {
	h, tag := hashAndTag(key)
	idx := t.blockIndex(h)
	for {
		b := &t.blocks[idx]
		emptyLane := -1
		for i := range b.lanes {
			l := &b.lanes[i]
			if l.slot == nil {
				if emptyLane < 0 {
					emptyLane = i
				}
				continue
			}
			if l.tag == tag && bytes.Equal(l.slot[:t.keysSize], key) {
				return l.slot, false
			}
		}
		if emptyLane >= 0 {
			newSlot := make([]byte, t.keysSize+t.valuesSize)
			copy(newSlot, key)
			b.lanes[emptyLane] = lane{tag: tag, slot: newSlot}
			t.items = append(t.items, newSlot)
			t.maybeResize()
			return newSlot, true
		}
		idx++
		if idx == t.numBlocks {
			idx = 0
		}
	}
}

func (t *Table) maybeResize() {
	if len(t.items)*loadDenominator < t.numBlocks*lanesPerBlock*loadNumerator {
		return
	}
	t.resize(t.numBlocks * 2)
}

// resize doubles the block count and rehashes every live slot pointer
// in-place. Slot bytes themselves are never copied or moved.
func (t *Table) resize(newNumBlocks int) {
	newBlocks := make([]block, newNumBlocks)
	for _, slot := range t.items {
		h, tag := hashAndTag(slot[:t.keysSize])
		idx := int(h % uint64(newNumBlocks))
		for {
			b := &newBlocks[idx]
			placed := false
			for i := range b.lanes {
				if b.lanes[i].slot == nil {
					b.lanes[i] = lane{tag: tag, slot: slot}
					placed = true
					break
				}
			}
			if placed {
				break
			}
			idx++
			if idx == newNumBlocks {
				idx = 0
			}
		}
	}
	t.blocks = newBlocks
	t.numBlocks = newNumBlocks
}

// NumBlocks reports the current block count, mostly useful for tests that
// assert on resize behavior.
func (t *Table) NumBlocks() int { return t.numBlocks }

// KeysSize and ValuesSize report the compiled tuple widths this table was
// constructed with.
func (t *Table) KeysSize() int   { return t.keysSize }
func (t *Table) ValuesSize() int { return t.valuesSize }
