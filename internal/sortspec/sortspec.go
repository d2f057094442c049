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

// Package sortspec implements typed multi-field record ordering: an
// ordered list of (field, ascending) pairs compared lexicographically
// over a slot's bytes.
package sortspec

import (
	"bytes"
	"encoding/binary"
	"sort"

	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

// Entry is one (field, ascending) pair of the sort specification.
type Entry struct {
	Field     *view.Field
	Ascending bool
}

// Spec is the ordered sort specification: primary field first, then
// tie-breakers in declaration order.
type Spec []Entry

// Compare orders two slots under spec. It returns <0 if a sorts before b in
// the spec's declared order, >0 if after, 0 if all fields tie. Fields
// default to descending (the engine's natural "biggest first" order), so
// the raw numeric comparison is negated unless the entry is explicitly
// ascending.
func Compare(a, b []byte, spec Spec) int {
	for _, e := range spec {
		c := compareField(a, b, e.Field)
		if !e.Ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareField(a, b []byte, f *view.Field) int {
	off, size := f.AbsOffset, f.Size
	av, bv := a[off:off+size], b[off:off+size]
	switch f.DataType {
	case ipfix.U8, ipfix.U16, ipfix.U32, ipfix.U64, ipfix.DateTimeMs:
		return compareUint(av, bv)
	case ipfix.I8, ipfix.I16, ipfix.I32, ipfix.I64:
		return compareInt(av, bv)
	default:
		// IP/MAC/string fields have no natural descending numeric order in
		// the source; unsigned big-endian byte compare gives a stable,
		// deterministic total order, which is all the spec requires of a
		// tie-breaker field.
		return bytes.Compare(av, bv)
	}
}

func compareUint(a, b []byte) int {
	av, bv := readUint(a), readUint(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func compareInt(a, b []byte) int {
	av, bv := readInt(a), readInt(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	default:
		return 0
	}
}

func readInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b)))
	case 8:
		return int64(binary.BigEndian.Uint64(b))
	default:
		return 0
	}
}

// SortDescending sorts items (slot byte slices) in place under spec, the
// final step of the per-thread aggregator loop.
func SortDescending(items [][]byte, spec Spec) {
	sort.Slice(items, func(i, j int) bool { return Compare(items[i], items[j], spec) < 0 })
}
