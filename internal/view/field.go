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

// Package view compiles the "-a keys" / "-s values" CLI strings
// into an immutable schema: an ordered key tuple, an ordered value tuple,
// and the byte offsets the codec and comparator both key off of. A
// Definition is built once at startup and shared read-only across every
// worker.
package view

import "fdsgo/internal/ipfix"

// KeyKind enumerates the key-field variants.
type KeyKind int

const (
	KeyVerbatim KeyKind = iota
	KeyIpv4Subnet
	KeyIpv6Subnet
	KeySourceIp
	KeyDestinationIp
	KeyBidiIp
	KeyBidiPort
	KeyBidiIpv4Subnet
	KeyBidiIpv6Subnet
	KeyBiflowDirectionTag
)

// ValueKind enumerates the value-field reducers.
type ValueKind int

const (
	ValueSum ValueKind = iota
	ValueMin
	ValueMax
	ValueCount
)

// DirectionFilter controls which expanded-direction events may update a
// value accumulator.
type DirectionFilter int

const (
	DirAny DirectionFilter = iota
	DirFwdOnly
	DirRevOnly
)

// Direction is the per-event key-variant selector biflow expansion
// produces. It is distinct from DirectionFilter: Direction says which
// src/dst swap applies to *this* event, DirectionFilter says which events a
// given value accumulator listens to.
type Direction int

const (
	DirEventAny Direction = iota
	DirEventFwd
	DirEventRev
)

// Field describes one column of either the key tuple or the value tuple.
// Only the members relevant to Kind are meaningful; this
// mirrors the source's overlapping-storage union as a plain
// struct rather than as a set of disjoint Go types, because the codec
// switches on Kind anyway and a sum type would just move that switch here.
type Field struct {
	Name       string
	DataType   ipfix.DataType
	Size       int
	Offset     int // byte offset within this field's own tuple (key or value)
	AbsOffset  int // byte offset within a full slot (keysSize + Offset for value fields)
	IsKey      bool
	KeyKind    KeyKind
	ValueKind  ValueKind
	PrefixLen  int
	DirFilter  DirectionFilter

	// Wire sources. Verbatim/value fields use only FwdV4. IP fields that can
	// carry either address family populate FwdV4/FwdV6 (tried v4 then v6 on
	// extraction). Bidi fields additionally populate RevV4/RevV6
	// so the Reverse-direction event reads the swapped (dst) element.
	FwdV4, FwdV6 ipfix.WireRef
	RevV4, RevV6 ipfix.WireRef
}

// Source returns the wire reference to read for the given event Direction,
// along with its v6 counterpart if this field can carry either address
// family. Fields without a direction swap (everything but the Bidi* kinds)
// return the same pair regardless of dir.
func (f *Field) Source(dir Direction) (v4, v6 ipfix.WireRef) {
	switch f.KeyKind {
	case KeyBidiIp, KeyBidiPort, KeyBidiIpv4Subnet, KeyBidiIpv6Subnet:
		if dir == DirEventRev {
			return f.RevV4, f.RevV6
		}
		return f.FwdV4, f.FwdV6
	default:
		return f.FwdV4, f.FwdV6
	}
}
