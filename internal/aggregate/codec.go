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

// Package aggregate implements the key/value codec, the biflow
// expansion table, value aggregation, and the
// per-thread aggregator driver.
package aggregate

import (
	"encoding/binary"

	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

// BuildKey extracts the composite key for one (record, direction, find_flags)
// event into buf (len must equal def.KeysSize). It returns false if any key
// field's required wire field is missing — the whole event is then
// dropped, not just the one field.
func BuildKey(reader ipfix.Reader, rec *ipfix.Record, def *view.Definition, dir view.Direction, findFlags ipfix.FindFlags, buf []byte) bool {
	for i := range def.Keys {
		f := &def.Keys[i]
		if !writeKeyField(reader, rec, f, dir, findFlags, buf[f.Offset:f.Offset+f.Size]) {
			return false
		}
	}
	return true
}

func writeKeyField(reader ipfix.Reader, rec *ipfix.Record, f *view.Field, dir view.Direction, findFlags ipfix.FindFlags, dst []byte) bool {
	switch f.KeyKind {
	case view.KeyBiflowDirectionTag:
		switch dir {
		case view.DirEventFwd:
			dst[0] = 1
		case view.DirEventRev:
			dst[0] = 2
		default:
			dst[0] = 0
		}
		return true
	case view.KeySourceIp, view.KeyDestinationIp, view.KeyBidiIp:
		v4, v6 := f.Source(dir)
		return writeTaggedIP(reader, rec, v4, v6, findFlags, dst)
	case view.KeyIpv4Subnet, view.KeyBidiIpv4Subnet:
		v4, _ := f.Source(dir)
		if !writeScalarField(reader, rec, v4, findFlags, ipfix.IPv4, dst) {
			return false
		}
		maskPrefix(dst, f.PrefixLen)
		return true
	case view.KeyIpv6Subnet, view.KeyBidiIpv6Subnet:
		v4, _ := f.Source(dir) // the single source ref lives in the "v4" slot regardless of address family
		if !writeScalarField(reader, rec, v4, findFlags, ipfix.IPv6, dst) {
			return false
		}
		maskPrefix(dst, f.PrefixLen)
		return true
	case view.KeyBidiPort:
		v4, _ := f.Source(dir)
		return writeScalarField(reader, rec, v4, findFlags, ipfix.U16, dst)
	default: // Verbatim
		return writeScalarField(reader, rec, f.FwdV4, findFlags, f.DataType, dst)
	}
}

func writeScalarField(reader ipfix.Reader, rec *ipfix.Record, ref ipfix.WireRef, findFlags ipfix.FindFlags, dtype ipfix.DataType, dst []byte) bool {
	if !ref.Valid {
		return false
	}
	v, ok := reader.FindField(rec, ref.Enterprise, ref.ID, findFlags)
	if !ok {
		return false
	}
	encodeScalar(dst, v, dtype)
	return true
}

func writeTaggedIP(reader ipfix.Reader, rec *ipfix.Record, v4, v6 ipfix.WireRef, findFlags ipfix.FindFlags, dst []byte) bool {
	if v4.Valid {
		if v, ok := reader.FindField(rec, v4.Enterprise, v4.ID, findFlags); ok {
			dst[0] = 4
			copy(dst[1:5], v.IPv4[:])
			for i := 5; i < len(dst); i++ {
				dst[i] = 0
			}
			return true
		}
	}
	if v6.Valid {
		if v, ok := reader.FindField(rec, v6.Enterprise, v6.ID, findFlags); ok {
			dst[0] = 16
			copy(dst[1:17], v.IPv6[:])
			return true
		}
	}
	return false
}

func encodeScalar(dst []byte, v ipfix.Value, dtype ipfix.DataType) {
	switch dtype {
	case ipfix.U8:
		dst[0] = byte(v.U64)
	case ipfix.I8:
		dst[0] = byte(int8(v.I64))
	case ipfix.U16:
		binary.BigEndian.PutUint16(dst, uint16(v.U64))
	case ipfix.I16:
		binary.BigEndian.PutUint16(dst, uint16(int16(v.I64)))
	case ipfix.U32:
		binary.BigEndian.PutUint32(dst, uint32(v.U64))
	case ipfix.I32:
		binary.BigEndian.PutUint32(dst, uint32(int32(v.I64)))
	case ipfix.U64, ipfix.DateTimeMs:
		binary.BigEndian.PutUint64(dst, v.U64)
	case ipfix.I64:
		binary.BigEndian.PutUint64(dst, uint64(v.I64))
	case ipfix.IPv4:
		copy(dst, v.IPv4[:])
	case ipfix.IPv6:
		copy(dst, v.IPv6[:])
	case ipfix.MAC:
		copy(dst, v.MAC[:])
	case ipfix.String128:
		n := copy(dst, v.Str)
		for i := n; i < len(dst); i++ {
			dst[i] = 0
		}
	}
}

// maskPrefix zeroes every bit of addr below prefixLen, copying full bytes
// and masking only the one partial byte.
func maskPrefix(addr []byte, prefixLen int) {
	fullBytes := prefixLen / 8
	rem := prefixLen % 8
	for i := fullBytes; i < len(addr); i++ {
		if i == fullBytes && rem > 0 {
			addr[i] &= byte(0xFF << (8 - rem))
		} else {
			addr[i] = 0
		}
	}
}

// InitValues sets every value accumulator in slot to its identity element:
// zero for Sum/Count, the type's extrema for Min/Max.
func InitValues(slot []byte, def *view.Definition) {
	for i := range def.Values {
		f := &def.Values[i]
		dst := slot[f.AbsOffset : f.AbsOffset+f.Size]
		switch f.ValueKind {
		case view.ValueSum, view.ValueCount:
			clearBytes(dst)
		case view.ValueMin:
			writeExtremum(dst, f.DataType, true)
		case view.ValueMax:
			writeExtremum(dst, f.DataType, false)
		}
	}
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// writeExtremum writes the maximum representable value of dtype when
// writeMax is true (used to initialize a Min accumulator, so any observed
// value is smaller), or the minimum representable value when false (used to
// initialize a Max accumulator).
func writeExtremum(dst []byte, dtype ipfix.DataType, writeMax bool) {
	signed := dtype.Signed()
	switch len(dst) {
	case 1:
		switch {
		case signed && writeMax:
			dst[0] = 0x7F
		case signed && !writeMax:
			dst[0] = 0x80
		case !signed && writeMax:
			dst[0] = 0xFF
		default:
			dst[0] = 0x00
		}
	case 2:
		binary.BigEndian.PutUint16(dst, extremeU16(signed, writeMax))
	case 4:
		binary.BigEndian.PutUint32(dst, extremeU32(signed, writeMax))
	case 8:
		binary.BigEndian.PutUint64(dst, extremeU64(signed, writeMax))
	}
}

func extremeU16(signed, writeMax bool) uint16 {
	switch {
	case signed && writeMax:
		return 0x7FFF
	case signed && !writeMax:
		return 0x8000
	case !signed && writeMax:
		return 0xFFFF
	default:
		return 0
	}
}

func extremeU32(signed, writeMax bool) uint32 {
	switch {
	case signed && writeMax:
		return 0x7FFFFFFF
	case signed && !writeMax:
		return 0x80000000
	case !signed && writeMax:
		return 0xFFFFFFFF
	default:
		return 0
	}
}

func extremeU64(signed, writeMax bool) uint64 {
	switch {
	case signed && writeMax:
		return 0x7FFFFFFFFFFFFFFF
	case signed && !writeMax:
		return 0x8000000000000000
	case !signed && writeMax:
		return 0xFFFFFFFFFFFFFFFF
	default:
		return 0
	}
}
