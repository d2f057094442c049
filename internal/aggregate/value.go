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

package aggregate

import (
	"encoding/binary"

	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

// effectiveDirection resolves the directionality value-field filters match
// against. The key-variant Direction and the find_flags lookup
// selector are independent axes; for a non-bidirectional schema
// (Direction is always Any) the find_flags axis is the only source of
// forward/reverse information a biflow record carries, so it stands in.
func effectiveDirection(dir view.Direction, findFlags ipfix.FindFlags) view.Direction {
	if dir != view.DirEventAny {
		return dir
	}
	switch findFlags {
	case ipfix.FindForward:
		return view.DirEventFwd
	case ipfix.FindReverse:
		return view.DirEventRev
	default:
		return view.DirEventAny
	}
}

func directionMatches(filter view.DirectionFilter, eff view.Direction) bool {
	switch filter {
	case view.DirFwdOnly:
		return eff == view.DirEventFwd
	case view.DirRevOnly:
		return eff == view.DirEventRev
	default: // DirAny
		return true
	}
}

// UpdateValues applies one event's contribution to every value field whose
// direction filter matches. Fields whose wire value is missing
// are left unchanged; this does not abort the rest of the event.
func UpdateValues(reader ipfix.Reader, rec *ipfix.Record, def *view.Definition, dir view.Direction, findFlags ipfix.FindFlags, slot []byte) {
	eff := effectiveDirection(dir, findFlags)
	for i := range def.Values {
		f := &def.Values[i]
		if !directionMatches(f.DirFilter, eff) {
			continue
		}
		dst := slot[f.AbsOffset : f.AbsOffset+f.Size]
		switch f.ValueKind {
		case view.ValueCount:
			putUint(dst, getUint(dst)+1)
		case view.ValueSum:
			v, ok := reader.FindField(rec, f.FwdV4.Enterprise, f.FwdV4.ID, findFlags)
			if !ok {
				continue
			}
			addScalar(dst, v, f.DataType)
		case view.ValueMin:
			v, ok := reader.FindField(rec, f.FwdV4.Enterprise, f.FwdV4.ID, findFlags)
			if !ok {
				continue
			}
			clampScalar(dst, v, f.DataType, true)
		case view.ValueMax:
			v, ok := reader.FindField(rec, f.FwdV4.Enterprise, f.FwdV4.ID, findFlags)
			if !ok {
				continue
			}
			clampScalar(dst, v, f.DataType, false)
		}
	}
}

func addScalar(dst []byte, v ipfix.Value, dtype ipfix.DataType) {
	if dtype.Signed() {
		putInt(dst, getInt(dst)+v.I64)
		return
	}
	putUint(dst, getUint(dst)+v.U64)
}

// clampScalar replaces the accumulator iff the wire value is strictly
// smaller (wantMin) or strictly larger (!wantMin).
func clampScalar(dst []byte, v ipfix.Value, dtype ipfix.DataType, wantMin bool) {
	if dtype.Signed() {
		cur, nv := getInt(dst), v.I64
		if (wantMin && nv < cur) || (!wantMin && nv > cur) {
			putInt(dst, nv)
		}
		return
	}
	cur, nv := getUint(dst), v.U64
	if (wantMin && nv < cur) || (!wantMin && nv > cur) {
		putUint(dst, nv)
	}
}

// MergeValues folds src's accumulators into dst using the same reducers as
// UpdateValues (Sum/Count -> add, Min -> min, Max -> max). It is used both
// by Table-table merges of identical keys and by the threshold-algorithm
// merge's cross-worker consolidation.
func MergeValues(dst, src []byte, def *view.Definition) {
	for i := range def.Values {
		f := &def.Values[i]
		d := dst[f.AbsOffset : f.AbsOffset+f.Size]
		s := src[f.AbsOffset : f.AbsOffset+f.Size]
		switch f.ValueKind {
		case view.ValueSum, view.ValueCount:
			if f.DataType.Signed() {
				putInt(d, getInt(d)+getInt(s))
			} else {
				putUint(d, getUint(d)+getUint(s))
			}
		case view.ValueMin:
			mergeExtreme(d, s, f.DataType, true)
		case view.ValueMax:
			mergeExtreme(d, s, f.DataType, false)
		}
	}
}

func mergeExtreme(dst, src []byte, dtype ipfix.DataType, wantMin bool) {
	if dtype.Signed() {
		d, s := getInt(dst), getInt(src)
		if (wantMin && s < d) || (!wantMin && s > d) {
			putInt(dst, s)
		}
		return
	}
	d, s := getUint(dst), getUint(src)
	if (wantMin && s < d) || (!wantMin && s > d) {
		putUint(dst, s)
	}
}

func getUint(b []byte) uint64 {
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

func putUint(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(b, v)
	}
}

func getInt(b []byte) int64 {
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

func putInt(b []byte, v int64) {
	switch len(b) {
	case 1:
		b[0] = byte(int8(v))
	case 2:
		binary.BigEndian.PutUint16(b, uint16(int16(v)))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(int32(v)))
	case 8:
		binary.BigEndian.PutUint64(b, uint64(v))
	}
}
