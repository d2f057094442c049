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

package ipfix

import "io"

// FieldKey identifies one wire field on a SliceRecord: an information
// element plus which half of a biflow it was read from.
type FieldKey struct {
	Enterprise uint32
	ID         uint16
	Flags      FindFlags
}

// SliceRecord is a canned decoded record used by SliceReader. Fields read
// with FindNone are looked up regardless of the flags a caller passes (a
// Unidirectional record has no forward/reverse half); fields stored under
// FindForward/FindReverse only answer a lookup made with the matching flag.
type SliceRecord struct {
	Kind   TemplateKind
	Fields map[FieldKey]Value
}

// SliceReader is the in-memory stand-in for the external wire decoder: it
// replays a fixed slice of already-decoded records. The aggregate and runner
// tests use it instead of an input file.
type SliceReader struct {
	records []SliceRecord
	pos     int
	path    string
	count   uint64
}

// NewSliceReader builds a Factory that always replays the same records,
// regardless of the path passed to it — handy for tests. The CLI does not
// select it; BuildReaderFactory only offers the JSONL reader.
func NewSliceReader(records []SliceRecord) Factory {
	return func(path string) (Reader, error) {
		return &SliceReader{records: records, path: path}, nil
	}
}

func (r *SliceReader) Open(path string) error {
	r.path = path
	r.pos = 0
	return nil
}

func (r *SliceReader) Close() error { return nil }

func (r *SliceReader) ReadRecord() (*Record, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := &r.records[r.pos]
	r.pos++
	r.count++
	return &Record{TemplateKind: rec.Kind, SnapshotRef: rec}, nil
}

func (r *SliceReader) RecordCount() uint64 { return r.count }

func (r *SliceReader) FindField(rec *Record, enterprise uint32, id uint16, flags FindFlags) (Value, bool) {
	sr, ok := rec.SnapshotRef.(*SliceRecord)
	if !ok {
		return Value{}, false
	}
	if v, ok := sr.Fields[FieldKey{Enterprise: enterprise, ID: id, Flags: flags}]; ok {
		return v, true
	}
	if flags != FindNone {
		if v, ok := sr.Fields[FieldKey{Enterprise: enterprise, ID: id, Flags: FindNone}]; ok {
			return v, true
		}
	}
	return Value{}, false
}
