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

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// jsonlField is one decoded wire field as it appears in a demo JSONL input
// file: one information element, optionally scoped to a biflow half.
type jsonlField struct {
	Enterprise uint32          `json:"enterprise"`
	ID         uint16          `json:"id"`
	Flags      string          `json:"flags"` // "", "fwd", "rev"
	Type       string          `json:"type"`  // "u8".."u64","i8".."i64","ipv4","ipv6","mac","str"
	Value      json.RawMessage `json:"value"`
}

// jsonlRecord is one line of a demo JSONL input file.
type jsonlRecord struct {
	Template string       `json:"template"` // "uni" or "biflow"
	Fields   []jsonlField `json:"fields"`
}

type decodedRecord struct {
	kind   TemplateKind
	fields map[jsonlKey]Value
}

type jsonlKey struct {
	enterprise uint32
	id         uint16
	flags      FindFlags
}

// JSONLReader is the reference Reader implementation standing in for the
// out-of-scope external IPFIX wire decoder: it replays one JSON object per
// line, each describing a fully decoded record. It exists so the engine is
// runnable end to end without a real libfds binding.
type JSONLReader struct {
	f       *os.File
	scanner *bufio.Scanner
	count   uint64
}

// NewJSONLFactory returns an ipfix.Factory that opens path as a JSONL demo
// input file.
func NewJSONLFactory() Factory {
	return func(path string) (Reader, error) {
		return &JSONLReader{}, nil
	}
}

func (r *JSONLReader) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	r.f = f
	r.scanner = bufio.NewScanner(f)
	r.scanner.Buffer(make([]byte, 64*1024), 1<<20)
	return nil
}

func (r *JSONLReader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

func (r *JSONLReader) RecordCount() uint64 { return r.count }

func (r *JSONLReader) ReadRecord() (*Record, error) {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw jsonlRecord
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		dec, err := decodeJSONLRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		r.count++
		return &Record{TemplateKind: dec.kind, SnapshotRef: dec}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *JSONLReader) FindField(rec *Record, enterprise uint32, id uint16, flags FindFlags) (Value, bool) {
	dec, ok := rec.SnapshotRef.(*decodedRecord)
	if !ok {
		return Value{}, false
	}
	v, ok := dec.fields[jsonlKey{enterprise, id, flags}]
	return v, ok
}

func decodeJSONLRecord(raw jsonlRecord) (*decodedRecord, error) {
	kind := Unidirectional
	if raw.Template == "biflow" {
		kind = Biflow
	}
	dec := &decodedRecord{kind: kind, fields: make(map[jsonlKey]Value, len(raw.Fields))}
	for _, f := range raw.Fields {
		v, dtype, err := decodeJSONLValue(f.Type, f.Value)
		if err != nil {
			return nil, err
		}
		flags := FindNone
		switch f.Flags {
		case "fwd":
			flags = FindForward
		case "rev":
			flags = FindReverse
		}
		v.Type = dtype
		dec.fields[jsonlKey{f.Enterprise, f.ID, flags}] = v
	}
	return dec, nil
}

func decodeJSONLValue(typ string, raw json.RawMessage) (Value, DataType, error) {
	switch typ {
	case "u8", "u16", "u32", "u64":
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, Unknown, err
		}
		dtype := map[string]DataType{"u8": U8, "u16": U16, "u32": U32, "u64": U64}[typ]
		return Value{U64: n}, dtype, nil
	case "i8", "i16", "i32", "i64":
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, Unknown, err
		}
		dtype := map[string]DataType{"i8": I8, "i16": I16, "i32": I32, "i64": I64}[typ]
		return Value{I64: n}, dtype, nil
	case "ipv4":
		var s [4]byte
		if err := json.Unmarshal(raw, (*[4]byte)(&s)); err != nil {
			return Value{}, Unknown, err
		}
		return Value{IPv4: s}, IPv4, nil
	case "ipv6":
		var s [16]byte
		if err := json.Unmarshal(raw, (*[16]byte)(&s)); err != nil {
			return Value{}, Unknown, err
		}
		return Value{IPv6: s}, IPv6, nil
	case "mac":
		var s [6]byte
		if err := json.Unmarshal(raw, (*[6]byte)(&s)); err != nil {
			return Value{}, Unknown, err
		}
		return Value{MAC: s}, MAC, nil
	case "datetime_ms":
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, Unknown, err
		}
		return Value{U64: n}, DateTimeMs, nil
	case "str":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, Unknown, err
		}
		return Value{Str: s}, String128, nil
	default:
		return Value{}, Unknown, fmt.Errorf("unknown jsonl field type %q", typ)
	}
}

// BuildReaderFactory constructs an ipfix.Factory for the demo based on a
// string selector:
//   - "jsonl" (default): the dependency-free demo decoder above.
//   - anything else: an error, to avoid silently running the demo decoder
//     under the name of a wire format it doesn't actually implement.
func BuildReaderFactory(kind string) (Factory, error) {
	switch kind {
	case "", "jsonl":
		return NewJSONLFactory(), nil
	default:
		return nil, fmt.Errorf("ipfix: unknown reader kind %q; only \"jsonl\" is wired in this build", kind)
	}
}
