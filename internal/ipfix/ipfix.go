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

// Package ipfix declares the external-collaborator contract for the IPFIX
// wire decoder. The real decoder — template parsing, options
// records, structured-data handling — is explicitly out of scope for this
// engine; it lives behind the Reader interface so the aggregation core never
// depends on a concrete wire format.
package ipfix

import (
	"errors"
	"io"
)

// DataType is the native width/shape of a decoded wire value: the
// ViewField.data_type alphabet.
type DataType int

const (
	Unknown DataType = iota
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	IPv4
	IPv6
	IP // tagged union: a length byte selects v4 or v6
	MAC
	DateTimeMs
	String128
)

// Size returns the fixed on-wire/in-key byte width for t. Prefix-masked IP
// keys keep the size of the underlying address (4 or 16) — the mask only
// zeroes bits, it never shrinks the field.
func (t DataType) Size() int {
	switch t {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, IPv4:
		return 4
	case U64, I64, DateTimeMs:
		return 8
	case IPv6:
		return 16
	case IP:
		return 17 // 1 tag byte + 16 address bytes
	case MAC:
		return 6
	case String128:
		return 128
	default:
		return 0
	}
}

func (t DataType) Signed() bool {
	switch t {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// FindFlags restricts which half of a biflow record a field lookup reads
// from.
type FindFlags uint8

const (
	FindNone FindFlags = iota
	FindForward
	FindReverse
)

// Value is a decoded wire value, already converted out of the wire's raw
// bytes by the external decoder.
type Value struct {
	Type DataType
	U64  uint64
	I64  int64
	IPv4 [4]byte
	IPv6 [16]byte
	MAC  [6]byte
	Str  string
}

// WireRef names one information element: (enterprise_number, element_id).
type WireRef struct {
	Enterprise uint32
	ID         uint16
	Valid      bool
}

// TemplateKind distinguishes the unidirectional/biflow template shapes the
// biflow-expansion table keys off of.
type TemplateKind int

const (
	Unidirectional TemplateKind = iota
	Biflow
)

// Record is one decoded flow datum. RawBytes/Size/SnapshotRef are carried
// opaquely for collaborators that need them (e.g. a stored-record printer);
// the aggregation core only ever calls FindField against it.
type Record struct {
	RawBytes     []byte
	Size         int
	TemplateKind TemplateKind
	SnapshotRef  any
}

// ErrDecode marks a malformed record; it is absorbed per-record.
var ErrDecode = errors.New("ipfix: malformed record")

// Reader is the contract consumed from the external IPFIX decoder. One
// Reader is owned by exactly one worker/aggregator; it is never shared
// across goroutines.
type Reader interface {
	Open(path string) error
	Close() error
	// ReadRecord returns the next decoded record, or io.EOF when the file is
	// exhausted, or ErrDecode (wrapped) for a malformed record that should be
	// dropped and skipped.
	ReadRecord() (*Record, error)
	RecordCount() uint64
	// FindField looks up one wire field on rec, honoring flags as the
	// forward/reverse biflow selector.
	FindField(rec *Record, enterprise uint32, id uint16, flags FindFlags) (Value, bool)
}

// Factory opens a Reader for one input path. Each worker calls it once per
// claimed file so Readers never cross goroutine boundaries.
type Factory func(path string) (Reader, error)

// IsEOF reports whether err signals a clean end-of-file from ReadRecord.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
