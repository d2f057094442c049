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

// Package filter declares the external-collaborator contracts for the
// input filter (evaluated against raw decoded records) and the output
// (aggregate) filter (evaluated against finished slots).
// The record-filter expression *compiler* is explicitly out of scope; this
// package only fixes the interfaces the aggregation core calls through, plus
// a small reference expression engine so the engine is runnable end to end
// without a real compiler wired in.
package filter

import "fdsgo/internal/ipfix"

// InputFilter is evaluated once per decoded record, before biflow expansion.
type InputFilter interface {
	Passes(rec *ipfix.Record) bool
}

// AcceptAll is the zero-value input filter: no -f expression given.
type AcceptAll struct{}

func (AcceptAll) Passes(*ipfix.Record) bool { return true }

// FieldResolver maps a name referenced in an output-filter expression to its
// data type and byte offset within the value tuple.
type FieldResolver interface {
	Resolve(name string) (id int, dtype ipfix.DataType, offset int, ok bool)
}

// FieldSource reads the typed word registered for id out of one slot's
// value tuple during evaluation.
type FieldSource interface {
	Value(id int) (dtype ipfix.DataType, raw []byte)
}

// OutputFilter is compiled once against a FieldResolver and evaluated many
// times against a FieldSource, one per surviving slot.
type OutputFilter interface {
	Evaluate(src FieldSource) bool
}
