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
	"errors"

	"fdsgo/internal/fdserr"
	"fdsgo/internal/filter"
	"fdsgo/internal/hashtable"
	"fdsgo/internal/ipfix"
	"fdsgo/internal/metrics"
	"fdsgo/internal/sortspec"
	"fdsgo/internal/view"
)

// Aggregator is the per-thread driver: one hash table, one reusable key
// buffer, a reference to the shared (immutable) view definition, and its
// own progress counters. It is never shared across goroutines — each
// worker constructs exactly one.
type Aggregator struct {
	def      *view.Definition
	table    *hashtable.Table
	keyBuf   []byte
	input    filter.InputFilter
	Counters metrics.RunCounters
}

// New constructs an aggregator for def, filtering input records with input
// (filter.AcceptAll{} if no -f expression was given).
func New(def *view.Definition, input filter.InputFilter) *Aggregator {
	if input == nil {
		input = filter.AcceptAll{}
	}
	return &Aggregator{
		def:    def,
		table:  hashtable.New(def.KeysSize, def.ValuesSize),
		keyBuf: make([]byte, def.KeysSize),
		input:  input,
	}
}

// Table exposes the underlying hash table for the merge phase.
func (a *Aggregator) Table() *hashtable.Table { return a.table }

// ProcessFile reads every record out of path via factory, running the full
// per-record loop. A per-file open/read failure is returned to the caller
// and the worker moves on to the next file; it is not fatal to the run.
func (a *Aggregator) ProcessFile(factory ipfix.Factory, path string) error {
	reader, err := factory(path)
	if err != nil {
		return &fdserr.IoError{Path: path, Err: err}
	}
	defer reader.Close()
	if err := reader.Open(path); err != nil {
		return &fdserr.IoError{Path: path, Err: err}
	}

	for {
		rec, err := reader.ReadRecord()
		if err != nil {
			if ipfix.IsEOF(err) {
				break
			}
			if errors.Is(err, ipfix.ErrDecode) {
				// Malformed record: drop it and keep reading.
				a.Counters.AddDropped()
				continue
			}
			return &fdserr.IoError{Path: path, Err: err}
		}
		a.Counters.AddRecord()
		a.ProcessRecord(reader, rec)
	}
	a.Counters.AddFile()
	return nil
}

// ProcessRecord runs the filter -> expand -> build-key -> insert/merge loop
// for one decoded record.
func (a *Aggregator) ProcessRecord(reader ipfix.Reader, rec *ipfix.Record) {
	if !a.input.Passes(rec) {
		return
	}
	for _, ev := range Expand(rec.TemplateKind, a.def.Bidirectional) {
		if !BuildKey(reader, rec, a.def, ev.Dir, ev.FindFlags, a.keyBuf) {
			a.Counters.AddDropped()
			continue
		}
		blocks := a.table.NumBlocks()
		slot, created := a.table.FindOrCreate(a.keyBuf)
		if a.table.NumBlocks() != blocks {
			metrics.TableResizes.Inc()
		}
		if created {
			InitValues(slot, a.def)
		}
		UpdateValues(reader, rec, a.def, ev.Dir, ev.FindFlags, slot)
	}
}

// SortDescending sorts this aggregator's live items in place, the final
// step of the per-thread loop, run once after every claimed file has been
// consumed.
func (a *Aggregator) SortDescending(spec sortspec.Spec) {
	sortspec.SortDescending(a.table.Items(), spec)
}
