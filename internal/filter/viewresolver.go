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

package filter

import (
	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

// ViewResolver implements FieldResolver against a compiled view.Definition,
// resolving each referenced name to its data type and byte offset within
// the value tuple, the same lookup BuildKey and UpdateValues already do
// against the compiled Definition.
type ViewResolver struct {
	def *view.Definition
}

func NewViewResolver(def *view.Definition) *ViewResolver { return &ViewResolver{def: def} }

func (r *ViewResolver) Resolve(name string) (id int, dtype ipfix.DataType, offset int, ok bool) {
	for i := range r.def.Values {
		f := &r.def.Values[i]
		if f.Name == name {
			return i, f.DataType, f.Offset, true
		}
	}
	return 0, 0, 0, false
}

// SlotSource implements FieldSource by reading directly out of one
// aggregation slot's value tuple.
type SlotSource struct {
	def  *view.Definition
	slot []byte
}

func NewSlotSource(def *view.Definition, slot []byte) SlotSource {
	return SlotSource{def: def, slot: slot}
}

func (s SlotSource) Value(id int) (ipfix.DataType, []byte) {
	f := &s.def.Values[id]
	return f.DataType, s.slot[f.AbsOffset : f.AbsOffset+f.Size]
}
