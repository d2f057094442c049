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
	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

// Event is one logical (direction, find_flags) update generated from a
// single decoded record.
type Event struct {
	Dir       view.Direction
	FindFlags ipfix.FindFlags
}

// Expand returns the events a record of the given template kind produces:
// a Unidirectional template never
// carries find_flags-selectable halves, a Biflow template always does; a
// bidirectional schema additionally needs both the Fwd and Rev key-variant
// for each half.
func Expand(kind ipfix.TemplateKind, bidirectional bool) []Event {
	switch {
	case kind == ipfix.Unidirectional && !bidirectional:
		return []Event{{Dir: view.DirEventAny, FindFlags: ipfix.FindNone}}
	case kind == ipfix.Unidirectional && bidirectional:
		return []Event{
			{Dir: view.DirEventFwd, FindFlags: ipfix.FindNone},
			{Dir: view.DirEventRev, FindFlags: ipfix.FindNone},
		}
	case kind == ipfix.Biflow && !bidirectional:
		return []Event{
			{Dir: view.DirEventAny, FindFlags: ipfix.FindForward},
			{Dir: view.DirEventAny, FindFlags: ipfix.FindReverse},
		}
	default: // Biflow && bidirectional
		return []Event{
			{Dir: view.DirEventFwd, FindFlags: ipfix.FindForward},
			{Dir: view.DirEventRev, FindFlags: ipfix.FindForward},
			{Dir: view.DirEventFwd, FindFlags: ipfix.FindReverse},
			{Dir: view.DirEventRev, FindFlags: ipfix.FindReverse},
		}
	}
}
