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

// Package merge implements the distributed threshold-algorithm top-N merge:
// each worker contributes its own hash table plus its own slots pre-sorted
// under the run's sort specification, and the merge produces the global
// top K slots without ever sorting the full cross-worker record set.
//
// The key property the algorithm exploits: a record not yet visited by a
// worker's own walk can never accumulate more than the sum of every
// worker's current frontier value at that rank. Once that theoretical
// maximum (the "threshold") can no longer beat the current Kth-best kept
// slot, every worker's remaining records are safely skippable.
package merge

import (
	"container/heap"

	"fdsgo/internal/aggregate"
	"fdsgo/internal/hashtable"
	"fdsgo/internal/sortspec"
	"fdsgo/internal/view"
)

// WorkerResult is one worker's finished aggregation: its hash table (for
// cross-worker key lookups) and its own items, already sorted descending
// under the run's sort spec.
type WorkerResult struct {
	Table *hashtable.Table
	Items [][]byte
}

// Top runs the threshold-algorithm merge over workers and returns the
// global top k slots, sorted under spec, most-significant first. It never
// builds or sorts the full cross-worker union; wall-clock scales with how
// quickly the remaining frontier's theoretical best stops beating the
// current Kth slot, not with total record count.
func Top(workers []WorkerResult, def *view.Definition, spec sortspec.Spec, k int) [][]byte {
	if k <= 0 || len(workers) == 0 {
		return nil
	}

	h := &recordHeap{spec: spec}
	seen := make(map[string]struct{})

	for idx := 0; ; idx++ {
		if h.Len() == k {
			threshold := make([]byte, def.SlotSize())
			aggregate.InitValues(threshold, def)
			anyAt := false
			for _, w := range workers {
				if idx < len(w.Items) {
					anyAt = true
					aggregate.MergeValues(threshold, w.Items[idx], def)
				}
			}
			if !anyAt {
				break
			}
			// The current worst-kept slot is h.items[0] (heap root). If the
			// best any future record could ever reach no longer outranks
			// it, nothing left in any worker's frontier can displace it.
			if sortspec.Compare(threshold, h.items[0], spec) >= 0 {
				break
			}
		}

		anyAdvanced := false
		for wi := range workers {
			w := &workers[wi]
			if idx >= len(w.Items) {
				continue
			}
			anyAdvanced = true
			rec := w.Items[idx]
			key := string(rec[:def.KeysSize])
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			for oi := range workers {
				if oi == wi {
					continue
				}
				if other, ok := workers[oi].Table.Find(rec[:def.KeysSize]); ok {
					aggregate.MergeValues(rec, other, def)
				}
			}

			if h.Len() < k {
				heap.Push(h, rec)
			} else if sortspec.Compare(rec, h.items[0], spec) < 0 {
				h.items[0] = rec
				heap.Fix(h, 0)
			}
		}
		if !anyAdvanced {
			break
		}
	}

	return h.sortedDescending()
}

// recordHeap is a min-heap (by rank under spec: worst-ranked slot on top)
// holding at most k slots. Keeping the worst slot at the root makes the
// push/replace-or-drop step and the threshold comparison both O(log k).
type recordHeap struct {
	items [][]byte
	spec  sortspec.Spec
}

func (h *recordHeap) Len() int { return len(h.items) }

// Less reports whether items[i] ranks worse than items[j] under spec, so
// the worst-ranked slot floats to the root (index 0).
func (h *recordHeap) Less(i, j int) bool {
	return sortspec.Compare(h.items[i], h.items[j], h.spec) > 0
}

func (h *recordHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *recordHeap) Push(x any) { h.items = append(h.items, x.([]byte)) }

func (h *recordHeap) Pop() any {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}

// sortedDescending drains the heap into a slice ordered best-first under
// spec, which for a min-by-rank heap is simply a full sort of its contents.
func (h *recordHeap) sortedDescending() [][]byte {
	out := make([][]byte, len(h.items))
	copy(out, h.items)
	sortspec.SortDescending(out, h.spec)
	return out
}
