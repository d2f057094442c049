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

// Package runner is the worker pool that drains a filelist.List across N
// goroutines, each driving its own aggregate.Aggregator, and hands the
// finished per-worker tables to the merge phase: a sync.WaitGroup fan-in
// over goroutines pulling from one shared, mutex-guarded queue until it
// runs dry.
package runner

import (
	"sync"

	"fdsgo/internal/aggregate"
	"fdsgo/internal/filelist"
	"fdsgo/internal/filter"
	"fdsgo/internal/ipfix"
	"fdsgo/internal/merge"
	"fdsgo/internal/sortspec"
	"fdsgo/internal/view"
)

// FileError pairs a failed input path with the error that aborted it. A
// per-file failure never aborts the run; the pool collects every one and
// returns them alongside the successfully processed results.
type FileError struct {
	Path string
	Err  error
}

// Pool runs def-shaped aggregation across numWorkers goroutines, each
// pulling paths off files until it is empty.
type Pool struct {
	Def        *view.Definition
	Input      filter.InputFilter
	Factory    ipfix.Factory
	Sort       sortspec.Spec
	NumWorkers int
}

// Run drains files to completion and returns one WorkerResult per worker
// goroutine (workers that never popped a file are omitted), plus every
// per-file error encountered along the way.
func (p *Pool) Run(files *filelist.List) ([]merge.WorkerResult, []FileError) {
	n := p.NumWorkers
	if n < 1 {
		n = 1
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []merge.WorkerResult
		errs    []FileError
	)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			p.runOne(files, &mu, &results, &errs)
		}()
	}
	wg.Wait()

	return results, errs
}

func (p *Pool) runOne(files *filelist.List, mu *sync.Mutex, results *[]merge.WorkerResult, errs *[]FileError) {
	agg := aggregate.New(p.Def, p.Input)
	touched := false

	for {
		path, ok := files.Pop()
		if !ok {
			break
		}
		touched = true
		if err := agg.ProcessFile(p.Factory, path); err != nil {
			mu.Lock()
			*errs = append(*errs, FileError{Path: path, Err: err})
			mu.Unlock()
		}
	}

	if !touched {
		return
	}

	agg.SortDescending(p.Sort)

	mu.Lock()
	*results = append(*results, merge.WorkerResult{Table: agg.Table(), Items: agg.Table().Items()})
	mu.Unlock()
}
