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

// Package config defines the run configuration and the stdlib flag-based
// CLI parsing that builds it: no cobra/viper layering, one flag per knob,
// parsed once in main and passed down as a plain struct.
package config

import (
	"flag"
	"runtime"

	"fdsgo/internal/fdserr"
)

// NoLimit is the TopN sentinel meaning "no limit": every aggregated record
// is printed. It is the -n default, distinct from the literal 0, which means
// zero records (the merge phase runs but produces no output).
const NoLimit = -1

// RunConfig holds every knob one invocation of the aggregation engine
// needs: which files to read, how to shape the view, how to sort and
// filter, and how many workers to run.
type RunConfig struct {
	InputPatterns []string // -r plus positional args: one glob pattern per input source
	KeySpec       string   // -a
	ValueSpec     string   // -s
	InputFilter   string   // -f (record filter expression; no compiler is wired in, so run rejects it)
	OutputFilter  string   // -F (aggregate filter expression)
	SortSpec      string   // -O
	TopN          int      // -n, top N records; 0 means zero records; -1 (or omitted) means no limit
	NumWorkers    int      // -t, defaults to GOMAXPROCS
	MetricsAddr   string   // -metrics-addr, empty disables the Prometheus endpoint
	ReaderKind    string   // -reader, selects the ipfix.Factory adapter
}

// Parse builds a RunConfig from args (typically os.Args[1:]).
func Parse(args []string) (*RunConfig, error) {
	fs := flag.NewFlagSet("fdsdump", flag.ContinueOnError)

	inputPattern := fs.String("r", "", "input file glob pattern (more patterns may follow as positional arguments)")
	keySpec := fs.String("a", "", "comma-separated key fields (aggregation keys)")
	valueSpec := fs.String("s", "", "comma-separated value fields (aggregation values)")
	inputFilter := fs.String("f", "", "record filter expression (no record-filter compiler is wired into this build; any value is rejected)")
	outputFilter := fs.String("F", "", "aggregate filter expression, applied to finished records")
	sortSpec := fs.String("O", "", "comma-separated sort fields (name or name:asc/name:desc)")
	topN := fs.Int("n", NoLimit, "limit output to the top N records; 0 prints none; omit for no limit")
	numWorkers := fs.Int("t", runtime.GOMAXPROCS(0), "number of worker goroutines")
	metricsAddr := fs.String("metrics-addr", "", "if non-empty, expose Prometheus /metrics on this address")
	readerKind := fs.String("reader", "jsonl", "input decoder adapter (only \"jsonl\" is wired in this build)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	patterns := fs.Args()
	if *inputPattern != "" {
		patterns = append([]string{*inputPattern}, patterns...)
	}

	cfg := &RunConfig{
		InputPatterns: patterns,
		KeySpec:       *keySpec,
		ValueSpec:     *valueSpec,
		InputFilter:   *inputFilter,
		OutputFilter:  *outputFilter,
		SortSpec:      *sortSpec,
		TopN:          *topN,
		NumWorkers:    *numWorkers,
		MetricsAddr:   *metricsAddr,
		ReaderKind:    *readerKind,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combination of flags the parser cannot enforce by
// itself (required fields, sane ranges).
func (c *RunConfig) Validate() error {
	if len(c.InputPatterns) == 0 {
		return fdserr.Config("at least one input file pattern is required")
	}
	if c.KeySpec == "" {
		return fdserr.Config("-a (key fields) is required")
	}
	if c.SortSpec == "" {
		return fdserr.Config("-O (sort fields) is required")
	}
	if c.NumWorkers < 1 {
		return fdserr.Config("-t must be at least 1, got %d", c.NumWorkers)
	}
	if c.TopN < NoLimit {
		return fdserr.Config("-n must be >= 0 (or omitted for no limit), got %d", c.TopN)
	}
	return nil
}

// ResolveTopN turns the -n sentinel into the merge.Top record count to
// request, given total, the number of records actually aggregated.
// TopN == NoLimit resolves to total; TopN == 0 resolves to 0 (no records);
// any other non-negative TopN is used as-is.
func (c *RunConfig) ResolveTopN(total int) int {
	if c.TopN == NoLimit {
		return total
	}
	return c.TopN
}
