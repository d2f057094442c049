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

// Package main is the entry point for fdsdump: a parallel IPFIX flow-record
// aggregator. It wires the view compiler, the per-worker aggregation pool,
// the threshold-algorithm top-N merge, and the output filter into one
// runnable batch tool.
package main

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fdsgo/internal/config"
	"fdsgo/internal/fdserr"
	"fdsgo/internal/filelist"
	"fdsgo/internal/filter"
	"fdsgo/internal/iedict"
	"fdsgo/internal/ipfix"
	"fdsgo/internal/merge"
	"fdsgo/internal/metrics"
	"fdsgo/internal/runner"
	"fdsgo/internal/sortspec"
	"fdsgo/internal/view"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "fdsdump:", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "fdsdump:", err)
		os.Exit(1)
	}
}

func run(cfg *config.RunConfig) error {
	if cfg.MetricsAddr != "" {
		metrics.MustRegisterDefault()
		startMetricsEndpoint(cfg.MetricsAddr)
	}

	dict := iedict.NewStaticDictionary()
	def, err := view.Compile(cfg.KeySpec, cfg.ValueSpec, dict)
	if err != nil {
		return err
	}

	sort, err := sortspec.Compile(cfg.SortSpec, def)
	if err != nil {
		return err
	}

	var inputFilter filter.InputFilter = filter.AcceptAll{}
	if cfg.InputFilter != "" {
		// The record-filter expression compiler is an external collaborator
		// out of scope for this engine; only the aggregate (output) filter
		// has a reference compiler wired in below.
		return fdserr.Config("-f record filtering has no compiler wired into this build")
	}

	var outputFilter filter.OutputFilter
	if cfg.OutputFilter != "" {
		outputFilter, err = filter.CompileOutput(cfg.OutputFilter, filter.NewViewResolver(def))
		if err != nil {
			return err
		}
	}

	factory, err := ipfix.BuildReaderFactory(cfg.ReaderKind)
	if err != nil {
		return err
	}

	var files filelist.List
	for _, pattern := range cfg.InputPatterns {
		if err := files.AddFiles(pattern); err != nil {
			return fdserr.Config("invalid input pattern %q: %v", pattern, err)
		}
	}
	if files.Len() == 0 {
		return fdserr.Config("no input files matched %v", cfg.InputPatterns)
	}

	pool := &runner.Pool{
		Def:        def,
		Input:      inputFilter,
		Factory:    factory,
		Sort:       sort,
		NumWorkers: cfg.NumWorkers,
	}

	results, fileErrs := pool.Run(&files)
	for _, fe := range fileErrs {
		fmt.Fprintf(os.Stderr, "fdsdump: %s: %v\n", fe.Path, fe.Err)
	}

	k := cfg.ResolveTopN(totalItems(results))
	start := time.Now()
	top := merge.Top(results, def, sort, k)
	metrics.MergeDuration.Observe(time.Since(start).Seconds())

	for _, slot := range top {
		if outputFilter != nil && !outputFilter.Evaluate(filter.NewSlotSource(def, slot)) {
			continue
		}
		printRecord(def, slot)
	}

	return nil
}

func totalItems(results []merge.WorkerResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Items)
	}
	return n
}

// startMetricsEndpoint launches a background HTTP listener serving the
// registered Prometheus collectors; a run that fails to bind simply runs
// without metrics rather than aborting the aggregation.
func startMetricsEndpoint(addr string) {
	handler := http.NewServeMux()
	handler.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go srv.ListenAndServe() //nolint:errcheck
}

// printRecord writes one aggregated slot as a single line of space-joined
// "name=value" pairs, keys first, then values, in their compiled order.
func printRecord(def *view.Definition, slot []byte) {
	first := true
	emit := func(name, val string) {
		if !first {
			fmt.Print(" ")
		}
		fmt.Printf("%s=%s", name, val)
		first = false
	}
	for i := range def.Keys {
		f := &def.Keys[i]
		emit(f.Name, formatField(f.DataType, slot[f.AbsOffset:f.AbsOffset+f.Size]))
	}
	for i := range def.Values {
		f := &def.Values[i]
		emit(f.Name, formatField(f.DataType, slot[f.AbsOffset:f.AbsOffset+f.Size]))
	}
	fmt.Println()
}

func formatField(dtype ipfix.DataType, raw []byte) string {
	switch dtype {
	case ipfix.IPv4:
		return net.IP(raw).String()
	case ipfix.IPv6:
		return net.IP(raw).String()
	case ipfix.IP:
		if raw[0] == 4 {
			return net.IP(raw[1:5]).String()
		}
		return net.IP(raw[1:17]).String()
	case ipfix.MAC:
		return net.HardwareAddr(raw).String()
	case ipfix.String128:
		return string(raw)
	case ipfix.I8, ipfix.I16, ipfix.I32, ipfix.I64:
		return fmt.Sprintf("%d", readSigned(raw))
	default:
		return fmt.Sprintf("%d", readUnsigned(raw))
	}
}

func readUnsigned(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	default:
		return 0
	}
}

func readSigned(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.BigEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.BigEndian.Uint32(b)))
	case 8:
		return int64(binary.BigEndian.Uint64(b))
	default:
		return 0
	}
}
