// Package metrics exposes the run-level Prometheus collectors for the
// aggregation engine: package-level collectors, registered once, updated
// from atomics that the hot path also touches directly, so a
// progress UI can read them racily without synchronizing with the worker
// goroutines.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FilesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fdsgo_files_processed_total",
		Help: "Total input files a worker has finished reading.",
	})
	RecordsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fdsgo_records_processed_total",
		Help: "Total IPFIX records read from input files.",
	})
	RecordsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fdsgo_records_dropped_total",
		Help: "Total records dropped due to a decode error or a missing key field.",
	})
	TableResizes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fdsgo_table_resizes_total",
		Help: "Total hash-table doublings across all worker aggregators.",
	})
	MergeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fdsgo_merge_duration_seconds",
		Help:    "Wall-clock time spent in the threshold-algorithm top-N merge.",
		Buckets: prometheus.DefBuckets,
	})
)

// MustRegisterDefault registers every collector above with the global
// default Prometheus registry.
func MustRegisterDefault() {
	prometheus.MustRegister(FilesProcessed, RecordsProcessed, RecordsDropped, TableResizes, MergeDuration)
}

func MustRegisterWith(reg *prometheus.Registry) {
	reg.MustRegister(FilesProcessed, RecordsProcessed, RecordsDropped, TableResizes, MergeDuration)
}

// RunCounters are torn-read-tolerant, per-worker progress counters: written
// only by their owner goroutine, read racily by a UI or progress-reporting
// goroutine. They also feed the Prometheus counters above on each update so
// both views stay consistent.
type RunCounters struct {
	filesProcessed   atomic.Uint64
	recordsProcessed atomic.Uint64
	recordsDropped   atomic.Uint64
}

func (c *RunCounters) AddFile() {
	c.filesProcessed.Add(1)
	FilesProcessed.Inc()
}

func (c *RunCounters) AddRecord() {
	c.recordsProcessed.Add(1)
	RecordsProcessed.Inc()
}

func (c *RunCounters) AddDropped() {
	c.recordsDropped.Add(1)
	RecordsDropped.Inc()
}

func (c *RunCounters) Snapshot() (files, records, dropped uint64) {
	return c.filesProcessed.Load(), c.recordsProcessed.Load(), c.recordsDropped.Load()
}
