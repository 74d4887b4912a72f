package driver

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/utils/counter"
)

// Stats collects the outcome of the operations issued by all the workers.
// The map is filled once in NewStats, so it can be read concurrently.
type Stats struct {
	ops map[Operation]*operationStats
}

type operationStats struct {
	success     *xsync.Counter
	failed      *xsync.Counter
	unsupported *xsync.Counter
	latency     *counter.Duration
}

func NewStats() *Stats {
	stats := &Stats{ops: make(map[Operation]*operationStats, len(Operations))}
	for _, op := range Operations {
		stats.ops[op] = &operationStats{
			success:     xsync.NewCounter(),
			failed:      xsync.NewCounter(),
			unsupported: xsync.NewCounter(),
			latency:     counter.NewDurationCounter(),
		}
	}
	return stats
}

// Record() adds one operation with its status and latency.
func (s *Stats) Record(op Operation, status models.Status, latency time.Duration) {
	stats, ok := s.ops[op]
	if !ok {
		return
	}

	switch status {
	case models.StatusSuccess:
		stats.success.Inc()
	case models.StatusUnsupported:
		stats.unsupported.Inc()
	default:
		stats.failed.Inc()
	}
	stats.latency.Add(latency)
}

// Total() returns the number of recorded operations.
func (s *Stats) Total() int64 {
	var total int64
	for _, stats := range s.ops {
		total += stats.latency.Count()
	}
	return total
}

// Summary() freezes the stats of a phase that lasted elapsed.
func (s *Stats) Summary(elapsed time.Duration) Summary {
	summary := Summary{
		Elapsed:    elapsed,
		Operations: make(map[Operation]OperationSummary, len(s.ops)),
	}

	for op, stats := range s.ops {
		opSummary := OperationSummary{
			Success:     stats.success.Value(),
			Failed:      stats.failed.Value(),
			Unsupported: stats.unsupported.Value(),
			MeanLatency: stats.latency.Mean(),
			MaxLatency:  stats.latency.Max(),
		}

		summary.Total += opSummary.Count()
		summary.Operations[op] = opSummary
	}
	return summary
}

// Summary is the final report of a load or run phase.
type Summary struct {
	Elapsed    time.Duration
	Total      int64
	Operations map[Operation]OperationSummary
}

type OperationSummary struct {
	Success     int64
	Failed      int64
	Unsupported int64
	MeanLatency time.Duration
	MaxLatency  time.Duration
}

func (s OperationSummary) Count() int64 {
	return s.Success + s.Failed + s.Unsupported
}

// Throughput() returns the operations per second of the phase.
func (s Summary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

// Print() writes the summary in the "[SECTION], metric, value" report format,
// skipping the operations that were never issued.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "[OVERALL], RunTime(ms), %d\n", s.Elapsed.Milliseconds())
	fmt.Fprintf(w, "[OVERALL], Throughput(ops/sec), %.2f\n", s.Throughput())

	for _, op := range Operations {
		stats := s.Operations[op]
		if stats.Count() == 0 {
			continue
		}

		section := "[" + strings.ToUpper(string(op)) + "]"
		fmt.Fprintf(w, "%s, Operations, %d\n", section, stats.Count())
		fmt.Fprintf(w, "%s, AverageLatency(us), %d\n", section, stats.MeanLatency.Microseconds())
		fmt.Fprintf(w, "%s, MaxLatency(us), %d\n", section, stats.MaxLatency.Microseconds())
		fmt.Fprintf(w, "%s, Return=%s, %d\n", section, models.StatusSuccess, stats.Success)
		if stats.Failed > 0 {
			fmt.Fprintf(w, "%s, Return=%s, %d\n", section, models.StatusFailed, stats.Failed)
		}
		if stats.Unsupported > 0 {
			fmt.Fprintf(w, "%s, Return=%s, %d\n", section, models.StatusUnsupported, stats.Unsupported)
		}
	}
}
