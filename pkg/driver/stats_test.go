package driver

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vertex-lab/flockbench/pkg/models"
)

func TestStats(t *testing.T) {
	stats := NewStats()
	stats.Record(OpRead, models.StatusSuccess, 2*time.Millisecond)
	stats.Record(OpRead, models.StatusFailed, 4*time.Millisecond)
	stats.Record(OpScan, models.StatusUnsupported, time.Millisecond)
	stats.Record(Operation("truncate"), models.StatusSuccess, time.Millisecond)

	assert.Equal(t, int64(3), stats.Total())

	summary := stats.Summary(2 * time.Second)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, 1.5, summary.Throughput())

	expected := OperationSummary{
		Success:     1,
		Failed:      1,
		MeanLatency: 3 * time.Millisecond,
		MaxLatency:  4 * time.Millisecond,
	}
	assert.Equal(t, expected, summary.Operations[OpRead])
	assert.Equal(t, int64(1), summary.Operations[OpScan].Unsupported)
	assert.Equal(t, int64(0), summary.Operations[OpInsert].Count())
}

func TestSummaryPrint(t *testing.T) {
	summary := Summary{
		Elapsed: 2 * time.Second,
		Total:   4,
		Operations: map[Operation]OperationSummary{
			OpRead:   {Success: 3, Failed: 1, MeanLatency: 250 * time.Microsecond, MaxLatency: time.Millisecond},
			OpDelete: {},
		},
	}

	buf := &bytes.Buffer{}
	summary.Print(buf)

	expected := `[OVERALL], RunTime(ms), 2000
[OVERALL], Throughput(ops/sec), 2.00
[READ], Operations, 4
[READ], AverageLatency(us), 250
[READ], MaxLatency(us), 1000
[READ], Return=SUCCESS, 3
[READ], Return=FAILED, 1
`
	assert.Equal(t, expected, buf.String())
}

func TestThroughputNoElapsed(t *testing.T) {
	assert.Equal(t, 0.0, Summary{Total: 10}.Throughput())
}
