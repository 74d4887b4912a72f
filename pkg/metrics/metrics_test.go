package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	counter := OperationsTotal.WithLabelValues("read", "SUCCESS")
	initial := testutil.ToFloat64(counter)

	ObserveOperation("read", "SUCCESS", 3*time.Millisecond)
	ObserveOperation("read", "SUCCESS", 5*time.Millisecond)

	assert.Equal(t, initial+2, testutil.ToFloat64(counter))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(OperationDurationSeconds), 1)
}
