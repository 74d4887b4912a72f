// The package counter defines a minimalistic Duration counter
package counter

import (
	"sync/atomic"
	"time"
)

// Duration accumulates the latency of many operations. It's safe for
// concurrent use and the zero value is ready to use.
type Duration struct {
	total atomic.Int64 // nanoseconds
	count atomic.Int64
	max   atomic.Int64
}

// NewDurationCounter() returns a new Duration counter.
func NewDurationCounter() *Duration {
	return &Duration{}
}

// Add() records one observation of d and returns the number of observations.
func (c *Duration) Add(d time.Duration) int64 {
	if c == nil {
		return 0
	}

	c.total.Add(int64(d))
	for {
		current := c.max.Load()
		if int64(d) <= current || c.max.CompareAndSwap(current, int64(d)) {
			break
		}
	}
	return c.count.Add(1)
}

// Load() returns the sum of the observations.
func (c *Duration) Load() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.total.Load())
}

// Count() returns the number of observations.
func (c *Duration) Count() int64 {
	if c == nil {
		return 0
	}
	return c.count.Load()
}

// Max() returns the largest observation.
func (c *Duration) Max() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(c.max.Load())
}

// Mean() returns the average observation, or 0 if there are none.
func (c *Duration) Mean() time.Duration {
	if c == nil {
		return 0
	}

	count := c.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(c.total.Load() / count)
}
