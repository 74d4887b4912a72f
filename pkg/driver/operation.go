package driver

import (
	"fmt"
	"math"

	"github.com/vertex-lab/flockbench/pkg/properties"
)

// Operation is one of the five workload operations.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpInsert Operation = "insert"
	OpScan   Operation = "scan"
	OpDelete Operation = "delete"
)

// Operations lists every operation, in reporting order.
var Operations = []Operation{OpRead, OpUpdate, OpInsert, OpScan, OpDelete}

// Proportions are the relative frequencies of the operations in the run phase.
// They don't need to sum to one.
type Proportions struct {
	Read   float64
	Update float64
	Insert float64
	Scan   float64
	Delete float64
}

// NewProportions() returns the default mix: 95% reads and 5% updates.
func NewProportions() Proportions {
	return Proportions{Read: 0.95, Update: 0.05}
}

// LoadProportions() parses the proportion properties, falling back to the defaults.
func LoadProportions(props properties.Properties) (Proportions, error) {
	p := NewProportions()
	fields := []struct {
		key string
		val *float64
	}{
		{ReadProportionProperty, &p.Read},
		{UpdateProportionProperty, &p.Update},
		{InsertProportionProperty, &p.Insert},
		{ScanProportionProperty, &p.Scan},
		{DeleteProportionProperty, &p.Delete},
	}

	var err error
	for _, field := range fields {
		if *field.val, err = props.Float64(field.key, *field.val); err != nil {
			return Proportions{}, err
		}
	}
	return p, p.Validate()
}

// Validate() returns an error if a proportion is negative or all are zero.
func (p Proportions) Validate() error {
	for _, val := range []float64{p.Read, p.Update, p.Insert, p.Scan, p.Delete} {
		if val < 0 {
			return fmt.Errorf("%w: negative proportion %v", ErrInvalidProportions, val)
		}
	}

	if p.total() <= 0 {
		return fmt.Errorf("%w: all proportions are zero", ErrInvalidProportions)
	}
	return nil
}

// Choose() maps x in [0, 1) to an operation, so that a uniform x picks the
// operations with their proportions. The cutoffs are compensated sums, so
// proportions like 0.5, 0.2, 0.1, 0.1, 0.1 split [0, 1) exactly at 0.5, 0.7 ...
func (p Proportions) Choose(x float64) Operation {
	var cumulative sum
	for _, op := range Operations {
		cumulative.Add(p.of(op))
	}
	x *= cumulative.Value()

	var cutoff sum
	for _, op := range Operations {
		val := p.of(op)
		if val <= 0 {
			continue
		}

		cutoff.Add(val)
		if x < cutoff.Value() {
			return op
		}
	}

	// x was rounded up to the total
	for i := len(Operations) - 1; i >= 0; i-- {
		if p.of(Operations[i]) > 0 {
			return Operations[i]
		}
	}
	return OpRead
}

// sum is a Neumaier compensated sum.
type sum struct {
	total        float64
	compensation float64
}

func (s *sum) Add(val float64) {
	t := s.total + val
	if math.Abs(s.total) >= math.Abs(val) {
		s.compensation += (s.total - t) + val
	} else {
		s.compensation += (val - t) + s.total
	}
	s.total = t
}

func (s *sum) Value() float64 {
	return s.total + s.compensation
}

func (p Proportions) of(op Operation) float64 {
	switch op {
	case OpRead:
		return p.Read
	case OpUpdate:
		return p.Update
	case OpInsert:
		return p.Insert
	case OpScan:
		return p.Scan
	case OpDelete:
		return p.Delete
	default:
		return 0
	}
}

func (p Proportions) total() float64 {
	return p.Read + p.Update + p.Insert + p.Scan + p.Delete
}
