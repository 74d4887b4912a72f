package models

import (
	"context"
	"fmt"
)

// Status is the outcome of a workload operation. Code() returns the integer
// the benchmark driver aggregates on.
type Status int

const (
	StatusSuccess     Status = 0
	StatusFailed      Status = -1
	StatusUnsupported Status = -2
)

// Code() returns the integer code of the status.
func (s Status) Code() int {
	return int(s)
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusUnsupported:
		return "UNSUPPORTED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Record is one row of a read or a scan, field name --> value.
type Record map[string]string

// The DB interface is what the benchmark driver uses to issue operations.
// A DB is used by one worker at a time.
type DB interface {
	// Init() reads the properties and prepares the DB. Calling it twice is a no-op.
	Init(props map[string]string) error

	// Read() populates result with the fields of the record identified by key.
	Read(ctx context.Context, table, key string, fields []string, result Record) Status

	// Scan() appends up to count records, starting from startKey, to result.
	Scan(ctx context.Context, table, startKey string, count int, fields []string, result *[]Record) Status

	// Update() modifies the record identified by key.
	Update(ctx context.Context, table, key string, values Record) Status

	// Insert() creates the record identified by key.
	Insert(ctx context.Context, table, key string, values Record) Status

	// Delete() removes the record identified by key.
	Delete(ctx context.Context, table, key string) Status

	// Cleanup() releases the resources held by the DB.
	Cleanup() error
}
