/*
The models package defines the fundamental structures and interfaces used in this project.
Interfaces:

GraphClient:
The GraphClient interface abstracts the edge-storage service the benchmark talks to,
allowing for multiple implementations (Redis, in-memory).

DB:
The DB interface abstracts a benchmark binding: the five key/value workload operations
that the driver issues, each reporting a Status.
*/
package models

import (
	"context"
	"errors"
)

// Graph is the name of a graph in the edge store (e.g. "follows").
type Graph string

const GraphFollows Graph = "follows"

// Priority controls how a batch of edges is written by the edge store.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// ParsePriority() parses "low", "medium" or "high".
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return PriorityLow, ErrInvalidPriority
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Edge is a directed relationship Source --> Destination.
type Edge struct {
	Source      int64
	Destination int64
}

// The GraphClient interface abstracts the edge-storage service.
// Failures of the remote calls are returned as errors wrapping ErrTransport.
type GraphClient interface {
	// AddEdge() adds the edge source --> destination to the graph.
	AddEdge(ctx context.Context, graph Graph, source, destination int64) error

	// AddEdges() adds all the edges to the graph in one batch.
	AddEdges(ctx context.Context, graph Graph, priority Priority, edges []Edge) error

	// RemoveEdge() removes the edge source --> destination from the graph.
	RemoveEdge(ctx context.Context, graph Graph, source, destination int64) error

	// Followings() returns all the entities followed by source.
	Followings(ctx context.Context, source int64) ([]int64, error)

	// FollowingsFromSet() returns the subset of candidates that source follows.
	FollowingsFromSet(ctx context.Context, source int64, candidates []int64) ([]int64, error)

	// Close() releases the connections held by the client.
	Close() error
}

//--------------------------ERROR-CODES--------------------------

var ErrTransport = errors.New("graph client transport failure")
var ErrNilClientPointer = errors.New("nil client pointer")
var ErrInvalidPriority = errors.New("invalid priority")
