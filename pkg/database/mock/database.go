// The mock database package allows for testing that are decoupled from a
// particular edge store implementation.
package mock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/vertex-lab/flockbench/pkg/models"
)

type EntitySet mapset.Set[int64]

// Call records one invocation of the Database, for assertions in tests.
type Call struct {
	Method     string
	Graph      models.Graph
	Priority   models.Priority
	Edges      []models.Edge
	Source     int64
	Candidates []int64
	Returned   []int64
}

// simulates a simple edge store for testing. Safe for concurrent use.
type Database struct {
	mu sync.Mutex

	// maps that associate each graph and entityID with its outgoing/incoming edges
	Out map[models.Graph]map[int64]EntitySet
	In  map[models.Graph]map[int64]EntitySet

	// when not nil, every call fails with an error wrapping models.ErrTransport and Err
	Err error

	Calls  []Call
	closed bool
}

// NewDatabase() creates and returns a new Database instance.
func NewDatabase() *Database {
	return &Database{
		Out: make(map[models.Graph]map[int64]EntitySet),
		In:  make(map[models.Graph]map[int64]EntitySet),
	}
}

// Validate() returns an error if the DB is nil or closed
func (DB *Database) Validate() error {
	if DB == nil {
		return ErrNilDBPointer
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()
	if DB.closed {
		return ErrClosed
	}
	return nil
}

// AddEdge() adds source --> destination to graph.
func (DB *Database) AddEdge(ctx context.Context, graph models.Graph, source, destination int64) error {
	_ = ctx
	if err := DB.Validate(); err != nil {
		return err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()

	edge := models.Edge{Source: source, Destination: destination}
	DB.Calls = append(DB.Calls, Call{Method: "AddEdge", Graph: graph, Edges: []models.Edge{edge}})
	if DB.Err != nil {
		return fmt.Errorf("%w: %w", models.ErrTransport, DB.Err)
	}

	DB.add(graph, edge)
	return nil
}

// AddEdges() adds all the edges to graph.
func (DB *Database) AddEdges(ctx context.Context, graph models.Graph, priority models.Priority, edges []models.Edge) error {
	_ = ctx
	if err := DB.Validate(); err != nil {
		return err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()

	DB.Calls = append(DB.Calls, Call{Method: "AddEdges", Graph: graph, Priority: priority, Edges: slices.Clone(edges)})
	if DB.Err != nil {
		return fmt.Errorf("%w: %w", models.ErrTransport, DB.Err)
	}

	for _, edge := range edges {
		DB.add(graph, edge)
	}
	return nil
}

// RemoveEdge() removes source --> destination from graph.
func (DB *Database) RemoveEdge(ctx context.Context, graph models.Graph, source, destination int64) error {
	_ = ctx
	if err := DB.Validate(); err != nil {
		return err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()

	edge := models.Edge{Source: source, Destination: destination}
	DB.Calls = append(DB.Calls, Call{Method: "RemoveEdge", Graph: graph, Edges: []models.Edge{edge}})
	if DB.Err != nil {
		return fmt.Errorf("%w: %w", models.ErrTransport, DB.Err)
	}

	if out, exists := DB.Out[graph][source]; exists {
		out.Remove(destination)
	}
	if in, exists := DB.In[graph][destination]; exists {
		in.Remove(source)
	}
	return nil
}

// Followings() returns the follows of source, sorted.
func (DB *Database) Followings(ctx context.Context, source int64) ([]int64, error) {
	_ = ctx
	if err := DB.Validate(); err != nil {
		return nil, err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()

	if DB.Err != nil {
		DB.Calls = append(DB.Calls, Call{Method: "Followings", Source: source})
		return nil, fmt.Errorf("%w: %w", models.ErrTransport, DB.Err)
	}

	followings := []int64{}
	if out, exists := DB.Out[models.GraphFollows][source]; exists {
		followings = out.ToSlice()
		slices.Sort(followings)
	}

	DB.Calls = append(DB.Calls, Call{Method: "Followings", Source: source, Returned: followings})
	return slices.Clone(followings), nil
}

// FollowingsFromSet() returns the candidates followed by source, in candidates order.
func (DB *Database) FollowingsFromSet(ctx context.Context, source int64, candidates []int64) ([]int64, error) {
	_ = ctx
	if err := DB.Validate(); err != nil {
		return nil, err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()

	call := Call{Method: "FollowingsFromSet", Source: source, Candidates: slices.Clone(candidates)}
	if DB.Err != nil {
		DB.Calls = append(DB.Calls, call)
		return nil, fmt.Errorf("%w: %w", models.ErrTransport, DB.Err)
	}

	followings := []int64{}
	if out, exists := DB.Out[models.GraphFollows][source]; exists {
		for _, candidate := range candidates {
			if out.Contains(candidate) {
				followings = append(followings, candidate)
			}
		}
	}

	call.Returned = followings
	DB.Calls = append(DB.Calls, call)
	return slices.Clone(followings), nil
}

// Close() marks the DB as closed; further calls fail with ErrClosed.
func (DB *Database) Close() error {
	if err := DB.Validate(); err != nil {
		return err
	}

	DB.mu.Lock()
	defer DB.mu.Unlock()
	DB.closed = true
	return nil
}

// Fail() makes every following call fail with err. Fail(nil) restores the DB.
func (DB *Database) Fail(err error) {
	DB.mu.Lock()
	defer DB.mu.Unlock()
	DB.Err = err
}

// CallsTo() returns the recorded calls to method.
func (DB *Database) CallsTo(method string) []Call {
	DB.mu.Lock()
	defer DB.mu.Unlock()

	var calls []Call
	for _, call := range DB.Calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// ContainsEdge() returns whether source --> destination is in graph.
func (DB *Database) ContainsEdge(graph models.Graph, source, destination int64) bool {
	DB.mu.Lock()
	defer DB.mu.Unlock()

	out, exists := DB.Out[graph][source]
	return exists && out.Contains(destination)
}

// add() must be called with the lock held.
func (DB *Database) add(graph models.Graph, edge models.Edge) {
	if _, exists := DB.Out[graph]; !exists {
		DB.Out[graph] = make(map[int64]EntitySet)
		DB.In[graph] = make(map[int64]EntitySet)
	}

	if _, exists := DB.Out[graph][edge.Source]; !exists {
		DB.Out[graph][edge.Source] = mapset.NewThreadUnsafeSet[int64]()
	}
	if _, exists := DB.In[graph][edge.Destination]; !exists {
		DB.In[graph][edge.Destination] = mapset.NewThreadUnsafeSet[int64]()
	}

	DB.Out[graph][edge.Source].Add(edge.Destination)
	DB.In[graph][edge.Destination].Add(edge.Source)
}

// SetupDB() returns a DB setup based on the DBType
func SetupDB(DBType string) *Database {
	switch DBType {
	case "nil":
		return nil

	case "empty":
		return NewDatabase()

	case "triangle":
		DB := NewDatabase()
		DB.add(models.GraphFollows, models.Edge{Source: 0, Destination: 1})
		DB.add(models.GraphFollows, models.Edge{Source: 1, Destination: 2})
		DB.add(models.GraphFollows, models.Edge{Source: 2, Destination: 0})
		return DB

	case "star":
		// 0 follows 1..10
		DB := NewDatabase()
		for i := int64(1); i <= 10; i++ {
			DB.add(models.GraphFollows, models.Edge{Source: 0, Destination: i})
		}
		return DB

	case "unreachable":
		DB := NewDatabase()
		DB.Err = ErrUnreachable
		return DB

	default:
		return nil // default to nil
	}
}

//--------------------------ERROR-CODES--------------------------

var ErrNilDBPointer = errors.New("database pointer is nil")
var ErrClosed = errors.New("database is closed")
var ErrUnreachable = errors.New("connection refused")
