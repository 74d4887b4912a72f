// The redisdb package defines a Redis edge store that fulfills the GraphClient interface in models.
//
// Every graph keeps, for each entity, the set of its outgoing edges and the set
// of its incoming edges:
//
//	<graph>:out:<entityID>  -->  SET of destinations
//	<graph>:in:<entityID>   -->  SET of sources
package redisdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/utils/redisutils"
)

const (
	KeyOutPrefix string = ":out:"
	KeyInPrefix  string = ":in:"
)

// Database fulfills the GraphClient interface defined in models
type Database struct {
	client redis.UniversalClient
}

// Options are the connection parameters of the Database.
type Options struct {
	Hosts                 string // comma-separated
	Port                  int
	MaxConnectionsPerHost int
}

// NewDatabase() connects to the Redis nodes described by opts.
func NewDatabase(opts Options) (*Database, error) {
	addrs := redisutils.Addrs(opts.Hosts, opts.Port)
	if len(addrs) == 0 {
		return nil, ErrNoHosts
	}

	if opts.MaxConnectionsPerHost <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, opts.MaxConnectionsPerHost)
	}

	return &Database{client: redisutils.NewClient(addrs, opts.MaxConnectionsPerHost)}, nil
}

// NewDatabaseConnection() wraps an existing client.
func NewDatabaseConnection(cl redis.UniversalClient) (*Database, error) {
	if cl == nil {
		return nil, models.ErrNilClientPointer
	}
	return &Database{client: cl}, nil
}

// Validate() check if DB and client are nil and returns the appropriare error
func (DB *Database) Validate() error {
	if DB == nil {
		return ErrNilDBPointer
	}

	if DB.client == nil {
		return models.ErrNilClientPointer
	}

	return nil
}

// Ping() checks that the Redis nodes are reachable.
func (DB *Database) Ping(ctx context.Context) error {
	if err := DB.Validate(); err != nil {
		return err
	}
	return transportError(DB.client.Ping(ctx).Err(), "ping")
}

// AddEdge() adds the edge source --> destination to graph.
func (DB *Database) AddEdge(ctx context.Context, graph models.Graph, source, destination int64) error {
	if err := DB.Validate(); err != nil {
		return err
	}

	pipe := DB.client.TxPipeline()
	AddEdges(ctx, pipe, graph, []models.Edge{{Source: source, Destination: destination}})
	_, err := pipe.Exec(ctx)
	return transportError(err, "add edge %d->%d", source, destination)
}

// AddEdges() adds the edges to graph in one round trip. High priority batches
// are applied atomically (MULTI/EXEC), the others are simply pipelined.
func (DB *Database) AddEdges(ctx context.Context, graph models.Graph, priority models.Priority, edges []models.Edge) error {
	if err := DB.Validate(); err != nil {
		return err
	}

	if len(edges) == 0 {
		return nil
	}

	var pipe redis.Pipeliner
	if priority == models.PriorityHigh {
		pipe = DB.client.TxPipeline()
	} else {
		pipe = DB.client.Pipeline()
	}

	AddEdges(ctx, pipe, graph, edges)
	_, err := pipe.Exec(ctx)
	return transportError(err, "add %d edges (priority %v)", len(edges), priority)
}

// RemoveEdge() removes the edge source --> destination from graph.
func (DB *Database) RemoveEdge(ctx context.Context, graph models.Graph, source, destination int64) error {
	if err := DB.Validate(); err != nil {
		return err
	}

	pipe := DB.client.TxPipeline()
	RemoveEdges(ctx, pipe, graph, []models.Edge{{Source: source, Destination: destination}})
	_, err := pipe.Exec(ctx)
	return transportError(err, "remove edge %d->%d", source, destination)
}

// Followings() returns the destinations of all the follows edges of source.
func (DB *Database) Followings(ctx context.Context, source int64) ([]int64, error) {
	if err := DB.Validate(); err != nil {
		return nil, err
	}

	strIDs, err := DB.client.SMembers(ctx, KeyOut(models.GraphFollows, source)).Result()
	if err != nil {
		return nil, transportError(err, "followings of %d", source)
	}

	return redisutils.ParseIDs(strIDs)
}

// FollowingsFromSet() returns the candidates followed by source, in the order
// of candidates.
func (DB *Database) FollowingsFromSet(ctx context.Context, source int64, candidates []int64) ([]int64, error) {
	if err := DB.Validate(); err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return []int64{}, nil
	}

	isMember, err := DB.client.SMIsMember(ctx, KeyOut(models.GraphFollows, source), redisutils.FormatIDs(candidates)...).Result()
	if err != nil {
		return nil, transportError(err, "followings of %d from %d candidates", source, len(candidates))
	}

	followings := make([]int64, 0, len(candidates))
	for i, member := range isMember {
		if member {
			followings = append(followings, candidates[i])
		}
	}
	return followings, nil
}

// Close() closes the connection pool.
func (DB *Database) Close() error {
	if err := DB.Validate(); err != nil {
		return err
	}
	return DB.client.Close()
}

// AddEdges() queues on pipe the commands that add the edges, in both directions.
func AddEdges(ctx context.Context, pipe redis.Pipeliner, graph models.Graph, edges []models.Edge) {
	for _, edge := range edges {
		pipe.SAdd(ctx, KeyOut(graph, edge.Source), redisutils.FormatID(edge.Destination))
		pipe.SAdd(ctx, KeyIn(graph, edge.Destination), redisutils.FormatID(edge.Source))
	}
}

// RemoveEdges() queues on pipe the commands that remove the edges, in both directions.
func RemoveEdges(ctx context.Context, pipe redis.Pipeliner, graph models.Graph, edges []models.Edge) {
	for _, edge := range edges {
		pipe.SRem(ctx, KeyOut(graph, edge.Source), redisutils.FormatID(edge.Destination))
		pipe.SRem(ctx, KeyIn(graph, edge.Destination), redisutils.FormatID(edge.Source))
	}
}

// KeyOut() returns the Redis key for the outgoing edges of entityID in graph
func KeyOut(graph models.Graph, entityID int64) string {
	return fmt.Sprintf("%s%s%d", graph, KeyOutPrefix, entityID)
}

// KeyIn() returns the Redis key for the incoming edges of entityID in graph
func KeyIn(graph models.Graph, entityID int64) string {
	return fmt.Sprintf("%s%s%d", graph, KeyInPrefix, entityID)
}

// transportError() marks a Redis error as a transport failure.
func transportError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", models.ErrTransport, fmt.Sprintf(format, args...), err)
}

//---------------------------------ERROR-CODES---------------------------------

var ErrNilDBPointer = errors.New("database pointer is nil")
var ErrNoHosts = errors.New("no redis hosts configured")
var ErrInvalidPoolSize = errors.New("max connections per host must be positive")
