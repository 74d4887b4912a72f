/*
The workload package binds the key/value benchmark operations to a follows graph.

Operations are mapped as follows:
  - insert: add a new user with InitialFollowsPerUser follows
  - update: add a random follow to an existing user
  - delete: remove a random follow from an existing user
  - read: check which of EdgeChecksPerRead potential follows exist
  - scan: retrieve all the follows of a user

Record keys are assumed to be generated by the workload as "userN", with 0 <= N < recordcount.
*/
package workload

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vertex-lab/flockbench/pkg/database/redisdb"
	"github.com/vertex-lab/flockbench/pkg/metrics"
	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/properties"
	"github.com/vertex-lab/flockbench/pkg/utils/logger"
)

// Dialer connects to the edge store described by the config.
type Dialer func(config Config) (models.GraphClient, error)

// DB fulfills the DB interface defined in models. Each worker owns its DB;
// the graph client can be shared between DBs.
type DB struct {
	log    *logger.Aggregate
	tracer trace.Tracer
	dial   Dialer
	rng    *rand.Rand

	client     models.GraphClient
	ownsClient bool

	config      Config
	selector    *Selector
	initialized bool
}

type Option func(*DB)

// WithClient() makes the DB use client instead of dialing its own.
// The DB won't close it on Cleanup.
func WithClient(client models.GraphClient) Option {
	return func(db *DB) { db.client = client }
}

// WithDialer() replaces the function used to connect when no client is given.
func WithDialer(dial Dialer) Option {
	return func(db *DB) { db.dial = dial }
}

func WithLogger(log *logger.Aggregate) Option {
	return func(db *DB) { db.log = log }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(db *DB) { db.tracer = tracer }
}

// WithRand() sets the source of the follow slots, taking precedence over the seed property.
func WithRand(rng *rand.Rand) Option {
	return func(db *DB) { db.rng = rng }
}

// NewDB() returns a DB that must be initialized with Init before use.
func NewDB(opts ...Option) *DB {
	db := &DB{
		log:    logger.Discard(),
		tracer: otel.Tracer("github.com/vertex-lab/flockbench/pkg/workload"),
		dial:   DialRedis,
	}

	for _, opt := range opts {
		opt(db)
	}
	return db
}

// DialRedis() connects to the Redis edge store.
func DialRedis(config Config) (models.GraphClient, error) {
	return redisdb.NewDatabase(redisdb.Options{
		Hosts:                 config.Hosts,
		Port:                  config.Port,
		MaxConnectionsPerHost: config.MaxConnectionsPerHost,
	})
}

// Init() parses the properties and connects to the edge store. Calling Init
// on an initialized DB only logs a warning.
func (db *DB) Init(props map[string]string) error {
	if db.initialized {
		db.log.Warn("flock client connection already initialized")
		return nil
	}

	config, err := LoadConfig(properties.Properties(props))
	if err != nil {
		return err
	}

	if db.client == nil {
		if db.client, err = db.dial(config); err != nil {
			return err
		}
		db.ownsClient = true
	}

	if db.rng == nil {
		seed := time.Now().UnixNano()
		if config.HasSeed {
			seed = config.Seed
		}
		db.rng = rand.New(rand.NewSource(seed))
	}

	db.selector, err = NewSelector(int64(config.FollowsPerUser), config.NumUsers, db.rng)
	if err != nil {
		return err
	}

	db.config = config
	db.initialized = true
	db.log.Info("flock binding initialized: hosts=%s port=%d users=%d follows_per_user=%d",
		config.Hosts, config.Port, config.NumUsers, config.FollowsPerUser)
	return nil
}

// Config() returns the config parsed by Init.
func (db *DB) Config() Config {
	return db.config
}

// Read() checks EdgeChecksPerRead potential follows of the user and writes the
// existing ones into result as "f0", "f1", ... in the order returned by the client.
func (db *DB) Read(ctx context.Context, table, key string, fields []string, result models.Record) models.Status {
	userID := db.userID(key)
	ctx, span := db.start(ctx, "read", userID)
	defer span.End()
	start := time.Now()

	seen := mapset.NewThreadUnsafeSetWithSize[int64](db.config.EdgeChecksPerRead)
	candidates := make([]int64, 0, db.config.EdgeChecksPerRead)
	for i := 0; i < db.config.EdgeChecksPerRead; i++ {
		if followID := db.selector.Next(userID); seen.Add(followID) {
			candidates = append(candidates, followID)
		}
	}

	followings, err := db.client.FollowingsFromSet(ctx, userID, candidates)
	if err != nil {
		return db.fail(span, "read", key, start, err)
	}

	for i, following := range followings {
		result[FieldName(i)] = strconv.FormatInt(following, 10)
	}

	metrics.EdgesReturnedTotal.WithLabelValues("read").Add(float64(len(followings)))
	return db.succeed(span, "read", start)
}

// Scan() appends to result one record with all the follows of the user of startKey.
func (db *DB) Scan(ctx context.Context, table, startKey string, count int, fields []string, result *[]models.Record) models.Status {
	userID := db.userID(startKey)
	ctx, span := db.start(ctx, "scan", userID)
	defer span.End()
	start := time.Now()

	followings, err := db.client.Followings(ctx, userID)
	if err != nil {
		return db.fail(span, "scan", startKey, start, err)
	}

	record := make(models.Record, len(followings))
	for i, following := range followings {
		record[FieldName(i)] = strconv.FormatInt(following, 10)
	}
	*result = append(*result, record)

	metrics.EdgesReturnedTotal.WithLabelValues("scan").Add(float64(len(followings)))
	return db.succeed(span, "scan", start)
}

// Update() adds one random follow to the user.
func (db *DB) Update(ctx context.Context, table, key string, values models.Record) models.Status {
	userID := db.userID(key)
	ctx, span := db.start(ctx, "update", userID)
	defer span.End()
	start := time.Now()

	followID := db.selector.Next(userID)
	if err := db.client.AddEdge(ctx, models.GraphFollows, userID, followID); err != nil {
		return db.fail(span, "update", key, start, err)
	}

	metrics.EdgesWrittenTotal.Inc()
	return db.succeed(span, "update", start)
}

// Insert() adds InitialFollowsPerUser random follows to the user, in one batch.
func (db *DB) Insert(ctx context.Context, table, key string, values models.Record) models.Status {
	userID := db.userID(key)
	ctx, span := db.start(ctx, "insert", userID)
	defer span.End()
	start := time.Now()

	edges := make([]models.Edge, 0, db.config.InitialFollowsPerUser)
	for i := 0; i < db.config.InitialFollowsPerUser; i++ {
		edges = append(edges, models.Edge{Source: userID, Destination: db.selector.Next(userID)})
	}

	if err := db.client.AddEdges(ctx, models.GraphFollows, db.config.Priority, edges); err != nil {
		return db.fail(span, "insert", key, start, err)
	}

	metrics.EdgesWrittenTotal.Add(float64(len(edges)))
	return db.succeed(span, "insert", start)
}

// Delete() removes one random follow from the user.
func (db *DB) Delete(ctx context.Context, table, key string) models.Status {
	userID := db.userID(key)
	ctx, span := db.start(ctx, "delete", userID)
	defer span.End()
	start := time.Now()

	followID := db.selector.Next(userID)
	if err := db.client.RemoveEdge(ctx, models.GraphFollows, userID, followID); err != nil {
		return db.fail(span, "delete", key, start, err)
	}

	return db.succeed(span, "delete", start)
}

// Cleanup() closes the graph client if the DB dialed it.
func (db *DB) Cleanup() error {
	if !db.ownsClient || db.client == nil {
		return nil
	}

	err := db.client.Close()
	db.client = nil
	db.ownsClient = false
	db.initialized = false
	return err
}

// FieldName() returns the name of the i-th field of a result record.
func FieldName(i int) string {
	return "f" + strconv.Itoa(i)
}

// userID() parses the key, panicking if the DB is not initialized or the key is malformed.
func (db *DB) userID(key string) int64 {
	if !db.initialized {
		panic(ErrNotInitialized)
	}
	return mustParseUserID(key)
}

func (db *DB) start(ctx context.Context, operation string, userID int64) (context.Context, trace.Span) {
	return db.tracer.Start(ctx, "flock."+operation, trace.WithAttributes(
		attribute.Int64("flock.user_id", userID),
	))
}

func (db *DB) succeed(span trace.Span, operation string, start time.Time) models.Status {
	metrics.ObserveOperation(operation, models.StatusSuccess.String(), time.Since(start))
	span.SetStatus(codes.Ok, "")
	return models.StatusSuccess
}

func (db *DB) fail(span trace.Span, operation, key string, start time.Time, err error) models.Status {
	metrics.ObserveOperation(operation, models.StatusFailed.String(), time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	db.log.Error("%s %s: %+v", operation, key, err)
	return models.StatusFailed
}

//--------------------------ERROR-CODES--------------------------

var ErrInvalidKey = errors.New("invalid record key")
var ErrNotInitialized = errors.New("flock binding used before Init")
var ErrInvalidSlots = errors.New("follows per user must be positive")
var ErrInvalidNumUsers = errors.New("number of users must be positive")
var ErrNilRandPointer = errors.New("nil rand pointer")
