package driver

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertex-lab/flockbench/pkg/database/mock"
	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/properties"
	"github.com/vertex-lab/flockbench/pkg/utils/logger"
	"github.com/vertex-lab/flockbench/pkg/workload"
)

// flockFactory() returns a factory of flock DBs sharing the client.
func flockFactory(client models.GraphClient) Factory {
	return func() (models.DB, error) {
		return workload.NewDB(workload.WithClient(client)), nil
	}
}

// SetupRunner() returns a Runner over the mock client with the given properties.
func SetupRunner(t *testing.T, client models.GraphClient, props properties.Properties) *Runner {
	t.Helper()
	all := properties.Properties{
		"recordcount":     "100",
		"threadcount":     "4",
		"status.interval": "0",
	}
	all.Merge(props)

	config, err := LoadConfig(all)
	require.NoError(t, err)

	runner, err := NewRunner(config, all, flockFactory(client))
	require.NoError(t, err)
	return runner
}

func TestNewRunner(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewRunner(Config{}, nil, flockFactory(mock.SetupDB("empty")))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil factory", func(t *testing.T) {
		_, err := NewRunner(NewConfig(), nil, nil)
		assert.ErrorIs(t, err, ErrNilFactory)
	})
}

func TestLoad(t *testing.T) {
	client := mock.SetupDB("empty")
	runner := SetupRunner(t, client, properties.Properties{"flock.initial_follows_per_user": "3"})

	summary, err := runner.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), summary.Total)
	assert.Equal(t, int64(100), summary.Operations[OpInsert].Success)

	calls := client.CallsTo("AddEdges")
	require.Len(t, calls, 100)

	sources := make(map[int64]bool)
	for _, call := range calls {
		require.Len(t, call.Edges, 3)
		sources[call.Edges[0].Source] = true
	}

	assert.Len(t, sources, 100)
	for userID := int64(0); userID < 100; userID++ {
		assert.True(t, sources[userID], "user%d was not inserted", userID)
	}
}

func TestLoadInsertStart(t *testing.T) {
	client := mock.SetupDB("empty")
	runner := SetupRunner(t, client, properties.Properties{"insertstart": "90"})

	summary, err := runner.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), summary.Total)

	for _, call := range client.CallsTo("AddEdges") {
		assert.GreaterOrEqual(t, call.Edges[0].Source, int64(90))
	}
}

func TestRun(t *testing.T) {
	client := mock.SetupDB("empty")
	runner := SetupRunner(t, client, properties.Properties{
		"operationcount":   "500",
		"readproportion":   "0.4",
		"updateproportion": "0.2",
		"insertproportion": "0.1",
		"scanproportion":   "0.2",
		"deleteproportion": "0.1",
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), summary.Total)

	var success int64
	for _, op := range Operations {
		stats := summary.Operations[op]
		assert.Greater(t, stats.Count(), int64(0), "no %s issued", op)
		assert.Zero(t, stats.Failed)
		success += stats.Success
	}
	assert.Equal(t, int64(500), success)

	// inserts of the run phase add users after the loaded ones
	for _, call := range client.CallsTo("AddEdges") {
		assert.GreaterOrEqual(t, call.Edges[0].Source, int64(100))
	}

	// other operations hit the loaded users
	for _, call := range client.CallsTo("FollowingsFromSet") {
		assert.Less(t, call.Source, int64(100))
	}
}

func TestRunInsertStart(t *testing.T) {
	t.Run("updates hit the records", func(t *testing.T) {
		client := mock.SetupDB("empty")
		runner := SetupRunner(t, client, properties.Properties{
			"insertstart":      "50",
			"operationcount":   "500",
			"readproportion":   "0",
			"updateproportion": "1",
		})

		summary, err := runner.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(500), summary.Operations[OpUpdate].Success)

		calls := client.CallsTo("AddEdge")
		require.Len(t, calls, 500)
		for _, call := range calls {
			source := call.Edges[0].Source
			if source < 0 || source >= 100 {
				t.Fatalf("update of user%d, outside of [0, 100)", source)
			}
		}
	})

	t.Run("inserts follow the records", func(t *testing.T) {
		client := mock.SetupDB("empty")
		runner := SetupRunner(t, client, properties.Properties{
			"insertstart":      "50",
			"operationcount":   "20",
			"readproportion":   "0",
			"updateproportion": "0",
			"insertproportion": "1",
		})

		_, err := runner.Run(context.Background())
		require.NoError(t, err)

		sources := make(map[int64]bool)
		for _, call := range client.CallsTo("AddEdges") {
			sources[call.Edges[0].Source] = true
		}

		require.Len(t, sources, 20)
		for userID := int64(100); userID < 120; userID++ {
			assert.True(t, sources[userID], "user%d was not inserted", userID)
		}
	})
}

func TestRunFailures(t *testing.T) {
	client := mock.SetupDB("unreachable")
	runner := SetupRunner(t, client, properties.Properties{"operationcount": "50"})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), summary.Total)
	assert.Equal(t, int64(50), summary.Operations[OpRead].Failed+summary.Operations[OpUpdate].Failed)
}

func TestRunNoRecords(t *testing.T) {
	runner := SetupRunner(t, mock.SetupDB("empty"), properties.Properties{"recordcount": "0"})
	_, err := runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestFactoryErrors(t *testing.T) {
	t.Run("factory", func(t *testing.T) {
		factoryErr := errors.New("out of connections")
		config, err := LoadConfig(properties.Properties{"recordcount": "10"})
		require.NoError(t, err)

		runner, err := NewRunner(config, nil, func() (models.DB, error) { return nil, factoryErr })
		require.NoError(t, err)

		_, err = runner.Load(context.Background())
		assert.ErrorIs(t, err, factoryErr)
	})

	t.Run("init", func(t *testing.T) {
		runner := SetupRunner(t, mock.SetupDB("empty"), properties.Properties{"flock.priority": "urgent"})
		_, err := runner.Load(context.Background())
		assert.ErrorIs(t, err, models.ErrInvalidPriority)
	})
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := SetupRunner(t, mock.SetupDB("empty"), properties.Properties{"operationcount": "1000"})
	summary, err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), summary.Total)
}

func TestUnsupported(t *testing.T) {
	config, err := LoadConfig(properties.Properties{"recordcount": "10", "operationcount": "20", "scanproportion": "1", "readproportion": "0", "updateproportion": "0"})
	require.NoError(t, err)

	runner, err := NewRunner(config, nil, func() (models.DB, error) { return unsupportedDB{}, nil })
	require.NoError(t, err)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20), summary.Operations[OpScan].Unsupported)
}

func TestReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := &syncBuffer{}
	clock := clockwork.NewFakeClock()
	config := NewConfig()
	config.StatusInterval = time.Second

	runner, err := NewRunner(config, nil, flockFactory(mock.SetupDB("empty")), WithClock(clock), WithLogger(logger.New(out)))
	require.NoError(t, err)
	runner.stats = NewStats()
	runner.stats.Record(OpRead, models.StatusSuccess, time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.report(ctx, "run", clock.Now())
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	assert.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("run: 1 sec: 1 operations; 1.00 current ops/sec"))
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// unsupportedDB is a binding that implements no operation.
type unsupportedDB struct{}

func (unsupportedDB) Init(map[string]string) error { return nil }
func (unsupportedDB) Cleanup() error               { return nil }

func (unsupportedDB) Read(context.Context, string, string, []string, models.Record) models.Status {
	return models.StatusUnsupported
}

func (unsupportedDB) Scan(context.Context, string, string, int, []string, *[]models.Record) models.Status {
	return models.StatusUnsupported
}

func (unsupportedDB) Update(context.Context, string, string, models.Record) models.Status {
	return models.StatusUnsupported
}

func (unsupportedDB) Insert(context.Context, string, string, models.Record) models.Status {
	return models.StatusUnsupported
}

func (unsupportedDB) Delete(context.Context, string, string) models.Status {
	return models.StatusUnsupported
}
