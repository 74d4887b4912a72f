/*
The driver package runs the load and run phases of a key/value workload
against any models.DB binding.

Each worker owns a DB created by the Factory, initialized with the workload
properties and cleaned up when the phase ends. Operations are claimed from a
shared sequence, so the phase issues exactly the configured number of
operations no matter how many workers there are.
*/
package driver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/properties"
	"github.com/vertex-lab/flockbench/pkg/utils/logger"
	"github.com/vertex-lab/flockbench/pkg/workload"
)

// Factory returns a new, uninitialized DB for a worker.
type Factory func() (models.DB, error)

type Runner struct {
	log    *logger.Aggregate
	clock  clockwork.Clock
	config Config
	props  properties.Properties
	newDB  Factory

	stats *Stats
}

type Option func(*Runner)

func WithLogger(log *logger.Aggregate) Option {
	return func(r *Runner) { r.log = log }
}

// WithClock() replaces the clock used for latencies and status reports.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

// NewRunner() returns a Runner of the phases described by config. The props
// are passed to the Init of every DB.
func NewRunner(config Config, props properties.Properties, newDB Factory, opts ...Option) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if newDB == nil {
		return nil, ErrNilFactory
	}

	r := &Runner{
		log:    logger.Discard(),
		clock:  clockwork.NewRealClock(),
		config: config,
		props:  props,
		newDB:  newDB,
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Load() inserts the records user<InsertStart> ... user<InsertStart+InsertCount-1>.
func (r *Runner) Load(ctx context.Context) (Summary, error) {
	r.log.Info("loading %d records starting from %d with %d threads",
		r.config.InsertCount, r.config.InsertStart, r.config.Threads)

	return r.execute(ctx, "load", r.config.InsertCount, func(ctx context.Context, w *worker, i int64) {
		key := workload.FormatKey(r.config.InsertStart + i)
		w.do(OpInsert, func() models.Status {
			return w.db.Insert(ctx, r.config.Table, key, w.values())
		})
	})
}

// Run() issues OperationCount operations, chosen according to the proportions,
// on keys drawn uniformly from user0 ... user<RecordCount-1>. Inserts add new
// records from user<RecordCount> on.
//
// InsertStart only partitions the load phase between processes; the records of
// the run phase are always [0, RecordCount).
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.config.RecordCount < 1 {
		return Summary{}, ErrNoRecords
	}

	r.log.Info("running %d operations on %d records with %d threads",
		r.config.OperationCount, r.config.RecordCount, r.config.Threads)

	var inserted atomic.Int64
	inserted.Store(r.config.RecordCount)

	return r.execute(ctx, "run", r.config.OperationCount, func(ctx context.Context, w *worker, i int64) {
		op := r.config.Proportions.Choose(w.rng.Float64())
		if op == OpInsert {
			key := workload.FormatKey(inserted.Add(1) - 1)
			w.do(op, func() models.Status {
				return w.db.Insert(ctx, r.config.Table, key, w.values())
			})
			return
		}

		key := workload.FormatKey(w.rng.Int63n(r.config.RecordCount))
		w.do(op, func() models.Status {
			switch op {
			case OpRead:
				return w.db.Read(ctx, r.config.Table, key, nil, models.Record{})

			case OpUpdate:
				return w.db.Update(ctx, r.config.Table, key, w.values())

			case OpScan:
				var result []models.Record
				length := 1 + w.rng.Intn(r.config.MaxScanLength)
				return w.db.Scan(ctx, r.config.Table, key, length, nil, &result)

			case OpDelete:
				return w.db.Delete(ctx, r.config.Table, key)

			default:
				return models.StatusUnsupported
			}
		})
	})
}

// worker is the state owned by one goroutine of a phase.
type worker struct {
	db    models.DB
	rng   *rand.Rand
	clock clockwork.Clock
	stats *Stats
}

func (w *worker) do(op Operation, call func() models.Status) {
	start := w.clock.Now()
	status := call()
	w.stats.Record(op, status, w.clock.Since(start))
}

// values() returns the field values of an insert or update. The flock binding
// ignores them but other bindings may not.
func (w *worker) values() models.Record {
	return models.Record{"field0": strconv.FormatInt(w.rng.Int63(), 36)}
}

// execute() runs total operations across the workers and returns the summary
// of the phase. Cancelling ctx stops the phase early; the partial summary is
// returned together with the context error.
func (r *Runner) execute(ctx context.Context, phase string, total int64, operation func(context.Context, *worker, int64)) (Summary, error) {
	r.stats = NewStats()
	limiter := rate.NewLimiter(rate.Inf, 1)
	if r.config.Target > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.Target), 1)
	}

	start := r.clock.Now()
	reportCtx, stopReports := context.WithCancel(ctx)
	reportDone := make(chan struct{})
	go func() {
		defer close(reportDone)
		r.report(reportCtx, phase, start)
	}()

	var issued atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)

	for t := 0; t < r.config.Threads; t++ {
		t := t
		seed := start.UnixNano() + int64(t)
		group.Go(func() error {
			db, err := r.newDB()
			if err != nil {
				return fmt.Errorf("failed to create the DB of thread %d: %w", t, err)
			}

			if err := db.Init(r.props); err != nil {
				return fmt.Errorf("failed to initialize the DB of thread %d: %w", t, err)
			}

			defer func() {
				if err := db.Cleanup(); err != nil {
					r.log.Warn("failed to cleanup the DB of thread %d: %v", t, err)
				}
			}()

			w := &worker{
				db:    db,
				rng:   rand.New(rand.NewSource(seed)),
				clock: r.clock,
				stats: r.stats,
			}

			for {
				i := issued.Add(1) - 1
				if i >= total {
					return nil
				}

				if err := limiter.Wait(groupCtx); err != nil {
					return err
				}

				operation(groupCtx, w, i)
			}
		})
	}

	err := group.Wait()
	stopReports()
	<-reportDone

	summary := r.stats.Summary(r.clock.Since(start))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.log.Warn("%s interrupted after %d operations", phase, summary.Total)
		}
		return summary, err
	}

	r.log.Info("%s finished: %d operations in %v", phase, summary.Total, summary.Elapsed)
	return summary, nil
}

// report() logs the progress of the phase every StatusInterval, until ctx is done.
func (r *Runner) report(ctx context.Context, phase string, start time.Time) {
	if r.config.StatusInterval <= 0 {
		return
	}

	ticker := r.clock.NewTicker(r.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.Chan():
			elapsed := r.clock.Since(start)
			done := r.stats.Total()
			r.log.Info("%s: %d sec: %d operations; %.2f current ops/sec",
				phase, int64(elapsed.Seconds()), done, float64(done)/elapsed.Seconds())
		}
	}
}

//--------------------------ERROR-CODES--------------------------

var ErrNilFactory = errors.New("nil DB factory")
