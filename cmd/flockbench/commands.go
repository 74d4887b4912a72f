package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vertex-lab/flockbench/pkg/database/redisdb"
	"github.com/vertex-lab/flockbench/pkg/driver"
	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/properties"
	"github.com/vertex-lab/flockbench/pkg/utils/logger"
	"github.com/vertex-lab/flockbench/pkg/workload"
)

// Flags are the command line parameters shared by load and run.
type Flags struct {
	PropertyFiles []string
	Overrides     []string
	Threads       int
}

func (f *Flags) Register(flags *pflag.FlagSet) {
	flags.StringArrayVarP(&f.PropertyFiles, "property-file", "P", nil, "workload property file, can be repeated")
	flags.StringArrayVarP(&f.Overrides, "property", "p", nil, "property override as key=value, can be repeated")
	flags.IntVar(&f.Threads, "threads", 0, "number of worker threads, overrides threadcount")
}

// Properties() loads the property files and applies the overrides in order.
func (f *Flags) Properties() (properties.Properties, error) {
	props, err := properties.Load(f.PropertyFiles...)
	if err != nil {
		return nil, err
	}

	for _, pair := range f.Overrides {
		key, val, err := properties.ParseOverride(pair)
		if err != nil {
			return nil, err
		}
		props[key] = val
	}

	if f.Threads > 0 {
		props[driver.ThreadsProperty] = fmt.Sprint(f.Threads)
	}
	return props, nil
}

// NewRootCmd() returns the flockbench command with the load and run phases.
func NewRootCmd() *cobra.Command {
	flags := &Flags{}
	root := &cobra.Command{
		Use:           "flockbench",
		Short:         "Benchmark a follows graph store with a key/value workload",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.Register(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "load",
			Short: "Insert the records of the workload",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPhase(cmd.Context(), flags, (*driver.Runner).Load)
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Run the operations of the workload on the loaded records",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPhase(cmd.Context(), flags, (*driver.Runner).Run)
			},
		},
	)
	return root
}

type phase func(*driver.Runner, context.Context) (driver.Summary, error)

func runPhase(ctx context.Context, flags *Flags, execute phase) error {
	system, err := LoadSystemConfig()
	if err != nil {
		return err
	}

	log, logCloser, err := logger.Open(system.Logs)
	if err != nil {
		return fmt.Errorf("failed to open the logs: %w", err)
	}
	defer logCloser.Close()

	props, err := flags.Properties()
	if err != nil {
		return err
	}

	config, err := driver.LoadConfig(props)
	if err != nil {
		return err
	}

	flock, err := workload.LoadConfig(props)
	if err != nil {
		return err
	}

	if system.DisplayConfig {
		system.Print()
		config.Print()
		flock.Print()
	}

	if system.Trace {
		shutdown, err := SetupTracer(system.TraceSampleRatio)
		if err != nil {
			return fmt.Errorf("failed to setup tracing: %w", err)
		}
		defer shutdown(context.Background())
	}

	if system.MetricsAddr != "" {
		go ServeMetrics(ctx, system.MetricsAddr, log.With("metrics"))
	}

	// one client, shared by the DBs of all the workers
	client, err := redisdb.NewDatabase(redisdb.Options{
		Hosts:                 flock.Hosts,
		Port:                  flock.Port,
		MaxConnectionsPerHost: flock.MaxConnectionsPerHost,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("edge store is unreachable: %w", err)
	}

	dbLog := log.With("flock")
	runner, err := driver.NewRunner(config, props, func() (models.DB, error) {
		return workload.NewDB(workload.WithClient(client), workload.WithLogger(dbLog)), nil
	}, driver.WithLogger(log.With("driver")))
	if err != nil {
		return err
	}

	summary, err := execute(runner, ctx)
	summary.Print(os.Stdout)
	return err
}
